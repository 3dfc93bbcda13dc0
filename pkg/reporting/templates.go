/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: templates.go
Description: HTML page template for analysis reports. The body is markdown rendered by
goldmark; the page adds the header card and styling.
*/

package reporting

// reportTemplate is the HTML page wrapping a rendered report
const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Report.Title}} - irprobe</title>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        body {
            font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            min-height: 100vh;
            color: #333;
        }

        .container {
            max-width: 1200px;
            margin: 0 auto;
            padding: 20px;
        }

        .header, .content {
            background: rgba(255, 255, 255, 0.95);
            border-radius: 20px;
            padding: 30px;
            margin-bottom: 30px;
            box-shadow: 0 8px 32px rgba(0, 0, 0, 0.1);
        }

        .header {
            text-align: center;
        }

        .header .stats {
            display: flex;
            justify-content: center;
            gap: 40px;
            margin-top: 20px;
        }

        .stat-value {
            font-size: 2rem;
            font-weight: 700;
            color: #667eea;
        }

        .stat-label {
            color: #718096;
            font-size: 0.9rem;
            text-transform: uppercase;
        }

        .anomalies .stat-value {
            color: {{if .Report.Anomalies}}#e53e3e{{else}}#38a169{{end}};
        }

        .content h1 { display: none; }
        .content h2 { color: #4a5568; margin: 25px 0 15px; }
        .content ul { margin: 0 0 20px 20px; }
        .content p { margin-bottom: 15px; }

        table {
            border-collapse: collapse;
            width: 100%;
            margin-bottom: 20px;
        }

        th, td {
            border-bottom: 1px solid #e2e8f0;
            padding: 8px 12px;
        }

        th { background: #edf2f7; }

        code, pre {
            font-family: 'Fira Code', Consolas, monospace;
        }

        pre {
            background: #1a202c;
            color: #e2e8f0;
            border-radius: 10px;
            padding: 20px;
            overflow-x: auto;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>{{.Report.Title}}</h1>
            <p>Generated {{.Report.GeneratedAt.Format "2006-01-02 15:04:05"}}{{if .Report.Version}} by irprobe {{.Report.Version}}{{end}}</p>
            <div class="stats">
                <div><div class="stat-value">{{.Report.Capture.Samples}}</div><div class="stat-label">Samples</div></div>
                <div><div class="stat-value">{{.Report.TotalBits}}</div><div class="stat-label">Bits</div></div>
                <div><div class="stat-value">{{len .Report.Fragments}}</div><div class="stat-label">Fragments</div></div>
                <div class="anomalies"><div class="stat-value">{{len .Report.Anomalies}}</div><div class="stat-label">Anomalies</div></div>
            </div>
        </div>
        <div class="content">
{{.Body}}
        </div>
    </div>
</body>
</html>
`
