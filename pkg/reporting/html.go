/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: html.go
Description: HTML rendering of analysis reports.
*/

package reporting

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	pageTemplate = template.Must(template.New("report").Parse(reportTemplate))
	markdownConv = goldmark.New(goldmark.WithExtensions(extension.GFM))
)

type htmlPage struct {
	Report *Report
	Body   template.HTML
}

// RenderHTML writes r as a standalone HTML page
func RenderHTML(w io.Writer, r *Report) error {
	var body bytes.Buffer
	if err := markdownConv.Convert([]byte(Markdown(r)), &body); err != nil {
		return fmt.Errorf("failed to convert markdown: %w", err)
	}
	// goldmark escapes raw HTML in the source by default
	page := htmlPage{Report: r, Body: template.HTML(body.String())}
	if err := pageTemplate.Execute(w, page); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}
