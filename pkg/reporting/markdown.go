/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: markdown.go
Description: Markdown rendering of analysis reports. Also the source document for the
HTML report.
*/

package reporting

import (
	"fmt"
	"strings"
)

// Markdown renders r as a GitHub flavoured markdown document
func Markdown(r *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", r.Title)
	fmt.Fprintf(&b, "- **Report ID:** `%s`\n", r.ID)
	fmt.Fprintf(&b, "- **Generated:** %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))
	if r.Source != "" {
		fmt.Fprintf(&b, "- **Source:** %s\n", r.Source)
	}
	fmt.Fprintf(&b, "- **Fingerprint:** `%s`\n", r.Fingerprint)
	fmt.Fprintf(&b, "- **Samples:** %d (%d marks, %d spaces), margin %d µs\n\n",
		r.Capture.Samples, r.Capture.Marks, r.Capture.Spaces, r.Capture.Margin)

	b.WriteString("## Timing candidates\n\n")
	writeBucketTable(&b, "Mark", r.MarkBuckets)
	writeBucketTable(&b, "Space", r.SpaceBuckets)

	b.WriteString("## Protocol constants\n\n")
	b.WriteString("| Name | Value (µs) | Average (µs) |\n|---|---:|---:|\n")
	for _, c := range r.Constants {
		fmt.Fprintf(&b, "| `%s` | %d | %d |\n", c.Name, c.Value, c.Average)
	}
	b.WriteString("\n")

	b.WriteString("## Decoded data\n\n")
	fmt.Fprintf(&b, "Layout: `%s`\n\n", r.Layout)
	fmt.Fprintf(&b, "Total bits: **%d**\n\n", r.TotalBits)
	if len(r.Fragments) > 0 {
		b.WriteString("| # | Bits | Binary | MSB hex | MSB dec | LSB hex | LSB dec | Ended by |\n")
		b.WriteString("|---:|---:|---|---|---:|---|---:|---|\n")
		for _, f := range r.Fragments {
			fmt.Fprintf(&b, "| %d | %d | `%s` | `%s` | %s | `%s` | %s | %s |\n",
				f.Index, f.Bits, f.Binary, f.HexMSB, f.DecMSB, f.HexLSB, f.DecLSB, f.Boundary)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Anomalies\n\n")
	if len(r.Anomalies) == 0 {
		b.WriteString("None.\n\n")
	} else {
		b.WriteString("| Position | Value (µs) | Read as | Anomaly |\n|---:|---:|---|---|\n")
		for _, a := range r.Anomalies {
			fmt.Fprintf(&b, "| %d | %d | %s | %s |\n", a.Position, a.Value, a.State, a.Kind)
		}
		b.WriteString("\n")
	}

	if len(r.Code) > 0 {
		b.WriteString("## Code skeleton\n\n```cpp\n")
		b.WriteString(strings.Join(r.Code, "\n"))
		b.WriteString("\n```\n")
	}
	return b.String()
}

func writeBucketTable(b *strings.Builder, kind string, rows []BucketRow) {
	fmt.Fprintf(b, "| %s (µs) | Samples | Min | Average |\n|---:|---:|---:|---:|\n", kind)
	for _, row := range rows {
		fmt.Fprintf(b, "| %d | %d | %d | %d |\n", row.Representative, row.Count, row.Min, row.Average)
	}
	b.WriteString("\n")
}
