/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: text.go
Description: Console rendering of analysis reports with lipgloss styling and chroma
highlighting of the code skeleton.
*/

package reporting

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

type textStyles struct {
	title   lipgloss.Style
	section lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	warn    lipgloss.Style
	ok      lipgloss.Style
}

func newTextStyles(w io.Writer, color bool) textStyles {
	profile := termenv.Ascii
	if color {
		profile = termenv.ANSI256
	}
	renderer := lipgloss.NewRenderer(w, termenv.WithProfile(profile))
	renderer.SetColorProfile(profile)

	return textStyles{
		title:   renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		section: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).MarginTop(1),
		label:   renderer.NewStyle().Foreground(lipgloss.Color("245")),
		value:   renderer.NewStyle().Bold(true),
		warn:    renderer.NewStyle().Foreground(lipgloss.Color("203")),
		ok:      renderer.NewStyle().Foreground(lipgloss.Color("78")),
	}
}

// RenderText writes r as styled console text
func RenderText(w io.Writer, r *Report) error {
	st := newTextStyles(w, r.color)
	var b strings.Builder

	line := func(label, format string, args ...interface{}) {
		fmt.Fprintf(&b, "%s %s\n", st.label.Render(fmt.Sprintf("%-16s", label)), st.value.Render(fmt.Sprintf(format, args...)))
	}

	b.WriteString(st.title.Render(r.Title) + "\n")
	fingerprint := r.Fingerprint
	if len(fingerprint) > 16 {
		fingerprint = fingerprint[:16]
	}
	line("Fingerprint", "%s", fingerprint)
	line("Samples", "%d (%d marks, %d spaces)", r.Capture.Samples, r.Capture.Marks, r.Capture.Spaces)
	line("Margin", "%d usecs", r.Capture.Margin)

	b.WriteString(st.section.Render("Potential Mark Candidates") + "\n")
	b.WriteString(bucketList(r.MarkBuckets) + "\n")
	b.WriteString(st.section.Render("Potential Space Candidates") + "\n")
	b.WriteString(bucketList(r.SpaceBuckets) + "\n")

	b.WriteString(st.section.Render("Guessing key values") + "\n")
	for _, c := range r.Constants {
		line(c.Name, "%d", c.Value)
	}

	b.WriteString(st.section.Render("Decoding protocol") + "\n")
	line("Layout", "%s", r.Layout)
	for _, f := range r.Fragments {
		fmt.Fprintf(&b, "  Bits: %d\n", f.Bits)
		fmt.Fprintf(&b, "  Hex:  %s (MSB first)\n", f.HexMSB)
		fmt.Fprintf(&b, "        %s (LSB first)\n", f.HexLSB)
		fmt.Fprintf(&b, "  Dec:  %s (MSB first)\n", f.DecMSB)
		fmt.Fprintf(&b, "        %s (LSB first)\n", f.DecLSB)
		fmt.Fprintf(&b, "  Bin:  0b%s (MSB first)\n", f.Binary)
		fmt.Fprintf(&b, "        0b%s (LSB first)\n", f.BinaryLSB)
	}
	line("Total bits", "%d", r.TotalBits)

	if len(r.Anomalies) == 0 {
		b.WriteString(st.ok.Render("No anomalies") + "\n")
	} else {
		b.WriteString(st.section.Render("Anomalies") + "\n")
		for _, a := range r.Anomalies {
			b.WriteString(st.warn.Render(fmt.Sprintf("  #%d %d usecs: %s (read as %s)", a.Position, a.Value, a.Kind, a.State)) + "\n")
		}
	}

	if len(r.Code) > 0 {
		b.WriteString(st.section.Render("Code skeleton") + "\n")
		b.WriteString(highlight(strings.Join(r.Code, "\n")+"\n", r.color))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func bucketList(rows []BucketRow) string {
	parts := make([]string, len(rows))
	for i, row := range rows {
		parts[i] = fmt.Sprintf("%d (x%d)", row.Representative, row.Count)
	}
	return "  " + strings.Join(parts, ", ")
}

// highlight returns code with terminal colours, or unchanged when color is off
func highlight(code string, color bool) string {
	if !color {
		return code
	}
	var buf bytes.Buffer
	if err := quick.Highlight(&buf, code, "cpp", "terminal256", "monokai"); err != nil {
		return code
	}
	return buf.String()
}
