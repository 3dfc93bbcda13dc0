/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: render.go
Description: Output format dispatch plus the structured JSON and YAML renderers.
*/

package reporting

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a report output format
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// Formats lists every supported format
var Formats = []Format{FormatText, FormatMarkdown, FormatHTML, FormatJSON, FormatYAML}

// ParseFormat accepts a format name or a common alias ("md", "yml", "txt")
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown report format %q", name)
}

// Extension returns the file extension used when saving the format
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatHTML:
		return ".html"
	case FormatJSON:
		return ".json"
	case FormatYAML:
		return ".yaml"
	}
	return ".txt"
}

// Render writes r to w in the given format
func Render(w io.Writer, r *Report, format Format) error {
	switch format {
	case FormatText:
		return RenderText(w, r)
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(r))
		return err
	case FormatHTML:
		return RenderHTML(w, r)
	case FormatJSON:
		return RenderJSON(w, r)
	case FormatYAML:
		return RenderYAML(w, r)
	}
	return fmt.Errorf("unknown report format %q", format)
}

// RenderJSON writes r as indented JSON
func RenderJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// RenderYAML writes r as YAML
func RenderYAML(w io.Writer, r *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}
