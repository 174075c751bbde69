// package formatter renders annotation sets to files (JSON, YAML, CSV, Markdown, plain text) and
// parses them back for import.
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/tslabel/internal/models"
	"github.com/desertthunder/tslabel/internal/shared"
	"gopkg.in/yaml.v3"
)

// Format names an export encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
)

// Formats lists every supported encoding in display order.
var Formats = []Format{FormatJSON, FormatYAML, FormatCSV, FormatMarkdown, FormatText}

// ParseFormat validates a user-supplied format name. "md", "yml" and "text" are accepted aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
}

// FormatFromPath infers the encoding from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	if f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), ".")); err == nil {
		return f
	}
	return FormatJSON
}

// AnnotationExport is the document written for one group.
type AnnotationExport struct {
	Group       string                      `json:"group" yaml:"group"`
	Files       []string                    `json:"files,omitempty" yaml:"files,omitempty"`
	ExportedAt  time.Time                   `json:"exported_at" yaml:"exported_at"`
	Stats       models.Stats                `json:"stats" yaml:"stats"`
	Annotations []models.ExportedAnnotation `json:"annotations" yaml:"annotations"`
}

// NewAnnotationExport stamps an export document with the current time.
func NewAnnotationExport(group string, files []string, annotations []models.ExportedAnnotation, stats models.Stats) *AnnotationExport {
	if annotations == nil {
		annotations = []models.ExportedAnnotation{}
	}
	return &AnnotationExport{
		Group:       group,
		Files:       files,
		ExportedAt:  time.Now().UTC(),
		Stats:       stats,
		Annotations: annotations,
	}
}

// ExportToJSON renders the export as indented JSON.
func ExportToJSON(export *AnnotationExport) ([]byte, error) {
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportToYAML renders the export as YAML.
func ExportToYAML(export *AnnotationExport) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(export); err != nil {
		return nil, fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to flush YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToCSV writes one row per annotation with columns: id, start, end, length
func ExportToCSV(export *AnnotationExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"id", "start", "end", "length"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, a := range export.Annotations {
		record := []string{
			strconv.Itoa(a.ID),
			strconv.Itoa(a.Start),
			strconv.Itoa(a.End),
			strconv.Itoa(a.Length),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToMarkdown renders a summary followed by an annotation table.
func ExportToMarkdown(export *AnnotationExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.Group)
	if len(export.Files) > 0 {
		buf.WriteString("**Files**:\n\n")
		for _, f := range export.Files {
			fmt.Fprintf(&buf, "- `%s`\n", f)
		}
		buf.WriteString("\n")
	}

	s := export.Stats
	fmt.Fprintf(&buf, "**Annotations**: %d\n", s.Count)
	if s.Count > 0 {
		fmt.Fprintf(&buf, "**Length**: total %d, average %.1f, min %d, max %d\n", s.Total, s.Average, s.Min, s.Max)
	}
	buf.WriteString("\n")

	if len(export.Annotations) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("| ID | Start | End | Length |\n")
	buf.WriteString("| --: | --: | --: | --: |\n")
	for _, a := range export.Annotations {
		fmt.Fprintf(&buf, "| %d | %d | %d | %d |\n", a.ID, a.Start, a.End, a.Length)
	}
	return buf.Bytes(), nil
}

// ExportToText renders a plain listing.
func ExportToText(export *AnnotationExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Group: %s\n", export.Group)
	fmt.Fprintf(&buf, "Annotations: %d\n\n", len(export.Annotations))
	for _, a := range export.Annotations {
		fmt.Fprintf(&buf, "%d. [%d, %d) length %d\n", a.ID, a.Start, a.End, a.Length)
	}
	return buf.Bytes(), nil
}

// Export renders the export in format f.
func Export(export *AnnotationExport, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return ExportToJSON(export)
	case FormatYAML:
		return ExportToYAML(export)
	case FormatCSV:
		return ExportToCSV(export)
	case FormatMarkdown:
		return ExportToMarkdown(export)
	case FormatText:
		return ExportToText(export)
	}
	return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, f)
}

// WriteExport renders the export and writes it to path, creating parent directories.
//
// An empty format is inferred from the file extension.
func WriteExport(export *AnnotationExport, path string, f Format) (string, error) {
	if f == "" {
		f = FormatFromPath(path)
	}

	data, err := Export(export, f)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", f, err)
	}
	return path, nil
}

// Print writes the export to w, as used by the CLI when no output file is given.
func Print(w io.Writer, export *AnnotationExport, f Format) error {
	data, err := Export(export, f)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
