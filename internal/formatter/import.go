package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/tslabel/internal/models"
	"github.com/desertthunder/tslabel/internal/shared"
	"gopkg.in/yaml.v3"
)

// importedAnnotation accepts records with or without an id; a missing id decodes as zero.
type importedAnnotation struct {
	ID    int `json:"id" yaml:"id"`
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

type importDocument struct {
	Annotations []importedAnnotation `json:"annotations" yaml:"annotations"`
}

// ParseAnnotations decodes annotations previously written by [Export].
//
// JSON and YAML accept either a full export document or a bare list of records. CSV needs a header
// naming at least the start and end columns. Records without an id are returned with ID 0.
func ParseAnnotations(data []byte, f Format) ([]models.Annotation, error) {
	var (
		records []importedAnnotation
		err     error
	)
	switch f {
	case FormatJSON:
		records, err = parseJSON(data)
	case FormatYAML:
		records, err = parseYAML(data)
	case FormatCSV:
		records, err = parseCSV(data)
	default:
		return nil, fmt.Errorf("%w: %s cannot be imported", shared.ErrInvalidArgument, f)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	out := make([]models.Annotation, len(records))
	for i, r := range records {
		out[i] = models.Annotation(r)
	}
	return out, nil
}

// ReadAnnotations reads and decodes an annotation file, inferring the format from its extension.
func ReadAnnotations(path string) ([]models.Annotation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseAnnotations(data, FormatFromPath(path))
}

func parseJSON(data []byte) ([]importedAnnotation, error) {
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		var list []importedAnnotation
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var doc importDocument
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, err
	}
	return doc.Annotations, nil
}

func parseYAML(data []byte) ([]importedAnnotation, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	root := node.Content[0]
	if root.Kind == yaml.SequenceNode {
		var list []importedAnnotation
		if err := root.Decode(&list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var doc importDocument
	if err := root.Decode(&doc); err != nil {
		return nil, err
	}
	return doc.Annotations, nil
}

func parseCSV(data []byte) ([]importedAnnotation, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := map[string]int{"id": -1, "start": -1, "end": -1}
	for i, h := range header {
		if _, ok := cols[strings.ToLower(strings.TrimSpace(h))]; ok {
			cols[strings.ToLower(strings.TrimSpace(h))] = i
		}
	}
	if cols["start"] < 0 || cols["end"] < 0 {
		return nil, fmt.Errorf("CSV header must contain start and end columns")
	}

	var out []importedAnnotation
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		field := func(name string) (int, error) {
			i := cols[name]
			if i < 0 || i >= len(record) || strings.TrimSpace(record[i]) == "" {
				return 0, nil
			}
			return strconv.Atoi(strings.TrimSpace(record[i]))
		}

		var a importedAnnotation
		if a.ID, err = field("id"); err != nil {
			return nil, fmt.Errorf("line %d: invalid id: %w", line, err)
		}
		if a.Start, err = field("start"); err != nil {
			return nil, fmt.Errorf("line %d: invalid start: %w", line, err)
		}
		if a.End, err = field("end"); err != nil {
			return nil, fmt.Errorf("line %d: invalid end: %w", line, err)
		}
		out = append(out, a)
	}
	return out, nil
}
