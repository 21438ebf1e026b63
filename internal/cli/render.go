package cli

import (
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"gopkg.in/yaml.v3"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/view"
)

// Output formats.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

var (
	accent = lipgloss.Color("#D97706")
	dim    = lipgloss.Color("#6B7280")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	emptyStyle  = lipgloss.NewStyle().Foreground(dim).Italic(true)
)

// section is one table of a result.
type section struct {
	title   string
	headers []string
	rows    [][]string
}

// result is a command output renderable in every format.
type result struct {
	json     func(e *jx.Encoder)
	sections []section
}

func validFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	default:
		return errors.Errorf("unknown output format %q: want table, json or yaml", format)
	}
}

func render(w io.Writer, format string, r result) error {
	switch format {
	case formatJSON:
		_, err := w.Write(append(view.Marshal(r.json), '\n'))
		return err
	case formatYAML:
		return renderYAML(w, view.Marshal(r.json))
	default:
		return renderTables(w, r.sections)
	}
}

// renderYAML re-encodes a JSON document as block-style YAML. JSON is valid
// YAML, so the document is parsed as-is and only its styles are reset.
func renderYAML(w io.Writer, doc []byte) error {
	var node yaml.Node
	if err := yaml.Unmarshal(doc, &node); err != nil {
		return errors.Wrap(err, "parse document")
	}
	resetStyle(&node)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return errors.Wrap(err, "encode yaml")
	}
	return enc.Close()
}

func resetStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		resetStyle(c)
	}
}

func renderTables(w io.Writer, sections []section) error {
	for i, s := range sections {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if s.title != "" {
			if _, err := io.WriteString(w, titleStyle.Render(s.title)+"\n"); err != nil {
				return err
			}
		}
		if len(s.rows) == 0 {
			if _, err := io.WriteString(w, emptyStyle.Render("no rows")+"\n"); err != nil {
				return err
			}
			continue
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(dim)).
			Headers(s.headers...).
			Rows(s.rows...).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})
		if _, err := io.WriteString(w, t.String()+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.DateTime)
}
