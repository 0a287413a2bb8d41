// Package export renders a task list as a downloadable document.
package export

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/todo/internal/model"
)

// Formats lists the supported formats.
var Formats = []string{"json", "csv", "yaml", "pdf"}

// DejaVu Sans covers Latin, Greek and Cyrillic. Scripts it lacks, such as
// CJK, need a font passed with WithPDFFont.
//
//go:embed fonts/DejaVuSansCondensed.ttf
var defaultPDFFont []byte

const pdfFontFamily = "TaskFont"

type options struct {
	pdfFont []byte
}

// Option adjusts rendering.
type Option func(*options)

// WithPDFFont sets the TrueType font used for PDF text.
func WithPDFFont(ttf []byte) Option {
	return func(o *options) {
		if len(ttf) > 0 {
			o.pdfFont = ttf
		}
	}
}

// Render encodes tasks in format. Format names are case-insensitive.
func Render(tasks []model.Task, format string, opts ...Option) ([]byte, error) {
	o := options{pdfFont: defaultPDFFont}
	for _, opt := range opts {
		opt(&o)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	switch strings.ToLower(format) {
	case "json":
		b, err := json.MarshalIndent(tasks, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("json marshal: %w", err)
		}
		return append(b, '\n'), nil
	case "csv":
		return renderCSV(tasks)
	case "yaml", "yml":
		b, err := yaml.Marshal(tasks)
		if err != nil {
			return nil, fmt.Errorf("yaml marshal: %w", err)
		}
		return b, nil
	case "pdf":
		return renderPDF(tasks, o.pdfFont)
	default:
		return nil, fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

func renderCSV(tasks []model.Task) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"id", "text", "completed"})
	for _, t := range tasks {
		_ = w.Write([]string{strconv.FormatInt(t.ID, 10), t.Text, strconv.FormatBool(t.Completed)})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv write: %w", err)
	}
	return buf.Bytes(), nil
}

func renderPDF(tasks []model.Task, font []byte) ([]byte, error) {
	done := 0
	for _, t := range tasks {
		if t.Completed {
			done++
		}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddUTF8FontFromBytes(pdfFontFamily, "", font)
	pdf.AddPage()
	pdf.SetFont(pdfFontFamily, "", 16)
	pdf.Cell(40, 10, "Todos")
	pdf.Ln(12)
	pdf.SetFont(pdfFontFamily, "", 10)
	pdf.Cell(40, 6, fmt.Sprintf("%d done, %d pending, %d total", done, len(tasks)-done, len(tasks)))
	pdf.Ln(10)
	for _, t := range tasks {
		box := "☐"
		if t.Completed {
			box = "☑"
		}
		pdf.MultiCell(0, 6, fmt.Sprintf("%s #%d %s", box, t.ID, t.Text), "0", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes b to path through a temporary file in the same directory,
// so readers never see a partial document.
func WriteFile(path string, b []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename file: %w", err)
	}
	return nil
}
