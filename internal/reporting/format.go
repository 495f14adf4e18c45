package reporting

import (
	"errors"
	"fmt"
	"log"
	"mime"
	"strings"
)

// ErrUnsupportedFormat marks an unknown output format.
var ErrUnsupportedFormat = errors.New("reporting: unsupported format")

// Format is a rendered output format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
)

var fallbackTypes = map[Format]string{
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatCSV:  "text/csv; charset=utf-8",
	FormatJSON: "application/json",
	FormatPDF:  "application/pdf",
}

func init() {
	for format, typ := range fallbackTypes {
		ensureMimeType(format.Extension(), typ)
	}
}

func ensureMimeType(ext, typ string) {
	if mime.TypeByExtension(ext) != "" {
		return
	}
	if err := mime.AddExtensionType(ext, typ); err != nil {
		log.Printf("reporting: failed to register MIME type for %s: %v", ext, err)
	}
}

// ParseFormat converts a query value into a Format; blank means xlsx.
func ParseFormat(raw string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(raw)))
	if f == "" {
		return FormatXLSX, nil
	}
	if _, ok := fallbackTypes[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, raw)
	}
	return f, nil
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	if typ := mime.TypeByExtension(f.Extension()); typ != "" {
		return typ
	}
	return fallbackTypes[f]
}
