package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/odyssey-erp/finreports/internal/workbook"
)

var bundleTemplate = template.Must(template.New("bundle").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title>
<style>
body { font-family: sans-serif; font-size: 10pt; }
h2 { page-break-before: always; }
h2.first { page-break-before: avoid; }
table { border-collapse: collapse; width: 100%; }
td { padding: 2px 6px; border-bottom: 1px solid #ddd; }
td.num { text-align: right; }
tr.header td, tr.title td, tr.subtotal td { font-weight: bold; }
tr.check td { font-style: italic; }
</style></head><body>
{{range $i, $s := .Sheets}}<h2{{if eq $i 0}} class="first"{{end}}>{{$s.Name}}</h2>
<table>{{range $s.Rows}}
<tr class="{{.Class}}">{{range .Cells}}<td{{if .Numeric}} class="num"{{end}}>{{.Text}}</td>{{end}}</tr>{{end}}
</table>
{{end}}</body></html>`))

type htmlCell struct {
	Text    string
	Numeric bool
}

type htmlRow struct {
	Class string
	Cells []htmlCell
}

type htmlSheet struct {
	Name string
	Rows []htmlRow
}

var rowClasses = map[workbook.RowKind]string{
	workbook.RowLine:     "line",
	workbook.RowTitle:    "title",
	workbook.RowHeader:   "header",
	workbook.RowSubtotal: "subtotal",
	workbook.RowBlank:    "blank",
	workbook.RowCheck:    "check",
}

// RenderBundleHTML lays out every sheet of the bundle as an HTML table.
func RenderBundleHTML(title string, bundle workbook.Bundle) (string, error) {
	view := struct {
		Title  string
		Sheets []htmlSheet
	}{Title: title}
	for _, sheet := range bundle.Sheets {
		hs := htmlSheet{Name: sheet.Name}
		for _, row := range sheet.Rows {
			hr := htmlRow{Class: rowClasses[row.Kind]}
			for _, cell := range row.Cells {
				hr.Cells = append(hr.Cells, htmlCell{Text: cell.String(), Numeric: cell.Kind == workbook.KindNumber})
			}
			hs.Rows = append(hs.Rows, hr)
		}
		view.Sheets = append(view.Sheets, hs)
	}
	var buf bytes.Buffer
	if err := bundleTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("report: render html: %w", err)
	}
	return buf.String(), nil
}

// RenderPDF converts the bundle to a PDF document.
func (c *Client) RenderPDF(ctx context.Context, title string, bundle workbook.Bundle) ([]byte, error) {
	html, err := RenderBundleHTML(title, bundle)
	if err != nil {
		return nil, err
	}
	return c.RenderHTML(ctx, html)
}
