package reporting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/odyssey-erp/finreports/internal/accounting/reports"
	"github.com/odyssey-erp/finreports/internal/workbook"
	"github.com/odyssey-erp/finreports/internal/workbook/csvout"
	"github.com/odyssey-erp/finreports/internal/workbook/xlsx"
)

type jsonCell struct {
	Value   string `json:"value"`
	Number  bool   `json:"number,omitempty"`
	Formula string `json:"formula,omitempty"`
}

type jsonSheet struct {
	Name string       `json:"name"`
	Rows [][]jsonCell `json:"rows"`
}

type jsonSkipped struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type jsonReport struct {
	Account             string        `json:"account"`
	Period              string        `json:"period"`
	Skipped             int           `json:"skipped"`
	SkippedTransactions []jsonSkipped `json:"skippedTransactions"`
	Issues              []string      `json:"issues"`
	Sheets              []jsonSheet   `json:"sheets"`
}

func (s *Service) encode(ctx context.Context, format Format, mode workbook.Mode, title string, result reports.Result, period reports.Period) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatXLSX:
		if err := xlsx.Write(&buf, result.Bundle, mode); err != nil {
			return nil, err
		}
	case FormatCSV:
		if err := csvout.Write(&buf, result.Bundle); err != nil {
			return nil, err
		}
	case FormatJSON:
		if err := json.NewEncoder(&buf).Encode(toJSON(title, result, period, mode)); err != nil {
			return nil, fmt.Errorf("reporting: encode json: %w", err)
		}
	case FormatPDF:
		if s.pdf == nil {
			return nil, fmt.Errorf("%w: pdf renderer not configured", ErrUnsupportedFormat)
		}
		return s.pdf.RenderPDF(ctx, title, result.Bundle)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return buf.Bytes(), nil
}

func toJSON(title string, result reports.Result, period reports.Period, mode workbook.Mode) jsonReport {
	out := jsonReport{
		Account:             title,
		Period:              period.Start.Format("2006-01"),
		Skipped:             len(result.Skipped),
		SkippedTransactions: make([]jsonSkipped, 0, len(result.Skipped)),
		Issues:              issueStrings(result.Issues),
	}
	for _, sk := range result.Skipped {
		out.SkippedTransactions = append(out.SkippedTransactions, jsonSkipped{ID: sk.ID, Type: string(sk.Type)})
	}
	for _, sheet := range result.Bundle.Sheets {
		js := jsonSheet{Name: sheet.Name, Rows: make([][]jsonCell, 0, len(sheet.Rows))}
		for _, row := range sheet.Rows {
			cells := make([]jsonCell, 0, len(row.Cells))
			for _, cell := range row.Cells {
				jc := jsonCell{Value: cell.String(), Number: cell.Kind == workbook.KindNumber}
				if mode == workbook.ModeFormulas {
					jc.Formula = cell.Formula
				}
				cells = append(cells, jc)
			}
			js.Rows = append(js.Rows, cells)
		}
		out.Sheets = append(out.Sheets, js)
	}
	return out
}

func issueStrings(issues []reports.IntegrityIssue) []string {
	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.String())
	}
	return out
}
