// Package csvout writes a workbook bundle as a single CSV stream, one block per sheet.
package csvout

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/odyssey-erp/finreports/internal/workbook"
)

const (
	flushEvery = 200
	bufferSize = 32 * 1024
)

type streamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newStreamer(w io.Writer) *streamer {
	buf := bufio.NewWriterSize(w, bufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &streamer{buf: buf, csv: writer, flushEvery: flushEvery}
}

func (s *streamer) writeComment(line string) error {
	// Pending records must reach the buffer before the raw comment line.
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	line = strings.TrimRight(line, "\r\n") + "\r\n"
	_, err := s.buf.WriteString(line)
	return err
}

func (s *streamer) writeRow(row []string) error {
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.flush()
	}
	return nil
}

func (s *streamer) flush() error {
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

// Write serializes the evaluated values of every sheet. Each sheet block starts with a
// "# Sheet: <name>" comment line; blocks are separated by an empty line.
func Write(w io.Writer, bundle workbook.Bundle) error {
	s := newStreamer(w)
	for i, sheet := range bundle.Sheets {
		if i > 0 {
			if err := s.writeComment(""); err != nil {
				return err
			}
		}
		if err := s.writeComment(fmt.Sprintf("# Sheet: %s", sheet.Name)); err != nil {
			return err
		}
		for _, row := range sheet.Rows {
			record := make([]string, len(row.Cells))
			for idx, cell := range row.Cells {
				record[idx] = cell.String()
			}
			if err := s.writeRow(record); err != nil {
				return fmt.Errorf("csvout: sheet %s: %w", sheet.Name, err)
			}
		}
	}
	return s.flush()
}
