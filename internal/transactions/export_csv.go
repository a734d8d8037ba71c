package transactions

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeComment(line string) error {
	if s == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if !strings.HasSuffix(line, "\r\n") {
		line = strings.TrimSuffix(line, "\n")
		line += "\r\n"
	}
	_, err := s.buf.WriteString(line)
	return err
}

func (s *csvStreamer) writeRow(row []string) error {
	if s == nil || s.csv == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

func (s *csvStreamer) Flush() error {
	if s == nil || s.csv == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
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

var exportHeader = []string{"Reference", "Member", "Group", "Type", "Amount", "Status", "Date"}

// writeExport streams the transaction list as CSV.
func writeExport(w io.Writer, rangeLabel string, rows []Transaction) error {
	streamer := newCSVStreamer(w)
	if rangeLabel != "" {
		if err := streamer.writeComment("# Transactions " + rangeLabel); err != nil {
			return err
		}
	}
	if err := streamer.writeRow(exportHeader); err != nil {
		return err
	}
	for _, tx := range rows {
		record := []string{
			tx.Reference,
			tx.MemberName,
			tx.GroupName,
			tx.Type,
			strconv.FormatFloat(tx.Amount, 'f', 2, 64),
			tx.Status,
			tx.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := streamer.writeRow(record); err != nil {
			return err
		}
	}
	return streamer.Flush()
}
