package swiftcsv

import (
	"bufio"
	"errors"
	"io"
)

var (
	errNilWriter      = errors.New("swiftcsv: writer is nil")
	errWriterNoTarget = errors.New("swiftcsv: writer destination cannot be nil")
)

// Writer renders records as delimited text. Fields are written verbatim, so
// the output is meant for display and is not guaranteed to parse back.
// Records are separated by a newline; nothing follows the last record.
type Writer struct {
	dst *bufio.Writer

	// Comma is the field delimiter. Default is ','.
	Comma byte
	// UseCRLF separates records with \r\n when set.
	UseCRLF bool

	records int
	err     error
}

// NewWriter creates a new Writer with internal buffering tuned for bulk writes.
func NewWriter(w io.Writer) *Writer {
	if w == nil {
		panic(errWriterNoTarget.Error())
	}
	return &Writer{
		dst:   bufio.NewWriterSize(w, defaultBufferSize),
		Comma: ',',
	}
}

// Reset updates the underlying writer while preserving the configuration flags.
// The next record written is treated as the first one.
func (w *Writer) Reset(dst io.Writer) {
	if w == nil {
		panic(errNilWriter.Error())
	}
	if dst == nil {
		panic(errWriterNoTarget.Error())
	}
	if w.dst == nil {
		w.dst = bufio.NewWriterSize(dst, defaultBufferSize)
	} else {
		w.dst.Reset(dst)
	}
	w.records = 0
	w.err = nil
}

// Write emits a single record, preceded by the record separator unless it is
// the first record since construction or Reset.
func (w *Writer) Write(record []string) error {
	if w == nil {
		return errNilWriter
	}
	if w.dst == nil {
		return errWriterNoTarget
	}
	if w.err != nil {
		return w.err
	}

	comma := w.Comma
	if comma == 0 {
		comma = ','
	}

	if w.records > 0 {
		if err := w.writeSeparator(); err != nil {
			w.err = err
			return err
		}
	}
	for i := range record {
		if i > 0 {
			if err := w.dst.WriteByte(comma); err != nil {
				w.err = err
				return err
			}
		}
		if _, err := w.dst.WriteString(record[i]); err != nil {
			w.err = err
			return err
		}
	}
	w.records++
	return nil
}

// WriteAll writes multiple records, stopping at the first error.
func (w *Writer) WriteAll(records [][]string) error {
	if w == nil {
		return errNilWriter
	}
	for _, record := range records {
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes pending buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if w == nil {
		return errNilWriter
	}
	if w.dst == nil {
		return errWriterNoTarget
	}
	if w.err != nil {
		return w.err
	}
	if err := w.dst.Flush(); err != nil {
		w.err = err
		return err
	}
	return nil
}

// Error reports the first error encountered by the writer.
func (w *Writer) Error() error {
	if w == nil {
		return errNilWriter
	}
	return w.err
}

func (w *Writer) writeSeparator() error {
	if w.UseCRLF {
		_, err := w.dst.Write([]byte{'\r', '\n'})
		return err
	}
	return w.dst.WriteByte('\n')
}
