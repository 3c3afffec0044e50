// Package swiftcsv is the streaming record reader behind swiftslice. It parses
// RFC 4180 text, tracks the byte position of every record boundary and can
// rewind a seekable source to a saved boundary for a second pass.
package swiftcsv

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
	"unsafe"
)

const defaultBufferSize = 1 << 10 // 1024 bytes

var (
	// ErrBareQuote is returned when an unexpected quote is found in an unquoted field.
	ErrBareQuote = errors.New("swiftcsv: bare quote in non-quoted field")
	// ErrUnterminatedQuote is returned when a quoted field is not closed before EOF or record end.
	ErrUnterminatedQuote = errors.New("swiftcsv: unterminated quoted field")
	// ErrorFieldCount is returned when a record contains an unexpected number of fields.
	ErrorFieldCount = errors.New("swiftcsv: wrong number of fields")
	// ErrInvalidUTF8 is returned when a record is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("swiftcsv: invalid UTF-8 in record")
	// ErrNotSeekable is returned by Seek when the source does not implement io.Seeker.
	ErrNotSeekable = errors.New("swiftcsv: source is not seekable")

	errBlankLine = errors.New("swiftcsv: blank line")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseError contains location information for CSV parsing errors.
// Column is zero for errors that concern a whole record.
type ParseError struct {
	Line   int
	Column int
	Err    error
}

// Error formats the parse error message with the stored line, column, and Err values.
func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	if e.Column == 0 {
		return fmt.Sprintf("swiftcsv: parse error on line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("swiftcsv: parse error on line %d, column %d: %v", e.Line, e.Column, e.Err)
}

// Unwrap returns the underlying Err so ParseError participates in errors.Unwrap.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Position marks a record boundary in the source.
type Position struct {
	// Offset is the byte offset of the next unread record.
	Offset int64
	// Line is the 1-based line the next record starts on.
	Line int
	// Record is the number of data records yielded before this boundary.
	Record int
}

// Reader provides high-performance CSV parsing with support for customizable delimiters.
type Reader struct {
	src io.Reader

	// Comma is the field delimiter. Default is ','.
	Comma byte
	// Quote is the quote character. Default is '"'.
	Quote byte
	// ReuseRecord indicates whether Read should reuse the backing array of the returned slice.
	ReuseRecord bool
	// FieldsPerRecord expects each record to contain this many fields. Zero captures the width of the first record.
	FieldsPerRecord int
	// HasHeaders treats the first record as a header. It is parsed by the
	// first call to Read or Headers and never returned by Read.
	HasHeaders bool

	buf    []byte
	bufPos int
	bufLen int
	bufErr error
	offset int64

	record      []string
	dataBuf     []byte
	fieldBounds []int
	finished    bool
	line        int

	header     []string
	headerDone bool
	bomChecked bool
	records    int
	recordLine int
	quoted     bool
}

// NewReader creates a Reader that consumes CSV data from r, panicking if r is nil,
// and initialises internal buffers sized for high-throughput parsing.
func NewReader(r io.Reader) *Reader {
	if r == nil {
		panic("swiftcsv: reader source cannot be nil")
	}

	return &Reader{
		src:         r,
		Comma:       ',',
		Quote:       '"',
		buf:         make([]byte, defaultBufferSize),
		record:      make([]string, 0, 16),
		dataBuf:     make([]byte, 0, 512),
		fieldBounds: make([]int, 0, 32),
		line:        1,
	}
}

// Read parses the next data record from the underlying stream. It returns dst containing
// the field values (which may reuse internal storage when ReuseRecord is true) and an err
// indicating success or failure; io.EOF signals that no more records remain.
func (r *Reader) Read() (dst []string, err error) {
	if r == nil || r.src == nil {
		return nil, io.EOF
	}
	if !r.headerDone {
		if !r.HasHeaders {
			r.headerDone = true
		} else if _, err := r.Headers(); err != nil {
			return nil, err
		}
	}

	dst, err = r.next()
	if err == nil {
		r.records++
	}
	return dst, err
}

// Headers returns the header record, parsing the first record of the stream if
// that has not happened yet. Once parsed the header is never returned by Read,
// whether or not HasHeaders is set. An empty stream yields a nil header, as
// does a Reader that already returned data records without HasHeaders.
func (r *Reader) Headers() ([]string, error) {
	if r == nil || r.src == nil {
		return nil, io.EOF
	}
	if r.headerDone {
		return r.header, nil
	}

	rec, err := r.next()
	if err == io.EOF {
		r.headerDone = true
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.header = cloneRecord(rec)
	r.headerDone = true
	return r.header, nil
}

// ReadAll exhausts the reader, repeatedly calling Read to collect records until io.EOF
// and returning the accumulated records slice plus the first non-EOF error encountered.
func (r *Reader) ReadAll() (records [][]string, err error) {
	for {
		record, err := r.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}

// Count consumes the remaining data records and reports how many there were.
func (r *Reader) Count() (int, error) {
	reuse := r.ReuseRecord
	r.ReuseRecord = true
	defer func() { r.ReuseRecord = reuse }()

	n := 0
	for {
		_, err := r.Read()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		n++
	}
}

// Position reports the boundary of the next unread record. It is only
// meaningful between calls to Read.
func (r *Reader) Position() Position {
	return Position{
		Offset: r.offset - int64(r.bufLen-r.bufPos),
		Line:   r.line,
		Record: r.records,
	}
}

// Seek rewinds or advances the source to pos, which must come from Position
// on this Reader. Header state is left untouched.
func (r *Reader) Seek(pos Position) error {
	if r == nil || r.src == nil {
		return ErrNotSeekable
	}
	s, ok := r.src.(io.Seeker)
	if !ok {
		return ErrNotSeekable
	}
	if _, err := s.Seek(pos.Offset, io.SeekStart); err != nil {
		return err
	}

	r.offset = pos.Offset
	r.bufPos, r.bufLen = 0, 0
	r.bufErr = nil
	r.finished = false
	r.line = pos.Line
	r.records = pos.Record
	r.bomChecked = pos.Offset > 0
	return nil
}

// next returns the next physical record, skipping blank lines.
func (r *Reader) next() ([]string, error) {
	if !r.bomChecked {
		r.bomChecked = true
		r.skipBOM()
	}
	for {
		rec, err := r.readRecord()
		if err == errBlankLine {
			continue
		}
		return rec, err
	}
}

func (r *Reader) readRecord() ([]string, error) {
	if r.finished {
		return nil, io.EOF
	}

	comma := r.Comma
	if comma == 0 {
		comma = ','
	}
	quote := r.Quote
	if quote == 0 {
		quote = '"'
	}

	// Reset state for assembling the next record, reusing slices when allowed.
	if r.ReuseRecord {
		r.record = r.record[:0]
	} else {
		r.record = nil
	}
	r.dataBuf = r.dataBuf[:0]
	r.fieldBounds = r.fieldBounds[:0]
	r.recordLine = r.line
	r.quoted = false

	inQuotes := false
	sawQuotedField := false
	column := 1
	fieldStart := 0

	for {
		// Ensure the working buffer has data before parsing the next byte.
		if r.bufPos >= r.bufLen {
			if r.bufErr != nil {
				curColumn := column
				err := r.bufErr
				r.bufErr = nil
				if err == io.EOF {
					// Unterminated quotes at EOF are invalid.
					if inQuotes {
						r.finished = true
						return nil, r.wrapError(curColumn, ErrUnterminatedQuote)
					}
					// Flush a trailing field if data ended without a newline.
					if len(r.fieldBounds) > 0 || len(r.dataBuf) > 0 || sawQuotedField {
						r.fieldBounds = append(r.fieldBounds, fieldStart, len(r.dataBuf))
						r.finished = true
						return r.buildRecord()
					}
					r.finished = true
					return nil, io.EOF
				}
				return nil, err
			}

			// Pull the next chunk from the source.
			n, err := r.src.Read(r.buf)
			r.offset += int64(n)
			if n == 0 {
				if err != nil {
					r.bufErr = err
				}
				continue
			}
			r.bufPos = 0
			r.bufLen = n
			r.bufErr = err
		}

		if !inQuotes {
			// Fast-path plain bytes until a quote or delimiter is encountered.
			data := r.buf[r.bufPos:r.bufLen]
			if len(data) == 0 {
				continue
			}

			quoteIdx := bytes.IndexByte(data, quote)
			switch {
			case quoteIdx == -1:
				recordDone, err := r.consumePlain(&column, &fieldStart, &sawQuotedField)
				if err != nil {
					return nil, err
				}
				if recordDone {
					return r.buildRecord()
				}
				if r.bufPos >= r.bufLen {
					continue
				}
			case quoteIdx > 0:
				// Temporarily limit the buffer to process plain bytes up to the quote.
				originalLen := r.bufLen
				r.bufLen = r.bufPos + quoteIdx
				recordDone, err := r.consumePlain(&column, &fieldStart, &sawQuotedField)
				r.bufLen = originalLen
				if err != nil {
					return nil, err
				}
				if recordDone {
					return r.buildRecord()
				}
				if r.bufPos >= r.bufLen {
					continue
				}
			}
		}

		curColumn := column
		b := r.buf[r.bufPos]
		r.bufPos++

		if inQuotes {
			if b == quote {
				// Double quote inside quotes represents an escaped quote.
				next, err := r.peekByte()
				if err == nil && next == quote {
					r.bufPos++
					r.dataBuf = append(r.dataBuf, quote)
					column = curColumn + 2
					continue
				}
				if err != nil && err != io.EOF {
					return nil, err
				}
				inQuotes = false
				column = curColumn + 1
				continue
			}
			if b == '\n' {
				r.dataBuf = append(r.dataBuf, b)
				r.line++
				column = 1
				continue
			}

			start := r.bufPos - 1
			run := 1
			if r.bufPos < r.bufLen {
				data := r.buf[r.bufPos:r.bufLen]
				for i := 0; i < len(data); i++ {
					c := data[i]
					if c == quote || c == '\n' {
						break
					}
					run++
				}
				r.bufPos += run - 1
			}
			column = curColumn + run
			r.dataBuf = append(r.dataBuf, r.buf[start:start+run]...)
			continue
		}

		switch b {
		case comma:
			r.fieldBounds = append(r.fieldBounds, fieldStart, len(r.dataBuf))
			fieldStart = len(r.dataBuf)
			sawQuotedField = false
			column = curColumn + 1
		case '\n':
			r.fieldBounds = append(r.fieldBounds, fieldStart, len(r.dataBuf))
			r.line++
			return r.buildRecord()
		case '\r':
			next, err := r.peekByte()
			if err == nil && next == '\n' {
				r.bufPos++
			}
			if err != nil && err != io.EOF {
				return nil, err
			}
			r.fieldBounds = append(r.fieldBounds, fieldStart, len(r.dataBuf))
			r.line++
			return r.buildRecord()
		case quote:
			// A quote starts a quoted field only if we have not buffered any characters yet.
			if len(r.dataBuf) == fieldStart && !sawQuotedField {
				inQuotes = true
				sawQuotedField = true
				r.quoted = true
				column = curColumn + 1
				continue
			}
			return nil, r.wrapError(curColumn, ErrBareQuote)
		default:
			start := r.bufPos - 1
			run := 1
			if r.bufPos < r.bufLen {
				data := r.buf[r.bufPos:r.bufLen]
				for i := 0; i < len(data); i++ {
					c := data[i]
					if c == comma || c == '\n' || c == '\r' || c == quote {
						break
					}
					run++
				}
				r.bufPos += run - 1
			}
			column = curColumn + run
			r.dataBuf = append(r.dataBuf, r.buf[start:start+run]...)
		}
	}
}

// buildRecord maps the accumulated fieldBounds onto the data buffer, respecting ReuseRecord,
// and returns the materialised []string representing the current record. A line
// holding nothing at all reports errBlankLine.
func (r *Reader) buildRecord() ([]string, error) {
	fieldCount := len(r.fieldBounds) / 2
	if fieldCount == 1 && len(r.dataBuf) == 0 && !r.quoted {
		return nil, errBlankLine
	}
	if !utf8.Valid(r.dataBuf) {
		return nil, &ParseError{Line: r.recordLine, Err: ErrInvalidUTF8}
	}

	var recordStr string
	if r.ReuseRecord {
		if len(r.dataBuf) == 0 {
			recordStr = ""
		} else {
			// Zero-copy string construction so fields can share a single backing buffer.
			recordStr = unsafe.String(unsafe.SliceData(r.dataBuf), len(r.dataBuf))
		}
		if cap(r.record) < fieldCount {
			r.record = make([]string, fieldCount)
		}
		r.record = r.record[:fieldCount]
	} else {
		recordStr = string(r.dataBuf)
		r.record = make([]string, fieldCount)
	}

	for i := 0; i < fieldCount; i++ {
		start := r.fieldBounds[2*i]
		end := r.fieldBounds[2*i+1]
		r.record[i] = recordStr[start:end]
	}

	if r.FieldsPerRecord <= 0 {
		r.FieldsPerRecord = len(r.record)
		return r.record, nil
	}
	if len(r.record) != r.FieldsPerRecord {
		return r.record, &ParseError{Line: r.recordLine, Err: ErrorFieldCount}
	}
	return r.record, nil
}

// wrapError attaches the current line and supplied column to err, producing a *ParseError.
func (r *Reader) wrapError(column int, err error) error {
	return &ParseError{Line: r.line, Column: column, Err: err}
}

// consumePlain consumes unquoted field data, updating *column, *fieldStart, and *sawQuotedField.
// It reports whether a record terminator was seen and returns any read error encountered.
func (r *Reader) consumePlain(column *int, fieldStart *int, sawQuotedField *bool) (bool, error) {
	comma := r.Comma
	if comma == 0 {
		comma = ','
	}

	for {
		if r.bufPos >= r.bufLen {
			return false, nil
		}

		// Locate the closest delimiter or record terminator within the buffered bytes.
		data := r.buf[r.bufPos:r.bufLen]
		idxComma := bytes.IndexByte(data, comma)
		idxNewline := bytes.IndexByte(data, '\n')
		idxCR := bytes.IndexByte(data, '\r')

		next := len(data)
		delim := byte(0)

		if idxComma >= 0 && idxComma < next {
			next = idxComma
			delim = comma
		}
		if idxNewline >= 0 && idxNewline < next {
			next = idxNewline
			delim = '\n'
		}
		if idxCR >= 0 && idxCR < next {
			next = idxCR
			delim = '\r'
		}

		if next > 0 {
			r.dataBuf = append(r.dataBuf, data[:next]...)
			r.bufPos += next
			*column += next
		}

		if delim == 0 {
			return false, nil
		}

		r.bufPos++
		switch delim {
		case comma:
			r.fieldBounds = append(r.fieldBounds, *fieldStart, len(r.dataBuf))
			*fieldStart = len(r.dataBuf)
			*sawQuotedField = false
			*column = *column + 1
		case '\n':
			r.fieldBounds = append(r.fieldBounds, *fieldStart, len(r.dataBuf))
			r.line++
			return true, nil
		case '\r':
			// Support CRLF by peeking ahead for '\n' and consuming it together.
			nextByte, err := r.peekByte()
			if err == nil && nextByte == '\n' {
				r.bufPos++
			} else if err != nil && err != io.EOF {
				return false, err
			}
			r.fieldBounds = append(r.fieldBounds, *fieldStart, len(r.dataBuf))
			r.line++
			return true, nil
		}
	}
}

// peekByte returns the next buffered byte (refilling from src as needed) and propagates any read error.
func (r *Reader) peekByte() (byte, error) {
	for {
		if r.bufPos < r.bufLen {
			return r.buf[r.bufPos], nil
		}
		if r.bufErr != nil {
			return 0, r.bufErr
		}

		n, err := r.src.Read(r.buf)
		r.offset += int64(n)
		if n == 0 && err != nil {
			return 0, err
		}
		if n == 0 {
			continue
		}
		r.bufPos = 0
		r.bufLen = n
		r.bufErr = err
	}
}

// skipBOM drops a UTF-8 byte order mark at the start of the stream.
func (r *Reader) skipBOM() {
	for r.bufLen-r.bufPos < len(utf8BOM) && r.bufErr == nil {
		if r.bufPos > 0 {
			r.bufLen = copy(r.buf, r.buf[r.bufPos:r.bufLen])
			r.bufPos = 0
		}
		n, err := r.src.Read(r.buf[r.bufLen:])
		r.offset += int64(n)
		r.bufLen += n
		r.bufErr = err
	}
	if bytes.HasPrefix(r.buf[r.bufPos:r.bufLen], utf8BOM) {
		r.bufPos += len(utf8BOM)
	}
}

func cloneRecord(rec []string) []string {
	out := make([]string, len(rec))
	for i, s := range rec {
		out[i] = string([]byte(s))
	}
	return out
}
