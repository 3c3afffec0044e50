package swiftslice

import (
	"io"
	"strings"

	"github.com/oleg578/swiftslice/internal/swiftcsv"
)

// SliceOptions configures Slice and SliceRecords. Bounds are record indexes
// counted from zero after the header; a negative value counts back from the
// end, so -1 is the last record.
//
// Index selects a single record and cannot be combined with Start, End or
// Length. End and Length are alternatives. End is exclusive and must name an
// existing record, so it is at most the record count minus one. Length is
// checked and resolved the same way as End: it is an absolute bound, not an
// offset from Start. With neither End nor Length the slice runs to the last
// record.
type SliceOptions struct {
	Source
	Start  *int
	End    *int
	Length *int
	Index  *int
	// IncludeHeaderRow treats the first record as data instead of a header.
	IncludeHeaderRow bool
}

// Int returns a pointer to v, for filling the optional bounds of SliceOptions.
func Int(v int) *int {
	return &v
}

// Slice returns the selected records rendered as text: fields joined by commas,
// records joined by newlines, with no trailing newline. Fields are written
// verbatim.
func Slice(opts SliceOptions) (string, error) {
	records, err := sliceRecords("slice", opts)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	w := swiftcsv.NewWriter(&sb)
	if err := w.WriteAll(records); err != nil {
		return "", wrapError("slice", ErrExtraction, err)
	}
	if err := w.Flush(); err != nil {
		return "", wrapError("slice", ErrExtraction, err)
	}
	return sb.String(), nil
}

// SliceRecords returns the records selected by opts.
func SliceRecords(opts SliceOptions) ([][]string, error) {
	return sliceRecords("slice", opts)
}

func sliceRecords(op string, opts SliceOptions) ([][]string, error) {
	if err := opts.validate(op); err != nil {
		return nil, err
	}
	if opts.Index != nil && (opts.Start != nil || opts.End != nil || opts.Length != nil) {
		return nil, newError(op, ErrConfiguration, "cannot use index with start, end, or length")
	}
	if opts.End != nil && opts.Length != nil {
		return nil, newError(op, ErrConfiguration, "cannot use end with length")
	}

	src, err := opts.open(op)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	rdr := swiftcsv.NewReader(src)
	if !opts.IncludeHeaderRow {
		if _, err := rdr.Headers(); err != nil {
			return nil, readError(op, err)
		}
	}

	// Count once, then rewind to the first data record for extraction.
	base := rdr.Position()
	total, err := rdr.Count()
	if err != nil {
		return nil, readError(op, err)
	}
	if err := rdr.Seek(base); err != nil {
		return nil, wrapError(op, ErrSource, err)
	}

	if opts.Index != nil {
		return extractIndex(op, rdr, normalize(*opts.Index, total))
	}

	start, end, err := resolveRange(op, opts, total)
	if err != nil {
		return nil, err
	}
	return extractRange(op, rdr, start, end)
}

// normalize resolves a negative bound against the record count.
func normalize(v, total int) int {
	if v >= 0 {
		return v
	}
	return total + v
}

// resolveRange validates and normalizes the range bounds. End and Length may
// not reach total.
func resolveRange(op string, opts SliceOptions, total int) (start, end int, err error) {
	if opts.Start != nil {
		v := *opts.Start
		if v > total {
			return 0, 0, newError(op, ErrRange, "start value %d cannot be greater than the number of records (%d)", v, total)
		}
		if start = normalize(v, total); start < 0 {
			return 0, 0, newError(op, ErrRange, "start value %d is before the first record", v)
		}
	}

	end = total
	bound, name := opts.End, "end"
	if opts.Length != nil {
		bound, name = opts.Length, "length"
	}
	if bound != nil {
		v := *bound
		if v >= total {
			return 0, 0, newError(op, ErrRange, "%s value %d cannot be greater than or equal to the number of records (%d)", name, v, total)
		}
		if end = normalize(v, total); end < 0 {
			return 0, 0, newError(op, ErrRange, "%s value %d is before the first record", name, v)
		}
	}
	return start, end, nil
}

func extractIndex(op string, rdr *swiftcsv.Reader, index int) ([][]string, error) {
	if index < 0 {
		return nil, newError(op, ErrExtraction, "index resolves to %d, before the first record", index)
	}
	if err := skip(rdr, index); err != nil {
		return nil, extractionError(op, err, index)
	}
	rec, err := rdr.Read()
	if err != nil {
		return nil, extractionError(op, err, index)
	}
	return [][]string{rec}, nil
}

func extractRange(op string, rdr *swiftcsv.Reader, start, end int) ([][]string, error) {
	if end < start {
		return nil, newError(op, ErrExtraction, "end %d is before start %d", end, start)
	}
	if err := skip(rdr, start); err != nil {
		return nil, extractionError(op, err, start)
	}

	records := make([][]string, 0, end-start)
	for i := start; i < end; i++ {
		rec, err := rdr.Read()
		if err != nil {
			return nil, extractionError(op, err, i)
		}
		records = append(records, rec)
	}
	return records, nil
}

// skip discards n records.
func skip(rdr *swiftcsv.Reader, n int) error {
	reuse := rdr.ReuseRecord
	rdr.ReuseRecord = true
	defer func() { rdr.ReuseRecord = reuse }()

	for i := 0; i < n; i++ {
		if _, err := rdr.Read(); err != nil {
			return err
		}
	}
	return nil
}

func extractionError(op string, err error, record int) error {
	if err == io.EOF {
		return newError(op, ErrExtraction, "no record at index %d", record)
	}
	return readError(op, err)
}
