package swiftslice

import "github.com/oleg578/swiftslice/internal/swiftcsv"

// RowCountOptions configures RowCount.
type RowCountOptions struct {
	Source
	// IncludeHeaderRow counts the first record as a row instead of treating
	// it as a header.
	IncludeHeaderRow bool
}

// ColumnCountOptions configures ColumnCount.
type ColumnCountOptions struct {
	Source
}

// RowCount returns the number of records in the source, excluding the header
// record unless IncludeHeaderRow is set.
func RowCount(opts RowCountOptions) (int, error) {
	const op = "rowcount"

	src, err := opts.open(op)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	rdr := swiftcsv.NewReader(src)
	rdr.HasHeaders = !opts.IncludeHeaderRow
	n, err := rdr.Count()
	if err != nil {
		return 0, readError(op, err)
	}
	return n, nil
}

// ColumnCount returns the number of fields in the first record of the source.
// The header setting does not apply: the first record always defines the width.
func ColumnCount(opts ColumnCountOptions) (int, error) {
	const op = "columncount"

	src, err := opts.open(op)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	header, err := swiftcsv.NewReader(src).Headers()
	if err != nil {
		return 0, readError(op, err)
	}
	return len(header), nil
}
