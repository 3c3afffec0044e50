// # SwiftSlice: Counting and Slicing CSV Records in Go
//
// SwiftSlice answers three questions about delimited text: how many rows it
// holds, how many columns it has, and which records fall in a given range.
// Parsing is RFC 4180 compliant and is done by the streaming reader in
// internal/swiftcsv.
//
// # Operations
//
//   - RowCount counts records, optionally including the header record.
//   - ColumnCount reports the width of the first record.
//   - Slice and SliceRecords extract a range (Start with End or Length) or a
//     single record (Index). Negative bounds count back from the last record.
//
// Every operation takes an options struct embedding a Source, which is either
// a file path or in-memory text, never both:
//
//	n, err := swiftslice.RowCount(swiftslice.RowCountOptions{
//		Source: swiftslice.FromString("fruits,price\napple,2.50\nbanana,3.00\n"),
//	})
//	// n == 2
//
//	out, err := swiftslice.Slice(swiftslice.SliceOptions{
//		Source: swiftslice.FromPath("fruits.csv"),
//		Index:  swiftslice.Int(-1),
//	})
//
// # Errors
//
// Failures are returned as *Error values whose kind is one of ErrConfiguration,
// ErrSource, ErrParse, ErrRange or ErrExtraction; test with errors.Is. Nothing
// is logged and no partial result is returned on failure.
//
// # Slice bounds
//
// End is exclusive and must reference an existing record, so a value equal to
// the record count is rejected with ErrRange. Length is validated and resolved
// exactly like End. To slice through the last record, leave both unset.
package swiftslice
