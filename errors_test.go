package swiftslice

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oleg578/swiftslice/internal/swiftcsv"
)

func TestErrorMethods(t *testing.T) {
	t.Parallel()

	cause := &swiftcsv.ParseError{Line: 2, Column: 3, Err: swiftcsv.ErrBareQuote}
	err := wrapError("rowcount", ErrParse, cause)

	assert.Equal(t, "rowcount: swiftslice: malformed CSV: swiftcsv: parse error on line 2, column 3: swiftcsv: bare quote in non-quoted field", err.Error())
	assert.ErrorIs(t, err, ErrParse)
	assert.ErrorIs(t, err, swiftcsv.ErrBareQuote)
	assert.NotErrorIs(t, err, ErrSource)

	var perr *swiftcsv.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Line)

	bare := &Error{Op: "slice", Kind: ErrRange}
	assert.Equal(t, "slice: swiftslice: bound out of range", bare.Error())
	assert.ErrorIs(t, bare, ErrRange)

	var nilErr *Error
	assert.Empty(t, nilErr.Error())
	assert.Nil(t, nilErr.Unwrap())
}

func TestReadErrorClassification(t *testing.T) {
	t.Parallel()

	parse := readError("slice", &swiftcsv.ParseError{Line: 1, Err: swiftcsv.ErrorFieldCount})
	assert.ErrorIs(t, parse, ErrParse)

	srcErr := readError("slice", errors.New("disk on fire"))
	assert.ErrorIs(t, srcErr, ErrSource)
	assert.NotErrorIs(t, srcErr, ErrParse)
}

func TestSourceConstructors(t *testing.T) {
	t.Parallel()

	assert.NotNil(t, FromString("").Data)
	assert.NotNil(t, FromBytes(nil).Data)
	assert.Equal(t, "a.csv", FromPath("a.csv").Path)

	text := []byte("a\n")
	src := FromString(string(text))
	text[0] = 'b'
	assert.Equal(t, "a\n", string(src.Data))

	require.NoError(t, FromString("").validate("test"))
	require.ErrorIs(t, Source{}.validate("test"), ErrConfiguration)
	require.ErrorIs(t, Source{Path: "p", Data: []byte("d")}.validate("test"), ErrConfiguration)
}
