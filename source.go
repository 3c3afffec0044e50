package swiftslice

import (
	"bytes"
	"io"
	"os"
)

// Source names the CSV input of an operation: a file on disk or text held in
// memory. Exactly one of Path and Data must be set.
type Source struct {
	// Path is a CSV file path. Empty means no path.
	Path string
	// Data is CSV text. Nil means no inline text; an empty non-nil slice is
	// valid, empty input.
	Data []byte
}

// FromPath returns a Source reading the file at path.
func FromPath(path string) Source {
	return Source{Path: path}
}

// FromString returns a Source reading text.
func FromString(text string) Source {
	data := make([]byte, len(text))
	copy(data, text)
	return Source{Data: data}
}

// FromBytes returns a Source reading data. A nil data is treated as empty text.
func FromBytes(data []byte) Source {
	if data == nil {
		data = []byte{}
	}
	return Source{Data: data}
}

type readSeekCloser interface {
	io.ReadSeeker
	io.Closer
}

type memSource struct {
	*bytes.Reader
}

func (memSource) Close() error { return nil }

func (s Source) validate(op string) error {
	hasPath := s.Path != ""
	hasData := s.Data != nil
	switch {
	case hasPath && hasData:
		return newError(op, ErrConfiguration, "cannot use both a file path and file data, specify one only")
	case !hasPath && !hasData:
		return newError(op, ErrConfiguration, "must provide either a file path or file data")
	}
	return nil
}

// open validates s and returns a seekable stream over it. The caller closes it.
func (s Source) open(op string) (readSeekCloser, error) {
	if err := s.validate(op); err != nil {
		return nil, err
	}
	if s.Data != nil {
		return memSource{bytes.NewReader(s.Data)}, nil
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, wrapError(op, ErrSource, err)
	}
	return f, nil
}
