// Package stream reads records from and writes records to byte streams.
//
// A Source decodes one top-level value per call to Next and a Sink writes one
// value per call to Emit, each value followed by a newline and flushed
// immediately.
package stream

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/arnodel/jsonscript/document"
	csvdec "github.com/arnodel/jsonscript/encoding/csv"
	"github.com/arnodel/jsonscript/encoding/json"
	"github.com/arnodel/jsonscript/token"
)

// EndOfStream is returned by Source.Next when there are no more records.
var EndOfStream = io.EOF

// ErrMalformedRecord is wrapped by every *MalformedRecordError.
var ErrMalformedRecord = errors.New("malformed record")

// MalformedRecordError reports input that does not decode to a valid record.
type MalformedRecordError struct {
	Record int   // 1-based number of the record being decoded
	Line   int   // 1-based line of the error, 0 if unknown
	Col    int   // 1-based column of the error, 0 if unknown
	Offset int64 // 0-based byte offset of the error in the input, -1 if unknown
	Err    error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record #%d: %s", e.Record, e.Err)
}

func (e *MalformedRecordError) Unwrap() []error {
	return []error{ErrMalformedRecord, e.Err}
}

// A RecordDecoder writes the tokens of the next record to a token stream.  It
// returns io.EOF when there are no more records.
type RecordDecoder interface {
	Decode(out token.WriteStream) error
}

var (
	_ RecordDecoder = (*json.Decoder)(nil)
	_ RecordDecoder = (*csvdec.Decoder)(nil)
)

// A Source produces records lazily from a RecordDecoder.  Nothing is read
// until Next is called.
type Source struct {
	dec     RecordDecoder
	builder *document.Builder
	count   int
	err     error
}

type sourceOptions struct {
	splitArrays bool
}

// A SourceOption configures NewSource.
type SourceOption func(*sourceOptions)

// SplitArrays makes each item of a top-level array a record of its own.
// Values that are not arrays are still returned as records.
func SplitArrays(split bool) SourceOption {
	return func(o *sourceOptions) {
		o.splitArrays = split
	}
}

// NewSource returns a Source reading JSON values from r.
func NewSource(r io.Reader, opts ...SourceOption) *Source {
	var o sourceOptions
	for _, opt := range opts {
		opt(&o)
	}
	dec := json.NewDecoder(r)
	dec.SplitArrays = o.splitArrays
	return NewSourceFrom(dec)
}

// NewSourceFrom returns a Source reading records from dec.
func NewSourceFrom(dec RecordDecoder) *Source {
	return &Source{dec: dec, builder: document.NewBuilder()}
}

// Next returns the next record.  It returns EndOfStream when the input is
// exhausted and a *MalformedRecordError when the next bytes are not a valid
// record.  Once Next has returned an error it keeps returning it.
func (s *Source) Next() (document.Value, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.builder.Reset()
	err := s.dec.Decode(s.builder)
	if err == nil {
		var v document.Value
		v, err = s.builder.Result()
		if err == nil {
			s.count++
			return v, nil
		}
		err = &MalformedRecordError{Record: s.count + 1, Offset: -1, Err: err}
	}
	s.err = s.classify(err)
	return nil, s.err
}

// Count returns the number of records returned so far.
func (s *Source) Count() int {
	return s.count
}

func (s *Source) classify(err error) error {
	var (
		syntaxErr *json.SyntaxError
		csvErr    *csv.ParseError
		malformed *MalformedRecordError
	)
	switch {
	case err == io.EOF:
		return EndOfStream
	case errors.As(err, &malformed):
		return err
	case errors.As(err, &syntaxErr):
		return &MalformedRecordError{
			Record: s.count + 1,
			Line:   syntaxErr.Pos.Line + 1,
			Col:    syntaxErr.Pos.Col + 1,
			Offset: syntaxErr.Pos.Offset,
			Err:    err,
		}
	case errors.As(err, &csvErr):
		return &MalformedRecordError{
			Record: s.count + 1,
			Line:   csvErr.Line,
			Col:    csvErr.Column,
			Offset: -1,
			Err:    err,
		}
	default:
		return fmt.Errorf("reading record #%d: %w", s.count+1, err)
	}
}
