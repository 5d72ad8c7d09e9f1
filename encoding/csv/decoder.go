// Package csv decodes CSV rows into JSON token streams, one record per row.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/arnodel/jsonscript/document"
	"github.com/arnodel/jsonscript/token"
)

// A Decoder reads CSV input and turns each row into a JSON value.
//
// Fields are converted as follows: an empty field is null, "true" and "false"
// are booleans, a field that is a valid JSON number is a number and anything
// else is a string.
type Decoder struct {
	reader                *csv.Reader
	HasHeader             bool // When true, treat the first record as a header
	RecordsProduceObjects bool // When false, produce an array for each record, else an object
	fieldNames            []*token.Scalar
	rowCount              int
	line                  int
}

// NewDecoder sets up a new Decoder instance to read from the given input.
// Rows may have different numbers of fields.
func NewDecoder(in io.Reader) *Decoder {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	return &Decoder{reader: reader}
}

// Decode reads one CSV row and writes it to out as an array or an object.  It
// returns io.EOF at the end of the input.  Invalid CSV is reported as a
// *csv.ParseError.
func (d *Decoder) Decode(out token.WriteStream) error {
	record, err := d.reader.Read()
	if err != nil {
		return err
	}
	if d.rowCount == 0 && d.HasHeader {
		d.rowCount++
		d.SetFieldNames(record)
		record, err = d.reader.Read()
		if err != nil {
			return err
		}
	}
	d.rowCount++
	d.line, _ = d.reader.FieldPos(0)
	d.produceRecord(record, out)
	return nil
}

// SetFieldNames sets the field names for records.  Columns beyond the last
// name get the names field_<n>.
func (d *Decoder) SetFieldNames(names []string) {
	d.fieldNames = d.fieldNames[:0]
	for _, name := range names {
		d.fieldNames = append(d.fieldNames, token.KeyScalar(name))
	}
}

// Line returns the input line where the last row decoded started, or 0.
func (d *Decoder) Line() int {
	return d.line
}

func (d *Decoder) produceRecord(record []string, out token.WriteStream) {
	if d.RecordsProduceObjects {
		out.Put(&token.StartObject{})
		for i, field := range record {
			out.Put(d.getFieldName(i))
			out.Put(fieldToScalar(field))
		}
		out.Put(&token.EndObject{})
	} else {
		out.Put(&token.StartArray{})
		for _, field := range record {
			out.Put(fieldToScalar(field))
		}
		out.Put(&token.EndArray{})
	}
}

func (d *Decoder) getFieldName(i int) *token.Scalar {
	for j := len(d.fieldNames); j <= i; j++ {
		d.fieldNames = append(d.fieldNames, token.KeyScalar(fmt.Sprintf("field_%d", j+1)))
	}
	return d.fieldNames[i]
}

func fieldToScalar(field string) *token.Scalar {
	switch field {
	case "":
		return token.NullScalar
	case "true":
		return token.TrueScalar
	case "false":
		return token.FalseScalar
	}
	if couldBeNumber(field) {
		if n, err := document.ParseNumber(field); err == nil {
			return token.NewScalar(token.Number, []byte(n.Literal()))
		}
	}
	return token.StringScalar(field)
}

func couldBeNumber(field string) bool {
	b := field[0]
	return b == '-' || b >= '0' && b <= '9'
}
