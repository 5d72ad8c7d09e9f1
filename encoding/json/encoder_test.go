package json

import (
	"bytes"
	"errors"
	"testing"

	"github.com/arnodel/jsonscript/document"
	"github.com/arnodel/jsonscript/internal/format"
	"github.com/arnodel/jsonscript/token"
)

func number(s string) *token.Scalar {
	return token.NewScalar(token.Number, []byte(s))
}

// TestEncoderCompact tests compact encoding of token streams
func TestEncoderCompact(t *testing.T) {
	tests := []struct {
		name     string
		tokens   []token.Token
		expected string
	}{
		{"true", []token.Token{token.TrueScalar}, "true\n"},
		{"null", []token.Token{token.NullScalar}, "null\n"},
		{"number literal is kept", []token.Token{number("1.50e+3")}, "1.50e+3\n"},
		{"string", []token.Token{token.StringScalar("hé\"")}, `"hé\""` + "\n"},
		{"empty array", []token.Token{&token.StartArray{}, &token.EndArray{}}, "[]\n"},
		{"empty object", []token.Token{&token.StartObject{}, &token.EndObject{}}, "{}\n"},
		{
			"array",
			[]token.Token{&token.StartArray{}, number("1"), token.StringScalar("a"), token.NullScalar, &token.EndArray{}},
			`[1,"a",null]` + "\n",
		},
		{
			"object",
			[]token.Token{
				&token.StartObject{},
				token.KeyScalar("a"), number("1"),
				token.KeyScalar("b"), &token.StartArray{}, token.FalseScalar, &token.EndArray{},
				token.KeyScalar("c"), &token.StartObject{}, &token.EndObject{},
				&token.EndObject{},
			},
			`{"a":1,"b":[false],"c":{}}` + "\n",
		},
		{
			"several values",
			[]token.Token{number("1"), &token.StartArray{}, &token.EndArray{}, token.TrueScalar},
			"1\n[]\ntrue\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := NewEncoder(&buf, 0).Consume(token.NewSliceReadStream(tt.tokens))
			if err != nil {
				t.Fatalf("encode error: %v", err)
			}
			if buf.String() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, buf.String())
			}
		})
	}
}

// TestEncoderIndent tests indented encoding
func TestEncoderIndent(t *testing.T) {
	doc := document.MustFromGo(map[string]any{
		"a": []any{1, 2},
		"b": map[string]any{},
		"c": []any{},
		"d": map[string]any{"e": nil},
	})
	var buf bytes.Buffer
	if err := NewEncoder(&buf, 2).Encode(doc); err != nil {
		t.Fatalf("encode error: %v", err)
	}
	expected := `{
  "a": [
    1,
    2
  ],
  "b": {},
  "c": [],
  "d": {
    "e": null
  }
}
`
	if buf.String() != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, buf.String())
	}
}

func TestEncoderColor(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf, 0)
	enc.Colorizer = &format.Colorizer{
		KeyColorCode:     []byte("<k>"),
		ScalarColorCodes: [4][]byte{[]byte("<n>"), []byte("<b>"), []byte("<#>"), []byte("<s>")},
		ResetCode:        []byte("</>"),
	}
	if err := enc.Encode(document.MustFromGo(map[string]any{"x": []any{1, "y", true, nil}})); err != nil {
		t.Fatalf("encode error: %v", err)
	}
	expected := `{<k>"x"</>:[<#>1</>,<s>"y"</>,<b>true</>,<n>null</>]}` + "\n"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}

type failingWriter struct{}

var errWrite = errors.New("write failed")

func (failingWriter) Write([]byte) (int, error) {
	return 0, errWrite
}

func TestEncoderWriteError(t *testing.T) {
	enc := NewEncoder(failingWriter{}, 0)
	err := enc.Encode(document.NewSequence(document.Int(1)))
	if !errors.Is(err, errWrite) {
		t.Fatalf("expected errWrite, got %v", err)
	}
	// The encoder can be reused after an error.
	var buf bytes.Buffer
	enc.Printer = &format.DefaultPrinter{Writer: &buf, IndentSize: -1}
	if err := enc.Encode(document.Int(2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "2\n" {
		t.Errorf("expected %q, got %q", "2\n", buf.String())
	}
}

// flakyWriter fails its n-th write.
type flakyWriter struct {
	bytes.Buffer
	n int
}

func (w *flakyWriter) Write(b []byte) (int, error) {
	w.n--
	if w.n == 0 {
		return 0, errWrite
	}
	return w.Buffer.Write(b)
}

func TestEncoderRecoversIndentAfterError(t *testing.T) {
	w := &flakyWriter{n: 3}
	enc := NewEncoder(w, 2)
	err := enc.Encode(document.NewSequence(document.Int(1)))
	if !errors.Is(err, errWrite) {
		t.Fatalf("expected errWrite, got %v", err)
	}
	w.Reset()
	if err := enc.Encode(document.NewSequence(document.Int(2))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := w.String(), "[\n  2\n]\n"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
