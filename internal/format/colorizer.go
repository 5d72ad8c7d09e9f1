package format

import "github.com/arnodel/jsonscript/token"

// A Colorizer surrounds scalars with ANSI escape codes.  A nil *Colorizer
// prints scalars verbatim.
type Colorizer struct {
	KeyColorCode     []byte
	ScalarColorCodes [4][]byte
	ResetCode        []byte
}

func (c *Colorizer) ScalarColorCode(scalar *token.Scalar) []byte {
	if scalar.IsKey() {
		return c.KeyColorCode
	}
	return c.ScalarColorCodes[scalar.Type()]
}

func (c *Colorizer) PrintScalar(p Printer, scalar *token.Scalar) {
	if c != nil {
		p.PrintBytes(c.ScalarColorCode(scalar))
	}
	p.PrintBytes(scalar.Bytes)
	if c != nil {
		p.PrintBytes(c.ResetCode)
	}
}

// Some color ANSI codes
var (
	Reset = []byte("\033[0m")

	Yellow = []byte("\033[33m")
	White  = []byte("\033[37m")
	Green  = []byte("\033[32m")

	DimWhite   = []byte("\033[37;2m")
	BrightBlue = []byte("\033[34;1m")
)

// DefaultColorizer colors null, booleans, numbers, strings and keys
// differently.
var DefaultColorizer = Colorizer{
	ScalarColorCodes: [4][]byte{DimWhite, Yellow, White, Green},
	KeyColorCode:     BrightBlue,
	ResetCode:        Reset,
}
