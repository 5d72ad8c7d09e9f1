package scanner

// Char is a byte, a rune, or what Read returns: a byte or EOF.
type Char interface {
	~byte | ~rune | ~int
}

func IsAlpha[T Char](b T) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b == '_'
}

func IsDigit[T Char](b T) bool {
	return b >= '0' && b <= '9'
}

func IsAlnum[T Char](b T) bool {
	return IsAlpha(b) || IsDigit(b)
}

// IsCtrl reports whether b is an ASCII control character.  EOF is not one.
func IsCtrl[T Char](b T) bool {
	return b >= 0 && b < 32
}

// IsSpace reports whether b is JSON whitespace.
func IsSpace[T Char](b T) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
