package pairing

// TokenLength is the number of characters in an issued token.
const TokenLength = 7

// Alphabet lists the characters a token may contain.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Token is an opaque pairing credential. Its identity is the string value.
type Token string

// String returns the raw token value.
func (t Token) String() string {
	return string(t)
}

// Valid reports whether t has the issued token shape.
func (t Token) Valid() bool {
	if len(t) != TokenLength {
		return false
	}
	for i := 0; i < len(t); i++ {
		c := t[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

// Redacted returns a log-safe form of the token.
func (t Token) Redacted() string {
	if len(t) <= 2 {
		return "…"
	}
	return string(t[:2]) + "…"
}
