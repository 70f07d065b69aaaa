package rest

import "fmt"

// URLEncode percent-encodes a URL parameter. Unreserved characters
// [A-Za-z0-9-_.~] pass through; every other byte becomes %XX with uppercase
// hex digits.
func URLEncode(value string) string {
	escaped := make([]byte, 0, len(value))
	for i := 0; i < len(value); i++ {
		c := value[i]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') ||
			c == '-' || c == '_' || c == '.' || c == '~' {
			escaped = append(escaped, c)
			continue
		}
		escaped = append(escaped, fmt.Sprintf("%%%02X", c)...)
	}
	return string(escaped)
}
