package identity

import (
	"strconv"
	"strings"
)

// codeString renders a decoded JSON otp value in its string form.
// Numbers arrive as float64.
func codeString(v any) string {
	switch c := v.(type) {
	case string:
		return strings.TrimSpace(c)
	case float64:
		if c == float64(int64(c)) {
			return strconv.FormatInt(int64(c), 10)
		}
		return strconv.FormatFloat(c, 'f', -1, 64)
	}
	return ""
}
