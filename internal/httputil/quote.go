// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"net/url"
	"strings"
)

const upperhex = "0123456789ABCDEF"

// Quote percent-encodes s byte by byte, leaving ASCII letters, digits,
// "_.-~" and "/" untouched. url.PathEscape keeps more characters ("$&+,;=:@")
// than upstream services expect in identifiers.
func Quote(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) || c == '/' {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

// Unquote reverses percent-encoding. "+" is left alone. Malformed escapes
// return s unchanged.
func Unquote(s string) string {
	out, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return out
}

func unreserved(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' ||
		c == '_' || c == '.' || c == '-' || c == '~'
}
