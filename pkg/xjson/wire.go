// Package xjson contains JSON encoding helpers which produce output
// byte-compatible with the vendor's cloud (a PHP json_encode-like style:
// "/" is escaped, non-ASCII characters are kept as is).
package xjson

import (
	"encoding/json"
	"fmt"
	"io"
	"unicode/utf8"
)

// String is a string encoded with "/" escaped as `\/`.
type String string

// MarshalJSON implements json.Marshaler.
func (s String) MarshalJSON() ([]byte, error) {
	return AppendString(nil, string(s)), nil
}

// PreEscaped is a string which may already contain JSON escape sequences
// (like two characters `\` and `r`), they are passed through as is.
type PreEscaped string

// MarshalJSON implements json.Marshaler.
func (s PreEscaped) MarshalJSON() ([]byte, error) {
	return AppendPreEscaped(nil, string(s)), nil
}

// Encode writes obj as a single line of JSON terminated by "\n".
func Encode(w io.Writer, obj any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(obj); err != nil {
		return fmt.Errorf("unable to encode %T: %w", obj, err)
	}
	return nil
}

// AppendString appends s as a quoted JSON string.
func AppendString(buf []byte, s string) []byte {
	return appendString(buf, s, false)
}

// AppendPreEscaped appends s as a quoted JSON string. A backslash which
// starts a valid JSON escape sequence is copied as is together with the
// sequence; other backslashes are escaped.
func AppendPreEscaped(buf []byte, s string) []byte {
	return appendString(buf, s, true)
}

const hexDigits = "0123456789abcdef"

func appendString(buf []byte, s string, preEscaped bool) []byte {
	buf = append(buf, '"')
	for idx := 0; idx < len(s); {
		c := s[idx]
		if c >= utf8.RuneSelf {
			r, size := utf8.DecodeRuneInString(s[idx:])
			if r == utf8.RuneError && size == 1 {
				buf = append(buf, `\ufffd`...)
			} else {
				buf = append(buf, s[idx:idx+size]...)
			}
			idx += size
			continue
		}

		switch c {
		case '\\':
			if preEscaped {
				if n := escapeSequenceLength(s[idx:]); n > 0 {
					buf = append(buf, s[idx:idx+n]...)
					idx += n
					continue
				}
			}
			buf = append(buf, '\\', '\\')
		case '"':
			buf = append(buf, '\\', '"')
		case '/':
			buf = append(buf, '\\', '/')
		case '\n':
			buf = append(buf, '\\', 'n')
		case '\r':
			buf = append(buf, '\\', 'r')
		case '\t':
			buf = append(buf, '\\', 't')
		case '\b':
			buf = append(buf, '\\', 'b')
		case '\f':
			buf = append(buf, '\\', 'f')
		default:
			if c < 0x20 || c == 0x7f {
				buf = append(buf, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
			} else {
				buf = append(buf, c)
			}
		}
		idx++
	}
	return append(buf, '"')
}

// escapeSequenceLength returns the length of the JSON escape sequence at the
// beginning of s (which starts with a backslash), or zero if there is none.
func escapeSequenceLength(s string) int {
	if len(s) < 2 {
		return 0
	}
	switch s[1] {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		return 2
	case 'u':
		if len(s) < 6 {
			return 0
		}
		for _, c := range []byte(s[2:6]) {
			if !isHexDigit(c) {
				return 0
			}
		}
		return 6
	}
	return 0
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
