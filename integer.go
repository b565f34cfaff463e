package adhandler

import "strconv"

/*
integer.go implements the int32 value decoder of §4.5. The teacher's
RFC4517 Integer was a pure validator (it rejected octal-looking leading
zeroes and non-digit characters but never produced a value); this decoder
delegates to strconv.ParseInt instead, which rejects non-digit characters
and out-of-range values and produces the decoded int32 the spec requires.
Unlike the teacher's loop, ParseInt accepts leading zeroes and a leading
sign.
*/

// DecodeInt32 implements the int32 decoder of §4.5: empty string decodes
// to nil, any other string is parsed as a base-10 int32, and any non-string
// input (already-typed by an upstream decoder) passes through unchanged.
func DecodeInt32(value any, raw []byte) (any, error) {
	s, ok := value.(string)
	if !ok {
		return value, nil
	}
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return nil, &DecoderError{Raw: s, Message: "invalid int32 value " + s}
	}
	return int32(n), nil
}
