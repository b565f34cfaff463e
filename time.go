package adhandler

import "time"

/*
time.go implements the AD generalized-time decoder of §4.5. Adapted from
the teacher's RFC4517 GeneralizedTime parser (same staged approach: strip
a trailing "Z", grow the time.Parse format string to accommodate an
optional fractional component and an optional zone differential) but the
output differs: the teacher's GeneralizedTime.String round-trips back to
wire form ("20060102150405Z"), while this decoder's job is to produce the
spec's human-readable "YYYY-MM-DD HH:mm:ss" rendering. The teacher's
deprecated UTCTime syntax has no AD analog and was dropped.
*/

// DecodeGeneralizedTime implements the AD generalized-time decoder of §4.5.
func DecodeGeneralizedTime(value any, raw []byte) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, &DecoderError{Message: "generalized time decoder requires a string value"}
	}
	format := `20060102150405`
	zulu := len(s) > 0 && s[len(s)-1] == 'Z'
	body := s
	if zulu {
		body = s[:len(s)-1]
	}
	if len(body) < 14 {
		return nil, &DecoderError{Raw: s, Message: "generalized time value too short"}
	}

	rest := body[14:]
	if len(rest) > 0 && (rest[0] == '.' || rest[0] == ',') {
		format += "."
		count := 0
		for _, ch := range rest[1:] {
			if count >= 6 || !isDigit(ch) {
				break
			}
			format += "0"
			count++
		}
	}

	if !zulu && len(body) >= 5 {
		last5 := body[len(body)-5:]
		if last5[0] == '+' || last5[0] == '-' {
			format += "-0700"
		}
	}

	t, err := time.Parse(format, body)
	if err != nil {
		return nil, &DecoderError{Raw: s, Message: "invalid generalized time value " + s}
	}
	return t.UTC().Format("2006-01-02 15:04:05"), nil
}
