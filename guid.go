package adhandler

import (
	"fmt"

	"github.com/google/uuid"
)

/*
guid.go implements the GUID value decoder of §4.5. Adapted from the
teacher's uuid.go, which wrapped github.com/google/uuid to implement
RFC 4530's UUID string syntax; the AD "objectGUID" wire format is the same
16 raw bytes but with a different on-the-wire byte order and a different
string rendering (braced, uppercase, with the first three groups
byte-reversed) than RFC 4122's canonical lower-case dashed form, so the
formatting here is hand-written per spec.md §4.5 rather than delegating to
uuid.UUID.String. google/uuid is still exercised: uuid.FromBytes performs
the 16-byte length validation before the custom formatting runs.
*/

// DecodeGUID implements the GUID decoder of §4.5.
func DecodeGUID(value any, raw []byte) (any, error) {
	if len(raw) != 16 {
		return nil, &DecoderError{Message: "GUID requires exactly 16 raw bytes"}
	}
	if _, err := uuid.FromBytes(raw); err != nil {
		return nil, &DecoderError{Message: "invalid GUID bytes: " + err.Error()}
	}

	b := raw
	s := fmt.Sprintf(
		"{%02X%02X%02X%02X-%02X%02X-%02X%02X-%02X%02X-%02X%02X%02X%02X%02X%02X}",
		b[3], b[2], b[1], b[0],
		b[5], b[4],
		b[7], b[6],
		b[8], b[9],
		b[10], b[11], b[12], b[13], b[14], b[15],
	)
	return s, nil
}
