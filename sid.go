package adhandler

import (
	"encoding/binary"
	"strconv"
	"strings"
)

/*
sid.go implements the SID value decoder of §4.5. There is no teacher
analog. Written by hand per the exact MS-DTYP SID binary layout spec.md
§4.5 specifies: a library candidate (bwmarrin/go-objectsid, seen in the
retrieved corpus's SGNL-ai-adapters LDAP datasource) was considered, but
its Decode entry point returns no error and its validation behavior for
malformed input could not be verified against its source in this
retrieval set, while the spec mandates exact validation (revision must
equal 1, length must equal 8+4N) — so this decoder is self-contained and
does not add that dependency. See DESIGN.md.
*/

// DecodeSID implements the SID decoder of §4.5.
func DecodeSID(value any, raw []byte) (any, error) {
	if len(raw) < 8 {
		return nil, &DecoderError{Message: "SID requires at least 8 raw bytes"}
	}

	revision := raw[0]
	if revision != 1 {
		return nil, &DecoderError{Message: "SID revision must equal 1, got " + strconv.Itoa(int(revision))}
	}

	subAuthorityCount := int(raw[1])
	wantLen := 8 + 4*subAuthorityCount
	if len(raw) != wantLen {
		return nil, &DecoderError{Message: "SID length must equal 8+4*N: want " + strconv.Itoa(wantLen) + ", got " + strconv.Itoa(len(raw))}
	}

	var authority uint64
	for i := 2; i < 8; i++ {
		authority = authority<<8 | uint64(raw[i])
	}

	var b strings.Builder
	b.WriteString("S-")
	b.WriteString(strconv.Itoa(int(revision)))
	b.WriteString("-")
	b.WriteString(strconv.FormatUint(authority, 10))

	for i := 0; i < subAuthorityCount; i++ {
		off := 8 + 4*i
		sub := binary.LittleEndian.Uint32(raw[off : off+4])
		b.WriteString("-")
		b.WriteString(strconv.FormatUint(uint64(sub), 10))
	}

	return b.String(), nil
}
