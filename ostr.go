package adhandler

import "strings"

/*
ostr.go implements the generic octet-string value decoder of §4.5. The
teacher's OctetString carried RFC4517 equality/ordering matching rules for
schema evaluation; this domain only needs the one-way rendering a
decoder produces (uppercase hex, space-separated), so the matching-rule
machinery was dropped along with the ASN.1 tag/Size bookkeeping the
teacher needed for BER encoding, which this module never performs.
*/

const hexDigits = "0123456789ABCDEF"

// DecodeOctetString implements the generic octet-string decoder of §4.5.
func DecodeOctetString(value any, raw []byte) (any, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var b strings.Builder
	b.Grow(len(raw)*3 - 1)
	for i, c := range raw {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0f])
	}
	return b.String(), nil
}
