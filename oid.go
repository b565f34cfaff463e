package adhandler

/*
oid.go validates the numeric OID strings read from attributeSchema's
attributeSyntax attribute during schema bootstrap (§4.4). Adapted from the
teacher's oid.go, which defined OID/NumericOID/Descriptor as receiver
methods on marker types (RFC4512, RFC4517) belonging to a much larger
RFC-namespace convention this module does not carry (most of that
convention's other receivers lived in files dropped during adaptation,
e.g. dn.go, schema.go); the validation logic itself is unchanged, just
exposed as a plain function. NumericOID parsing/validation is still
sourced from JesseCoretta/go-objectid, the teacher's own dependency,
repurposed here for attributeSyntax OID validation instead of general
RFC4512 schema-subentry parsing.
*/

import (
	"github.com/JesseCoretta/go-objectid"
)

// ValidateNumericOID confirms raw is a well-formed dotted-decimal OID
// (e.g. "2.5.5.8"), as used for attributeSyntax values.
func ValidateNumericOID(raw string) error {
	if len(raw) == 0 {
		return errorBadLength("Numeric OID", 0)
	}
	if _, err := objectid.NewDotNotation(raw); err != nil {
		return errorTxt("invalid attributeSyntax OID " + raw + ": " + err.Error())
	}
	return nil
}
