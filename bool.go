package adhandler

/*
bool.go implements the Boolean value decoder: on the wire, AD
Boolean-syntax (2.5.5.8) attribute values are literally "TRUE" or "FALSE".
This decoder is deliberately case-sensitive: "true" or "false" must be
rejected rather than silently normalized.
*/

// DecodeBoolean implements the Boolean decoder of §4.5.
func DecodeBoolean(value any, raw []byte) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, &DecoderError{Message: "boolean decoder requires a string value"}
	}
	switch s {
	case "TRUE":
		return true, nil
	case "FALSE":
		return false, nil
	default:
		return nil, &DecoderError{Raw: s, Message: "invalid boolean value " + s}
	}
}
