package adhandler

/*
unicode.go carries the small set of ASCII character-class predicates the
rest of this package needs for attribute-name validation and
generalized-time parsing. The
teacher's unicode.go additionally carried UTF8String parsing and a battery
of *unicode.RangeTable declarations for ASN.1 string syntaxes this module
no longer implements (DN parsing, Teletex/Videotex/BMP strings); those are
dropped along with the syntaxes they served.
*/

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isUAlpha(ch rune) bool {
	return 'A' <= ch && ch <= 'Z'
}

func isLAlpha(ch rune) bool {
	return 'a' <= ch && ch <= 'z'
}

func isAlpha(ch rune) bool {
	return isUAlpha(ch) || isLAlpha(ch)
}
