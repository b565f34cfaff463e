package adhandler

import (
	"errors"
	"strconv"
)

/*
err.go implements the structured error taxonomy of this package. Each
error kind carries the DN, attribute name, raw value and message context
called for so callers can distinguish configuration mistakes from
transport failures from decode failures without string-matching.
*/

var mkerr func(string) error = errors.New

func errorBadLength(name string, length int) error {
	return mkerr("invalid length '" + strconv.Itoa(length) + "' for " + name)
}

func errorBadType(name string) error {
	return mkerr("incompatible input type for " + name)
}

func errorTxt(txt string) error {
	return mkerr(txt)
}

// Kind distinguishes the structured error categories of §7.
type Kind string

const (
	KindConfig      Kind = "configuration"
	KindFilter      Kind = "filter validation"
	KindSchema      Kind = "schema"
	KindTransport   Kind = "transport"
	KindEntry       Kind = "entry invariant"
	KindDecoder     Kind = "decoder"
)

// ConfigError reports an invalid or unknown handler configuration option.
type ConfigError struct {
	Option  string
	Message string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Option + ": " + e.Message
}
func (e *ConfigError) Kind() Kind { return KindConfig }

// FilterError reports a filter-expression validation failure.
type FilterError struct {
	Tag     string
	Attr    string
	Value   string
	Message string
}

func (e *FilterError) Error() string {
	s := "filter validation error: " + e.Message
	if e.Tag != "" {
		s += " (tag=" + e.Tag
		if e.Attr != "" {
			s += " attr=" + e.Attr
		}
		s += ")"
	}
	return s
}
func (e *FilterError) Kind() Kind { return KindFilter }

// SchemaError reports inconsistent or missing schema-bootstrap data.
type SchemaError struct {
	Attr    string
	Message string
}

func (e *SchemaError) Error() string {
	s := "schema error: " + e.Message
	if e.Attr != "" {
		s += " (attr=" + e.Attr + ")"
	}
	return s
}
func (e *SchemaError) Kind() Kind { return KindSchema }

// TransportError reports a connection, bind or LDAP-protocol failure.
type TransportError struct {
	Status  int
	Message string
}

func (e *TransportError) Error() string {
	return "transport error: " + e.Message
}
func (e *TransportError) Kind() Kind { return KindTransport }

// EntryError reports an entry that violates a driver invariant.
type EntryError struct {
	DN      string
	Attr    string
	Message string
}

func (e *EntryError) Error() string {
	s := "entry invariant error: " + e.Message
	if e.DN != "" {
		s += " (dn=" + e.DN + ")"
	}
	if e.Attr != "" {
		s += " (attr=" + e.Attr + ")"
	}
	return s
}
func (e *EntryError) Kind() Kind { return KindEntry }

// DecoderError reports a value that failed to decode.
type DecoderError struct {
	Attr    string
	Raw     string
	Message string
}

func (e *DecoderError) Error() string {
	s := "decoder error: " + e.Message
	if e.Attr != "" {
		s += " (attr=" + e.Attr + ")"
	}
	return s
}
func (e *DecoderError) Kind() Kind { return KindDecoder }
