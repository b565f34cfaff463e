package adhandler

import (
	"context"
	"sync"
	"time"
)

/*
schema.go implements the schema bootstrap of §4.4, replacing the
teacher's schema.go, which parsed a full RFC4512 SubschemaSubentry
(ldapSyntaxes, matchingRules, objectClasses, DIT content/structure rules
and so on). AD's attributeSchema self-search only ever needs three
attributes (lDAPDisplayName, attributeSyntax, isSingleValued); the general
subschema model had no analog left to adapt once dn.go/asn1.go (DN and
BER parsing it depended on) were dropped, so this is written fresh against
§4.4's algorithm, keeping the teacher's "Push"-style incremental population
idiom (populate a map entry at a time as rows arrive) rather than building
an intermediate tree first.
*/

// Decoder converts a transport-parsed attribute value (plus its raw bytes,
// when the transport can supply them) into a typed Go value.
type Decoder func(value any, raw []byte) (any, error)

// AttrSchema is one schema-map entry (§3 "Schema map").
type AttrSchema struct {
	SingleValued bool
	Decoder      Decoder
	IsBoolean    bool
}

// SchemaMap is the bootstrap-populated, read-only-after-init attribute
// cardinality/decoder table of §3.
type SchemaMap map[string]AttrSchema

const bootstrapThrottle = 10 * time.Second

// filetimeAttrs always decode via DecodeFiletime regardless of attributeSyntax,
// per §4.4's hard-coded table.
var filetimeAttrs = map[string]bool{
	"accountExpires":     true,
	"badPasswordTime":    true,
	"lastLogonTimestamp": true,
}

// syntaxDecoders maps attributeSyntax OIDs to decoders per §4.4's table,
// excluding 2.5.5.10 (OctetString), which needs the name-sniffing rule and
// is handled separately in decoderForRow.
var syntaxDecoders = map[string]Decoder{
	"2.5.5.8":  DecodeBoolean,
	"2.5.5.9":  DecodeInt32,
	"2.5.5.11": DecodeGeneralizedTime,
	"2.5.5.15": DecodeOctetString,
	"2.5.5.17": DecodeSID,
}

const booleanSyntaxOID = "2.5.5.8"
const octetStringSyntaxOID = "2.5.5.10"

// schemaRow is one attributeSchema entry read during bootstrap.
type schemaRow struct {
	name         string
	syntax       string
	singleValued bool
}

// schemaState is the handler's bootstrap state: the mutable machinery of
// §4.4/§4.6/§9 ("throttled initialization → single-flight").
type schemaState struct {
	mu            sync.Mutex
	initialized   bool
	bootstrapping bool
	lastAttempt   time.Time
	lastErr       error
	done          chan struct{}

	schema       SchemaMap
	boolAttrs    map[string]bool
	fromOverride map[string]bool
	log          Logger
}

func newSchemaState(overrides map[string]bool, log Logger) *schemaState {
	s := &schemaState{
		schema:       make(SchemaMap),
		boolAttrs:    make(map[string]bool),
		fromOverride: make(map[string]bool),
		log:          log,
	}
	for attr, sv := range overrides {
		s.schema[attr] = AttrSchema{SingleValued: sv}
		s.fromOverride[attr] = true
	}
	return s
}

// bootstrapFunc performs the self-search for attributeSchema rows. It is
// supplied by the handler, which knows how to issue a raw search over its
// own connection.
type bootstrapFunc func(ctx context.Context) ([]schemaRow, error)

// ensure runs bootstrap at most once concurrently and at most once per
// bootstrapThrottle window (§4.4, §5 "shared resource policy", §9
// "throttled initialization → single-flight"). Calls within the window
// while a prior attempt failed return that attempt's error immediately
// without retrying.
func (s *schemaState) ensure(ctx context.Context, fn bootstrapFunc) error {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return nil
	}
	if s.bootstrapping {
		done := s.done
		s.mu.Unlock()
		<-done
		return s.lastErr
	}
	if !s.lastAttempt.IsZero() && time.Since(s.lastAttempt) < bootstrapThrottle {
		err := s.lastErr
		s.mu.Unlock()
		return err
	}
	s.bootstrapping = true
	s.lastAttempt = time.Now()
	s.done = make(chan struct{})
	s.mu.Unlock()

	err := s.run(ctx, fn)

	s.mu.Lock()
	s.bootstrapping = false
	s.lastErr = err
	if err == nil {
		s.initialized = true
	}
	close(s.done)
	s.mu.Unlock()

	return err
}

func (s *schemaState) run(ctx context.Context, fn bootstrapFunc) error {
	rows, err := fn(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bootstrapSeen := make(map[string]bool)

	for _, row := range rows {
		if err := ValidateNumericOID(row.syntax); err != nil {
			return &SchemaError{Attr: row.name, Message: err.Error()}
		}

		if existing, ok := s.schema[row.name]; ok {
			if s.fromOverride[row.name] {
				if existing.SingleValued != row.singleValued {
					s.log.Debug("overrideSingleValued wins over disagreeing bootstrap row", map[string]string{"attr": row.name})
				}
			} else if bootstrapSeen[row.name] && existing.SingleValued != row.singleValued {
				return &SchemaError{Attr: row.name, Message: "conflicting singleValued across duplicate schema rows"}
			}
		}
		bootstrapSeen[row.name] = true

		entry := s.schema[row.name]
		if !s.fromOverride[row.name] {
			entry.SingleValued = row.singleValued
		}
		entry.IsBoolean = row.syntax == booleanSyntaxOID
		entry.Decoder = decoderForRow(row)
		if entry.Decoder == nil {
			s.log.Warn("no decoder assigned for attribute", map[string]string{"attr": row.name, "attributeSyntax": row.syntax})
		}
		s.schema[row.name] = entry

		if entry.IsBoolean {
			s.boolAttrs[row.name] = true
		}
	}

	if err := assertBootstrapInvariants(s.schema); err != nil {
		return err
	}

	return nil
}

// decoderForRow implements the decoder-assignment rule of §4.4.
func decoderForRow(row schemaRow) Decoder {
	if filetimeAttrs[row.name] {
		return DecodeFiletime
	}
	if d, ok := syntaxDecoders[row.syntax]; ok {
		return d
	}
	if row.syntax == octetStringSyntaxOID {
		if hasSuffixFold(row.name, "GUID") || hasSuffixFold(row.name, "Guid") {
			return DecodeGUID
		}
		return DecodeOctetString
	}
	return nil
}

func hasSuffixFold(s, suffix string) bool {
	if len(s) < len(suffix) {
		return false
	}
	return s[len(s)-len(suffix):] == suffix
}

// assertBootstrapInvariants implements §4.4's closing assertions and §9
// Open Question (ii)'s clearer-error requirement.
func assertBootstrapInvariants(schema SchemaMap) error {
	member, ok := schema["member"]
	if !ok {
		return &SchemaError{Attr: "member", Message: "attribute \"member\" was not present in the schema scan"}
	}
	if member.SingleValued {
		return &SchemaError{Attr: "member", Message: "attribute \"member\" must be multi-valued"}
	}

	for _, attr := range []string{"attributeSyntax", "distinguishedName", "lDAPDisplayName", "member", "objectClass"} {
		if e, ok := schema[attr]; ok && e.IsBoolean {
			return &SchemaError{Attr: attr, Message: "attribute must not be classified as boolean"}
		}
	}
	return nil
}
