package adhandler

import (
	"bytes"
	"context"
	"strconv"
	"strings"
)

/*
entry.go implements the per-entry half of §4.3: cardinality
normalization against the schema map, the controls/dn pseudo-attribute
strip, the selected-attribute invariant, and ranged-attribute
reassembly. Grounded on the teacher's cardinality idiom in rfc4517.go
(single-vs-multi value handling driven by a lookup table rather than
runtime type sniffing), generalized from syntax-driven to
schema-map-driven per §9 Design Notes' "capability map" guidance.
*/

const rangeOverlap = 10

// resolveSelect turns a query's select list into the set the driver
// checks entries against. A nil list or ["*"] means "everything".
func resolveSelect(sel []string) (selectAll bool, selected map[string]bool) {
	if len(sel) == 0 {
		return true, nil
	}
	if len(sel) == 1 && sel[0] == "*" {
		return true, nil
	}
	selected = make(map[string]bool, len(sel))
	for _, a := range sel {
		selected[a] = true
	}
	return false, selected
}

// wireAttributes builds the attribute list actually requested over the
// wire: "*" when selectAll, otherwise the selected list with virtual
// pseudo-names stripped (§4.3: "strip virtual attribute names from the
// wire attributes list") and distinguishedName always present (§4.3:
// "always include distinguishedName").
func wireAttributes(selectAll bool, selected map[string]bool) []string {
	if selectAll {
		return []string{"*"}
	}
	attrs := make([]string, 0, len(selected)+1)
	attrs = append(attrs, "distinguishedName")
	for a := range selected {
		if a == "distinguishedName" || isVirtualAttr(a) {
			continue
		}
		attrs = append(attrs, a)
	}
	return attrs
}

// parseRangedName splits a wire attribute name of the form
// "<attr>;range=<from>-<to>" (§6 "Ranged attribute naming").
func parseRangedName(name string) (attr string, from int, to string, ok bool) {
	i := strings.Index(name, ";range=")
	if i < 0 {
		return "", 0, "", false
	}
	attr = name[:i]
	bounds := strings.SplitN(name[i+len(";range="):], "-", 2)
	if len(bounds) != 2 {
		return "", 0, "", false
	}
	n, err := strconv.Atoi(bounds[0])
	if err != nil {
		return "", 0, "", false
	}
	return attr, n, bounds[1], true
}

func reverseStrings(s []string) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}

func reverseByteSlices(b [][]byte) [][]byte {
	out := make([][]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

// verifyOverlap checks the OVERLAP=10 trailing values of accum against
// the leading values of next, byte-for-byte, both as strings and (when
// the transport supplied them) as raw bytes (§4.3). Decoded-value
// equality follows for free since decoders are pure functions of
// (value, raw) (§3 invariant 3): verifying the inputs they're pure
// functions of is sufficient.
func verifyOverlap(accum []string, accumBytes [][]byte, next []string, nextBytes [][]byte) error {
	n := rangeOverlap
	if len(accum) < n {
		n = len(accum)
	}
	if len(next) < n {
		n = len(next)
	}
	for i := 0; i < n; i++ {
		if accum[len(accum)-n+i] != next[i] {
			return &EntryError{Message: "range reassembly overlap mismatch"}
		}
	}
	if len(accumBytes) >= n && len(nextBytes) >= n {
		for i := 0; i < n; i++ {
			if !bytes.Equal(accumBytes[len(accumBytes)-n+i], nextBytes[i]) {
				return &EntryError{Message: "range reassembly overlap mismatch (raw bytes)"}
			}
		}
	}
	return nil
}

// completeRanges reassembles every ranged attribute on raw by issuing
// range-completion subsearches over conn until each reaches "-*", per
// §4.3. It must not be called during schema bootstrap (§4.3: "range
// reassembly may not be triggered during schema bootstrap") — the
// bootstrap self-search never requests an attribute large enough to be
// chunked, so this is enforced by construction rather than by a flag.
func completeRanges(ctx context.Context, conn Conn, raw RawEntry) (RawEntry, error) {
	out := RawEntry{DN: raw.DN, Attrs: make(map[string][]string, len(raw.Attrs)), ByteAttrs: make(map[string][][]byte, len(raw.Attrs))}

	for name, values := range raw.Attrs {
		attr, _, to, ranged := parseRangedName(name)
		if !ranged {
			out.Attrs[name] = values
			if bv, ok := raw.ByteAttrs[name]; ok {
				out.ByteAttrs[name] = bv
			}
			continue
		}

		accum := reverseStrings(values)
		accumBytes := reverseByteSlices(raw.ByteAttrs[name])

		for to != "*" {
			offset := len(accum) - rangeOverlap
			if offset < 0 {
				offset = 0
			}

			dnFilter, err := Compile(Equals("distinguishedName", raw.DN), nil)
			if err != nil {
				return RawEntry{}, err
			}

			page, err := conn.SearchPage(ctx, SearchRequest{
				BaseDN:     raw.DN,
				Scope:      ScopeSubtree,
				Filter:     dnFilter,
				Attributes: []string{"distinguishedName", attr + ";range=" + strconv.Itoa(offset) + "-*"},
				PageSize:   1,
			})
			if err != nil {
				return RawEntry{}, err
			}
			if len(page.Entries) != 1 {
				return RawEntry{}, &EntryError{DN: raw.DN, Attr: attr, Message: "range completion search did not return exactly one entry"}
			}

			next := page.Entries[0]
			var chunkName string
			for k := range next.Attrs {
				if k == attr || strings.HasPrefix(k, attr+";range=") {
					chunkName = k
					break
				}
			}
			if chunkName == "" {
				return RawEntry{}, &EntryError{DN: raw.DN, Attr: attr, Message: "range completion response missing the requested chunk"}
			}

			chunkTo := "*"
			if chunkAttr, _, parsedTo, ok := parseRangedName(chunkName); ok {
				attr = chunkAttr
				chunkTo = parsedTo
			}

			chunk := reverseStrings(next.Attrs[chunkName])
			chunkBytes := reverseByteSlices(next.ByteAttrs[chunkName])

			if err := verifyOverlap(accum, accumBytes, chunk, chunkBytes); err != nil {
				return RawEntry{}, err
			}

			tailStart := rangeOverlap
			if tailStart > len(chunk) {
				tailStart = len(chunk)
			}
			accum = append(accum, chunk[tailStart:]...)
			if len(chunkBytes) >= tailStart {
				accumBytes = append(accumBytes, chunkBytes[tailStart:]...)
			}
			to = chunkTo
		}

		out.Attrs[attr] = accum
		if len(accumBytes) > 0 {
			out.ByteAttrs[attr] = accumBytes
		}
	}

	return out, nil
}

// normalizeEntry implements §4.3's per-entry contract: zero-attribute
// rejection, controls/dn stripping, cardinality normalization via the
// schema map, decoder application, and the selected-attribute invariant.
func normalizeEntry(raw RawEntry, schema SchemaMap, selected map[string]bool, selectAll bool) (*Entry, error) {
	if len(raw.Attrs) == 0 {
		return nil, &EntryError{DN: raw.DN, Message: "entry returned with zero attributes (insufficient permissions or unexpected empty entry)"}
	}

	out := &Entry{DN: raw.DN, Attributes: make(map[string]any, len(raw.Attrs))}
	sawDN := false

	for name, values := range raw.Attrs {
		if name == "controls" || name == "dn" {
			continue
		}
		if name == "distinguishedName" {
			sawDN = true
		}
		if !selectAll && name != "distinguishedName" && !selected[name] {
			return nil, &EntryError{DN: raw.DN, Attr: name, Message: "entry contained an attribute the caller did not select"}
		}

		attrSchema, ok := schema[name]
		if !ok {
			return nil, &EntryError{DN: raw.DN, Attr: name, Message: "missing cardinality info"}
		}
		rawValues := raw.ByteAttrs[name]
		decoded := make([]any, len(values))
		for i, v := range values {
			var rb []byte
			if i < len(rawValues) {
				rb = rawValues[i]
			}
			if attrSchema.Decoder == nil {
				decoded[i] = v
				continue
			}
			dv, err := attrSchema.Decoder(v, rb)
			if err != nil {
				return nil, err
			}
			decoded[i] = dv
		}

		if attrSchema.SingleValued {
			if len(decoded) > 1 {
				return nil, &EntryError{DN: raw.DN, Attr: name, Message: "single-valued attribute returned as a list"}
			}
			if len(decoded) == 1 {
				out.Attributes[name] = decoded[0]
			} else {
				out.Attributes[name] = nil
			}
		} else {
			out.Attributes[name] = decoded
		}
	}

	if sawDN && !selectAll && !selected["distinguishedName"] {
		delete(out.Attributes, "distinguishedName")
	}

	return out, nil
}
