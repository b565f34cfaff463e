package adhandler

import (
	"context"
	"testing"
)

func testSchema() SchemaMap {
	return SchemaMap{
		"cn":                AttrSchema{SingleValued: true},
		"member":            AttrSchema{SingleValued: false},
		"distinguishedName": AttrSchema{SingleValued: true},
		"isDisabled":        AttrSchema{SingleValued: true, IsBoolean: true, Decoder: DecodeBoolean},
	}
}

func TestNormalizeEntry_Cardinality(t *testing.T) {
	raw := RawEntry{
		DN: "CN=a,DC=x",
		Attrs: map[string][]string{
			"cn":                {"alice"},
			"member":            {"CN=b,DC=x", "CN=c,DC=x"},
			"distinguishedName": {"CN=a,DC=x"},
		},
	}
	e, err := normalizeEntry(raw, testSchema(), map[string]bool{"cn": true, "member": true}, false)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if e.Attributes["cn"] != "alice" {
		t.Fatalf("expected scalar cn, got %#v", e.Attributes["cn"])
	}
	members, ok := e.Attributes["member"].([]any)
	if !ok || len(members) != 2 {
		t.Fatalf("expected 2-element list for member, got %#v", e.Attributes["member"])
	}
	if _, present := e.Attributes["distinguishedName"]; present {
		t.Fatal("distinguishedName should be stripped when not selected")
	}
}

func TestNormalizeEntry_ZeroAttributesFails(t *testing.T) {
	_, err := normalizeEntry(RawEntry{DN: "CN=a,DC=x"}, testSchema(), nil, true)
	if err == nil {
		t.Fatal("expected an error for a zero-attribute entry")
	}
}

func TestNormalizeEntry_UnselectedAttributeRejected(t *testing.T) {
	raw := RawEntry{DN: "CN=a,DC=x", Attrs: map[string][]string{"cn": {"alice"}, "mail": {"a@b"}}}
	_, err := normalizeEntry(raw, testSchema(), map[string]bool{"cn": true}, false)
	if err == nil {
		t.Fatal("expected an error for an attribute the caller did not select")
	}
}

func TestNormalizeEntry_MissingSchemaEntryFails(t *testing.T) {
	raw := RawEntry{DN: "CN=a,DC=x", Attrs: map[string][]string{"cn": {"alice"}}}
	partial := SchemaMap{"distinguishedName": AttrSchema{SingleValued: true}}
	_, err := normalizeEntry(raw, partial, map[string]bool{"cn": true}, false)
	if err == nil {
		t.Fatal("expected an error for an attribute with no schema-map entry")
	}
	ee, ok := err.(*EntryError)
	if !ok {
		t.Fatalf("expected *EntryError, got %T", err)
	}
	if ee.Attr != "cn" || ee.Message != "missing cardinality info" {
		t.Fatalf("unexpected EntryError: %#v", ee)
	}
}

func TestNormalizeEntry_ControlsAndDNIgnored(t *testing.T) {
	raw := RawEntry{DN: "CN=a,DC=x", Attrs: map[string][]string{
		"cn":       {"alice"},
		"controls": {"whatever"},
		"dn":       {"CN=a,DC=x"},
	}}
	e, err := normalizeEntry(raw, testSchema(), map[string]bool{"cn": true}, false)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if _, ok := e.Attributes["controls"]; ok {
		t.Fatal("controls pseudo-attribute should be ignored")
	}
	if _, ok := e.Attributes["dn"]; ok {
		t.Fatal("dn pseudo-attribute should be ignored")
	}
}

func TestNormalizeEntry_SingleValuedAsListFails(t *testing.T) {
	raw := RawEntry{DN: "CN=a,DC=x", Attrs: map[string][]string{"cn": {"alice", "alice2"}}}
	_, err := normalizeEntry(raw, testSchema(), map[string]bool{"cn": true}, false)
	if err == nil {
		t.Fatal("expected an error when a single-valued attribute arrives as a list")
	}
}

func TestNormalizeEntry_DecoderApplied(t *testing.T) {
	raw := RawEntry{DN: "CN=a,DC=x", Attrs: map[string][]string{"isDisabled": {"TRUE"}}}
	e, err := normalizeEntry(raw, testSchema(), map[string]bool{"isDisabled": true}, false)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if e.Attributes["isDisabled"] != true {
		t.Fatalf("expected decoded boolean true, got %#v", e.Attributes["isDisabled"])
	}
}

func TestParseRangedName(t *testing.T) {
	attr, from, to, ok := parseRangedName("member;range=0-1499")
	if !ok || attr != "member" || from != 0 || to != "1499" {
		t.Fatalf("got %q %d %q %v", attr, from, to, ok)
	}
	if _, _, _, ok := parseRangedName("member"); ok {
		t.Fatal("plain attribute name should not parse as ranged")
	}
}

func TestCompleteRanges_ReassemblesAndReverses(t *testing.T) {
	conn := newFakeConn(nil)

	simple := RawEntry{
		DN: "CN=a,DC=x",
		Attrs: map[string][]string{
			"distinguishedName": {"CN=a,DC=x"},
			"member;range=0-9":  {"j", "i", "h", "g", "f", "e", "d", "c", "b", "a"},
		},
	}
	conn.on("CN=a,DC=x", []fakeEntry{
		{
			dn: "CN=a,DC=x",
			attrs: map[string][]string{
				"distinguishedName": {"CN=a,DC=x"},
				"member":            {"j", "i", "h", "g", "f", "e", "d", "c"},
			},
		},
	})

	out, err := completeRanges(context.Background(), conn, simple)
	if err != nil {
		t.Fatalf("completeRanges: %v", err)
	}
	got := out.Attrs["member"]
	want := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}
