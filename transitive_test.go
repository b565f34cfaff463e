package adhandler

import (
	"context"
	"strings"
	"testing"
)

type groupDef struct {
	dn      string
	members []string
}

func nestedGroupConn(groups []groupDef) *fakeConn {
	c := newFakeConn(nil)
	c.searchFunc = func(req SearchRequest) (*SearchPage, error) {
		page := &SearchPage{}
		for _, g := range groups {
			for _, m := range g.members {
				if strings.Contains(req.Filter, m) {
					page.Entries = append(page.Entries, RawEntry{
						DN:    g.dn,
						Attrs: map[string][]string{"distinguishedName": {g.dn}},
					})
					break
				}
			}
		}
		return page, nil
	}
	return c
}

func TestRewriteTransitive_MemberOfClosure(t *testing.T) {
	conn := nestedGroupConn([]groupDef{
		{dn: "CN=groupA,DC=x", members: []string{"CN=user1,DC=x"}},
		{dn: "CN=groupB,DC=x", members: []string{"CN=groupA,DC=x"}},
	})

	rewritten, err := RewriteTransitive(context.Background(), Equals(virtualMemberOf, "CN=user1,DC=x"), conn, "DC=x")
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	one, ok := rewritten.(OneOfExpr)
	if !ok {
		t.Fatalf("expected OneOfExpr, got %T", rewritten)
	}
	if one.Attr != "memberOf" {
		t.Fatalf("expected real attribute memberOf, got %q", one.Attr)
	}
	want := map[string]bool{"CN=user1,DC=x": true, "CN=groupA,DC=x": true, "CN=groupB,DC=x": true}
	if len(one.Values) != len(want) {
		t.Fatalf("got %v, want closure of %v", one.Values, want)
	}
	for _, v := range one.Values {
		if !want[v] {
			t.Fatalf("unexpected DN %q in closure", v)
		}
	}
}

func TestRewriteTransitive_MemberSymmetric(t *testing.T) {
	conn := nestedGroupConn(nil)
	rewritten, err := RewriteTransitive(context.Background(), Equals(virtualMember, "CN=user1,DC=x"), conn, "DC=x")
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	one, ok := rewritten.(OneOfExpr)
	if !ok {
		t.Fatalf("expected OneOfExpr, got %T", rewritten)
	}
	if one.Attr != "member" {
		t.Fatalf("_transitive_member should rewrite to real attribute member, got %q", one.Attr)
	}
}

func TestRewriteTransitive_NonVirtualUntouched(t *testing.T) {
	conn := nestedGroupConn(nil)
	e := Equals("cn", "v")
	rewritten, err := RewriteTransitive(context.Background(), e, conn, "DC=x")
	if err != nil {
		t.Fatal(err)
	}
	if rewritten != e {
		t.Fatalf("non-virtual node should pass through unchanged, got %#v", rewritten)
	}
}

func TestRewriteTransitive_RecursesThroughAndOrNot(t *testing.T) {
	conn := nestedGroupConn([]groupDef{
		{dn: "CN=groupA,DC=x", members: []string{"CN=user1,DC=x"}},
	})
	e := And(
		Not(Equals(virtualMemberOf, "CN=user1,DC=x")),
		Or(Has("cn"), Equals(virtualMemberOf, "CN=user1,DC=x")),
	)
	rewritten, err := RewriteTransitive(context.Background(), e, conn, "DC=x")
	if err != nil {
		t.Fatal(err)
	}
	and, ok := rewritten.(AndExpr)
	if !ok || len(and.X) != 2 {
		t.Fatalf("expected a 2-child AndExpr, got %#v", rewritten)
	}
	not, ok := and.X[0].(NotExpr)
	if !ok {
		t.Fatalf("expected first child to remain a NotExpr, got %#v", and.X[0])
	}
	if _, ok := not.X.(OneOfExpr); !ok {
		t.Fatalf("expected the virtual node nested under not to be rewritten, got %#v", not.X)
	}
}

func TestRewriteTransitive_SurfacesShapeErrorsBeforeSearching(t *testing.T) {
	conn := nestedGroupConn(nil)
	conn.searchFunc = func(req SearchRequest) (*SearchPage, error) {
		t.Fatal("rewriter must validate before issuing any search")
		return nil, nil
	}
	_, err := RewriteTransitive(context.Background(), And(), conn, "DC=x")
	if err == nil {
		t.Fatal("expected a compile error for the malformed input expression")
	}
}
