package adhandler

import "context"

/*
transitive.go rewrites virtual transitive-membership attributes into a
real-attribute OneOf filter by computing nested-group closure: repeatedly
re-searching with the previous round's discovered group DNs folded into
an equality filter until a round turns up nothing new, built on top of
this package's own Expr/Compile/Conn rather than raw filter strings.
*/

// transitiveAttrMap resolves each virtual pseudo-attribute to the real
// attribute a rewritten node should query, and to the attribute the
// closure search filters groups on. The two virtual attributes are
// symmetric: _transitive_memberOf walks the "member" edge to find
// ancestor groups and emits "memberOf"; _transitive_member walks the
// "memberOf" edge to find descendant groups and emits "member".
var transitiveAttrMap = map[string]struct{ RealAttr, FilterAttr string }{
	virtualMemberOf: {RealAttr: "memberOf", FilterAttr: "member"},
	virtualMember:   {RealAttr: "member", FilterAttr: "memberOf"},
}

const groupClosurePageSize = 500

// RewriteTransitive replaces every Equals/OneOf node of e whose attribute
// is one of the two virtual pseudo-names with a flat OneOf over the real
// attribute, its value list the transitive closure of group membership
// computed by iterated searches over conn. e is compiled first so that
// any shape/validation error in the original expression surfaces before
// any search is issued.
func RewriteTransitive(ctx context.Context, e Expr, conn Conn, baseDN string) (Expr, error) {
	if _, err := Compile(e, nil); err != nil {
		return nil, err
	}
	return rewriteNode(ctx, e, conn, baseDN)
}

func rewriteNode(ctx context.Context, node Expr, conn Conn, baseDN string) (Expr, error) {
	switch v := node.(type) {
	case AndExpr:
		children, err := rewriteChildren(ctx, v.X, conn, baseDN)
		if err != nil {
			return nil, err
		}
		return AndExpr{X: children}, nil

	case OrExpr:
		children, err := rewriteChildren(ctx, v.X, conn, baseDN)
		if err != nil {
			return nil, err
		}
		return OrExpr{X: children}, nil

	case NotExpr:
		child, err := rewriteNode(ctx, v.X, conn, baseDN)
		if err != nil {
			return nil, err
		}
		return NotExpr{X: child}, nil

	case EqualsExpr:
		if m, ok := transitiveAttrMap[v.Attr]; ok {
			return closureOneOf(ctx, conn, baseDN, m, []string{v.Value})
		}
		return v, nil

	case OneOfExpr:
		if m, ok := transitiveAttrMap[v.Attr]; ok {
			return closureOneOf(ctx, conn, baseDN, m, v.Values)
		}
		return v, nil

	default:
		return node, nil
	}
}

func rewriteChildren(ctx context.Context, x []Expr, conn Conn, baseDN string) ([]Expr, error) {
	out := make([]Expr, len(x))
	for i, c := range x {
		r, err := rewriteNode(ctx, c, conn, baseDN)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func closureOneOf(ctx context.Context, conn Conn, baseDN string, m struct{ RealAttr, FilterAttr string }, seeds []string) (Expr, error) {
	closure, err := groupClosure(ctx, conn, baseDN, m.FilterAttr, seeds)
	if err != nil {
		return nil, err
	}
	return OneOfExpr{Attr: m.RealAttr, Values: closure}, nil
}

// groupClosure computes the transitive closure of group DNs reachable
// from seeds: at each round, every group whose filterAttr names a DN in
// the current frontier joins the closure and seeds the next round's
// frontier. Terminates because the closure only grows and the universe
// of group DNs is finite; a round that finds nothing new ends the walk.
// The seeds themselves are included in the result, so an object that IS
// one of them matches the rewritten filter too.
func groupClosure(ctx context.Context, conn Conn, baseDN, filterAttr string, seeds []string) ([]string, error) {
	closure := make(map[string]bool, len(seeds))
	frontier := append([]string(nil), seeds...)
	for _, s := range seeds {
		closure[s] = true
	}

	for len(frontier) > 0 {
		filter, err := Compile(And(
			Equals("objectClass", "group"),
			Equals("objectCategory", "group"),
			OneOf(filterAttr, frontier),
		), nil)
		if err != nil {
			return nil, err
		}

		groupDNs, err := searchDNs(ctx, conn, baseDN, filter)
		if err != nil {
			return nil, err
		}

		var next []string
		for _, dn := range groupDNs {
			if !closure[dn] {
				closure[dn] = true
				next = append(next, dn)
			}
		}
		frontier = next
	}

	out := make([]string, 0, len(closure))
	for dn := range closure {
		out = append(out, dn)
	}
	return out, nil
}

// searchDNs drains every page of a subtree search for filter and returns
// each matching entry's DN.
func searchDNs(ctx context.Context, conn Conn, baseDN, filter string) ([]string, error) {
	var dns []string
	var cookie []byte
	for {
		page, err := conn.SearchPage(ctx, SearchRequest{
			BaseDN:     baseDN,
			Scope:      ScopeSubtree,
			Filter:     filter,
			Attributes: []string{"distinguishedName"},
			PageSize:   groupClosurePageSize,
			Cookie:     cookie,
		})
		if err != nil {
			return nil, err
		}
		for _, e := range page.Entries {
			dns = append(dns, e.DN)
		}
		if len(page.NextCookie) == 0 {
			break
		}
		cookie = page.NextCookie
	}
	return dns, nil
}
