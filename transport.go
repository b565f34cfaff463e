package adhandler

import "context"

/*
transport.go defines the external LDAP transport collaborator of §6. The
core never talks to a socket directly; every transport operation the
driver, the schema bootstrap and the transitive rewriter need is
expressed through this interface, consumed rather than implemented by the
core (§1: "the LDAP transport itself... excluded" from the core's scope).
*/

// SearchRequest is one page request issued against a Conn.
type SearchRequest struct {
	BaseDN     string
	Scope      Scope
	Filter     string
	Attributes []string
	PageSize   uint32
	Cookie     []byte // nil requests the first page.
}

// RawEntry is one entry as the transport delivers it, before schema
// normalization or decoding.
type RawEntry struct {
	DN        string
	Attrs     map[string][]string
	ByteAttrs map[string][][]byte
}

// SearchPage is the result of one paged-search round trip.
type SearchPage struct {
	Entries    []RawEntry
	NextCookie []byte // empty when the server has no more pages.
}

// Conn is the per-operation LDAP connection handle the driver, the
// schema bootstrap and the transitive rewriter all search over (§5
// "shared resource policy": one connection per logical top-level search,
// reused sequentially by subsearches).
type Conn interface {
	// SearchPage performs one page of a paged search.
	SearchPage(ctx context.Context, req SearchRequest) (*SearchPage, error)

	// IsValidDN reports whether dn is well-formed. It returns false only
	// for that specific condition; any other failure is returned as err
	// (§6: "an invalid-DN exception type must be distinguishable from
	// other errors").
	IsValidDN(dn string) (bool, error)

	// Close releases the connection. Safe to call multiple times.
	Close() error
}

// ConnFactory dials and binds a new Conn (§4.6: "a connection factory
// returns {search, end}").
type ConnFactory interface {
	Dial(ctx context.Context, url, user, password string) (Conn, error)
}
