package adhandler

import (
	"context"
	"strings"
)

/*
faketransport_test.go is the in-memory Conn test double described in
SPEC_FULL.md §10.5: the real LDAP transport is a consumed external
collaborator (§6) and is not under test, so every test in this package
drives its own fixture entries through this fake rather than a live
server.
*/

type fakeEntry struct {
	dn        string
	attrs     map[string][]string
	byteAttrs map[string][][]byte
}

// fakeConn is a scripted, in-memory Conn. It ignores the filter and
// base DN and simply returns whatever entries the test registered for
// the search, paginated at pageSize.
type fakeConn struct {
	entries []fakeEntry
	closed  bool

	// byBase lets a test script different responses per BaseDN, used by
	// the schema-bootstrap and range-completion tests where a single
	// fakeConn must answer more than one distinct query shape.
	byBase map[string][]fakeEntry

	// searchFunc, when set, takes over SearchPage entirely: used by tests
	// (e.g. the transitive-membership rewriter) that need a response
	// sensitive to the compiled filter string itself, not just the base DN.
	searchFunc func(req SearchRequest) (*SearchPage, error)
}

func newFakeConn(entries []fakeEntry) *fakeConn {
	return &fakeConn{entries: entries, byBase: make(map[string][]fakeEntry)}
}

func (f *fakeConn) on(baseDN string, entries []fakeEntry) {
	f.byBase[baseDN] = entries
}

func (f *fakeConn) SearchPage(ctx context.Context, req SearchRequest) (*SearchPage, error) {
	if f.searchFunc != nil {
		return f.searchFunc(req)
	}

	pool := f.entries
	if scripted, ok := f.byBase[req.BaseDN]; ok {
		pool = scripted
	}

	start := 0
	if len(req.Cookie) > 0 {
		n := 0
		for _, c := range req.Cookie {
			n = n*10 + int(c-'0')
		}
		start = n
	}

	pageSize := int(req.PageSize)
	if pageSize <= 0 {
		pageSize = len(pool)
	}
	end := start + pageSize
	if end > len(pool) {
		end = len(pool)
	}

	page := &SearchPage{}
	for _, e := range pool[start:end] {
		page.Entries = append(page.Entries, RawEntry{DN: e.dn, Attrs: e.attrs, ByteAttrs: e.byteAttrs})
	}
	if end < len(pool) {
		cookie := make([]byte, 0, 4)
		for _, d := range []byte(itoaFake(end)) {
			cookie = append(cookie, d)
		}
		page.NextCookie = cookie
	}
	return page, nil
}

func itoaFake(n int) string {
	if n == 0 {
		return "0"
	}
	var buf []byte
	for n > 0 {
		buf = append([]byte{byte('0' + n%10)}, buf...)
		n /= 10
	}
	return string(buf)
}

func (f *fakeConn) IsValidDN(dn string) (bool, error) {
	return strings.Contains(dn, "="), nil
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

type fakeConnFactory struct {
	conn *fakeConn
	err  error
}

func (f fakeConnFactory) Dial(ctx context.Context, url, user, password string) (Conn, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.conn, nil
}
