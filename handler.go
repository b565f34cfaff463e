package adhandler

import (
	"context"
	"strconv"
)

/*
handler.go implements the public façade of §4.6: construction, lazy
throttled schema bootstrap, and the three search entry points. Grounded
on the teacher's top-level marshal.go in spirit (one small file tying
together the rest of the package's pieces into the surface callers
actually use) though the teacher has no direct handler/façade analog of
its own to adapt line-for-line.
*/

// Handler is the constructed, long-lived façade (§3 "Lifecycles": "the
// handler is constructed once... and lives for the process").
type Handler struct {
	cfg    Config
	schema *schemaState
}

// NewHandler validates cfg and constructs a Handler. Bootstrap does not
// run here; it runs lazily on first search (§4.4), unless a query opts
// out via WaitForInitialization.
func NewHandler(cfg Config) (*Handler, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Handler{
		cfg:    cfg,
		schema: newSchemaState(cfg.OverrideSingleValued, cfg.Log),
	}, nil
}

// ensureSchema runs the throttled single-flight bootstrap of §4.4
// unless it has already completed.
func (h *Handler) ensureSchema(ctx context.Context, conn Conn) error {
	return h.schema.ensure(ctx, func(ctx context.Context) ([]schemaRow, error) {
		filter, err := Compile(Equals("objectClass", "attributeSchema"), nil)
		if err != nil {
			return nil, err
		}

		var rows []schemaRow
		var cookie []byte
		for {
			page, err := conn.SearchPage(ctx, SearchRequest{
				BaseDN:     h.cfg.SchemaConfigBaseDN,
				Scope:      ScopeSubtree,
				Filter:     filter,
				Attributes: []string{"lDAPDisplayName", "attributeSyntax", "isSingleValued"},
				PageSize:   driverPageSize,
				Cookie:     cookie,
			})
			if err != nil {
				return nil, err
			}
			for _, e := range page.Entries {
				row, err := schemaRowFromEntry(e)
				if err != nil {
					return nil, err
				}
				rows = append(rows, row)
			}
			if len(page.NextCookie) == 0 {
				break
			}
			cookie = page.NextCookie
		}
		return rows, nil
	})
}

func schemaRowFromEntry(e RawEntry) (schemaRow, error) {
	name := firstValue(e.Attrs["lDAPDisplayName"])
	syntax := firstValue(e.Attrs["attributeSyntax"])
	sv := firstValue(e.Attrs["isSingleValued"])
	if name == "" || syntax == "" {
		return schemaRow{}, &SchemaError{Message: "attributeSchema entry missing lDAPDisplayName or attributeSyntax"}
	}
	return schemaRow{
		name:         name,
		syntax:       syntax,
		singleValued: sv == "TRUE" || sv == "true",
	}, nil
}

func firstValue(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

// acquireConn resolves the connection a query runs over: the caller's,
// if supplied, otherwise a freshly dialed one the driver will own and
// tear down (§4.6 "a connection factory returns {search, end}"; §9
// "caller-supplied connection → optional handle").
func (h *Handler) acquireConn(ctx context.Context, q SearchQuery) (conn Conn, ownsConn bool, err error) {
	if q.Connection != nil {
		return q.Connection, false, nil
	}
	conn, err = h.cfg.ConnFactory.Dial(ctx, h.cfg.URL, h.cfg.User, h.cfg.Password)
	if err != nil {
		return nil, false, err
	}
	return conn, true, nil
}

// GetObjects returns a lazy cursor over the query's results.
func (h *Handler) GetObjects(ctx context.Context, q SearchQuery) (cursor *Cursor, err error) {
	conn, ownsConn, err := h.acquireConn(ctx, q)
	if err != nil {
		return nil, err
	}
	closeOnErr := func() {
		if ownsConn {
			conn.Close()
		}
	}

	waitForInit := true
	if q.WaitForInitialization != nil {
		waitForInit = *q.WaitForInitialization
	}
	if waitForInit {
		if err := h.ensureSchema(ctx, conn); err != nil {
			closeOnErr()
			return nil, err
		}
	}

	where := q.Where
	if where == nil {
		where = True()
	}

	transitive := h.cfg.ClientSideTransitiveSearchDefault
	if q.ClientSideTransitiveSearch != nil {
		transitive = *q.ClientSideTransitiveSearch
	}
	if transitive {
		rewritten, err := RewriteTransitive(ctx, where, conn, h.cfg.ClientSideTransitiveSearchBaseDN)
		if err != nil {
			closeOnErr()
			return nil, err
		}
		where = rewritten
	}

	filter, err := Compile(where, h.schema.boolAttrs)
	if err != nil {
		closeOnErr()
		return nil, err
	}

	from := q.From
	if from == "" {
		from = h.cfg.DomainBaseDN
	}
	scope := q.Scope
	if scope == noScope {
		scope = ScopeSubtree
	}

	selectAll, selected := resolveSelect(q.Select)
	req := SearchRequest{
		BaseDN:     from,
		Scope:      scope,
		Filter:     filter,
		Attributes: wireAttributes(selectAll, selected),
		PageSize:   driverPageSize,
	}

	return newCursor(ctx, conn, ownsConn, req, h.schema.schema, selectAll, selected), nil
}

// GetObjectsA materializes the cursor into a slice; the caller accepts
// that bounded memory is lost (§4.6).
func (h *Handler) GetObjectsA(ctx context.Context, q SearchQuery) ([]*Entry, error) {
	cur, err := h.GetObjects(ctx, q)
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	var out []*Entry
	for cur.Next(ctx) {
		out = append(out, cur.Entry())
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetOneObject runs the query and asserts exactly one record (§4.6;
// §9 Open Question iii notes this fails on zero results too, by
// design — a distinct "maybe-one" variant is out of scope).
func (h *Handler) GetOneObject(ctx context.Context, q SearchQuery) (*Entry, error) {
	entries, err := h.GetObjectsA(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(entries) != 1 {
		return nil, &EntryError{Message: "expected exactly one result, got " + strconv.Itoa(len(entries))}
	}
	return entries[0], nil
}
