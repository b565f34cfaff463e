package adhandler

import (
	"context"
	"sync"
)

/*
driver.go implements a streamed, paged search backed by a bounded-queue
producer/consumer: a goroutine pulls pages from the connection and feeds
a buffered channel that Cursor.Next drains lazily, with a backpressure
gate pausing the producer once the queue backs up.
*/

const (
	queueHighWatermark = 2000
	queueLowWatermark  = 200
	driverPageSize     = 1000
)

// SearchQuery is one request to the driver (§3 "Search query").
type SearchQuery struct {
	Select                     []string // nil or ["*"] requests every attribute.
	From                       string
	Where                      Expr
	Scope                      Scope
	ClientSideTransitiveSearch *bool
	WaitForInitialization      *bool
	Connection                 Conn
}

// Entry is one normalized search result (§3 "Search entry").
type Entry struct {
	DN         string
	Attributes map[string]any
}

type queueItem struct {
	entry *Entry
	err   error
}

// backpressureGate implements §5's 2000/200 hysteresis band. Since this
// module's Conn.SearchPage is one synchronous round trip per page
// rather than an async per-entry callback, the gate sits between the
// producer's page-fetch iterations (the Backpressure Gate of the
// glossary) instead of between individual transport callbacks; the
// observable effect — a slow consumer pausing the server-side page
// stream — is the same.
type backpressureGate struct {
	mu     sync.Mutex
	cond   *sync.Cond
	depth  int
	paused bool
}

func newBackpressureGate() *backpressureGate {
	g := &backpressureGate{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

func (g *backpressureGate) push() {
	g.mu.Lock()
	g.depth++
	g.mu.Unlock()
}

func (g *backpressureGate) pop() {
	g.mu.Lock()
	g.depth--
	g.cond.Broadcast()
	g.mu.Unlock()
}

func (g *backpressureGate) wake() {
	g.mu.Lock()
	g.cond.Broadcast()
	g.mu.Unlock()
}

// await blocks the producer once depth reaches the high watermark (the
// queue channel's capacity, i.e. a full queue), and holds it blocked —
// the hysteresis band — until depth falls back below the lower
// watermark (§5).
func (g *backpressureGate) await(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.paused && g.depth >= queueHighWatermark {
		g.paused = true
	}
	for g.paused {
		select {
		case <-ctx.Done():
			g.paused = false
			return
		default:
		}
		if g.depth < queueLowWatermark {
			g.paused = false
			return
		}
		g.cond.Wait()
	}
}

// Cursor is the driver's lazy pull interface (§4.3: "yields one
// normalized record per accepted entry... does NOT buffer the full
// result set").
type Cursor struct {
	queue    chan queueItem
	gate     *backpressureGate
	conn     Conn
	ownsConn bool
	cancel   context.CancelFunc

	cur  *Entry
	err  error
	done bool
}

func newCursor(ctx context.Context, conn Conn, ownsConn bool, req SearchRequest, schema SchemaMap, selectAll bool, selected map[string]bool) *Cursor {
	ctx, cancel := context.WithCancel(ctx)
	c := &Cursor{
		queue:    make(chan queueItem, queueHighWatermark),
		gate:     newBackpressureGate(),
		conn:     conn,
		ownsConn: ownsConn,
		cancel:   cancel,
	}
	go c.produce(ctx, req, schema, selectAll, selected)
	return c
}

func (c *Cursor) produce(ctx context.Context, req SearchRequest, schema SchemaMap, selectAll bool, selected map[string]bool) {
	defer func() {
		// §9: "the driver must not bind or unbind" a caller-supplied
		// connection; only a connection the driver itself dialed is
		// torn down here, before the queue is closed, so a consumer that
		// sees end of stream also sees the connection released.
		if c.ownsConn {
			c.conn.Close()
		}
		close(c.queue)
	}()

	cookie := req.Cookie
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		c.gate.await(ctx)
		if ctx.Err() != nil {
			return
		}

		page, err := c.conn.SearchPage(ctx, SearchRequest{
			BaseDN:     req.BaseDN,
			Scope:      req.Scope,
			Filter:     req.Filter,
			Attributes: req.Attributes,
			PageSize:   req.PageSize,
			Cookie:     cookie,
		})
		if err != nil {
			c.emit(ctx, queueItem{err: err})
			return
		}

		for _, raw := range page.Entries {
			complete, err := completeRanges(ctx, c.conn, raw)
			if err != nil {
				c.emit(ctx, queueItem{err: err})
				return
			}
			entry, err := normalizeEntry(complete, schema, selected, selectAll)
			if err != nil {
				c.emit(ctx, queueItem{err: err})
				return
			}
			if !c.emit(ctx, queueItem{entry: entry}) {
				return
			}
		}

		if len(page.NextCookie) == 0 {
			return
		}
		cookie = page.NextCookie
	}
}

// emit pushes item onto the queue, reporting whether it was delivered
// (false means the consumer abandoned the cursor).
func (c *Cursor) emit(ctx context.Context, item queueItem) bool {
	c.gate.push()
	select {
	case c.queue <- item:
		return true
	case <-ctx.Done():
		return false
	}
}

// Next advances the cursor to the next entry. It returns false at end
// of stream or on error; callers must inspect Err() to distinguish the
// two.
func (c *Cursor) Next(ctx context.Context) bool {
	if c.done {
		return false
	}
	select {
	case item, ok := <-c.queue:
		if !ok {
			c.done = true
			return false
		}
		c.gate.pop()
		if item.err != nil {
			c.err = item.err
			c.done = true
			return false
		}
		c.cur = item.entry
		return true
	case <-ctx.Done():
		c.err = ctx.Err()
		c.done = true
		return false
	}
}

// Entry returns the record Next last advanced to.
func (c *Cursor) Entry() *Entry { return c.cur }

// Err returns the error that ended the stream, if any.
func (c *Cursor) Err() error { return c.err }

// Close abandons the cursor. Safe to call more than once and without
// having drained it (§4.3: "per-page pause that is never resumed...
// is handled by connection teardown in the finally path").
func (c *Cursor) Close() error {
	if c.done {
		return nil
	}
	c.cancel()
	c.gate.wake()
	for range c.queue {
	}
	c.done = true
	return nil
}
