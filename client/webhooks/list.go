package webhooks

import (
	"context"
	"errors"
	"sync"

	"github.com/webhookx-io/hookdash/client/cache"
	"go.uber.org/zap"
)

var ErrEndpointRequired = errors.New("endpoint id is required")

// State is a point-in-time view of a List
type State struct {
	Webhooks    []Webhook
	HasNextPage bool
	Loading     bool
	Err         error
}

type Options struct {
	// Cache is the session's query cache, nil disables caching
	Cache *cache.QueryCache[Connection]
	Log   *zap.SugaredLogger
}

// List keeps one endpoint's webhooks in sync: the first page, pages added by
// LoadMore, and webhooks pushed by the creation subscription. Node ids are unique.
type List struct {
	transport  Transport
	endpointID string
	cache      *cache.QueryCache[Connection]
	cacheKey   string
	log        *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc
	stream Stream
	wg     sync.WaitGroup

	mu       sync.Mutex
	data     *Connection
	loading  bool
	fetching bool
	err      error
	// generation discards responses of fetches started before a Refetch or Close
	generation uint64
	closed     bool
	updates    chan struct{}

	closeOnce sync.Once
}

// Watch subscribes to creations and starts the first page fetch. The returned
// List owns the subscription until Close is called or ctx is cancelled.
func Watch(ctx context.Context, transport Transport, endpointID string, opts Options) (*List, error) {
	if endpointID == "" {
		return nil, ErrEndpointRequired
	}
	if opts.Log == nil {
		opts.Log = zap.S()
	}

	ctx, cancel := context.WithCancel(ctx)
	l := &List{
		transport:  transport,
		endpointID: endpointID,
		cache:      opts.Cache,
		cacheKey:   cache.Key("getWebhooks", map[string]interface{}{"endpointId": endpointID}),
		log:        opts.Log.Named("webhooks"),
		ctx:        ctx,
		cancel:     cancel,
		loading:    true,
		fetching:   true,
		updates:    make(chan struct{}, 1),
	}

	if l.cache != nil {
		if cached, ok := l.cache.Get(ctx, l.cacheKey); ok {
			l.data = cached.clone()
			l.updates <- struct{}{}
		}
	}

	stream, err := transport.SubscribeCreated(ctx, endpointID)
	if err != nil {
		cancel()
		return nil, err
	}
	l.stream = stream

	l.wg.Add(2)
	go l.consume()
	go func() {
		defer l.wg.Done()
		l.fetch(ctx, 0, nil, false)
	}()
	go func() {
		<-ctx.Done()
		l.Close()
	}()

	return l, nil
}

// Snapshot returns the current state. Webhooks is empty and HasNextPage false until data arrives.
func (l *List) Snapshot() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	state := State{
		Webhooks: []Webhook{},
		Loading:  l.loading,
		Err:      l.err,
	}
	if l.data != nil {
		state.Webhooks = append(state.Webhooks, l.data.Nodes...)
		state.HasNextPage = l.data.PageInfo.HasNextPage
	}
	return state
}

// Updates receives a value after state changes. Notifications are coalesced
// and the channel is closed by Close.
func (l *List) Updates() <-chan struct{} {
	return l.updates
}

// LoadMore fetches the page after the current end cursor and appends it. It does
// nothing while another fetch is in flight or when there is no next page.
// Failures are logged and leave the list unchanged.
func (l *List) LoadMore(ctx context.Context) {
	l.mu.Lock()
	if l.closed || l.fetching || l.data == nil || !l.data.PageInfo.HasNextPage {
		l.mu.Unlock()
		return
	}
	l.fetching = true
	l.loading = true
	gen := l.generation
	after := append(Cursor(nil), l.data.PageInfo.EndCursor...)
	l.notify()
	l.mu.Unlock()

	ctx, cancel := l.join(ctx)
	defer cancel()
	l.fetch(ctx, gen, after, true)
}

// Refetch discards pagination state and loads the first page again. The current
// nodes stay visible until the new page arrives.
func (l *List) Refetch(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return context.Canceled
	}
	l.generation++
	gen := l.generation
	l.fetching = true
	l.loading = true
	l.notify()
	l.mu.Unlock()

	ctx, cancel := l.join(ctx)
	defer cancel()
	return l.fetch(ctx, gen, nil, false)
}

// Error returns the last initial-fetch, refetch or subscription error
func (l *List) Error() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Close releases the subscription. Later responses and events are discarded.
func (l *List) Close() {
	l.closeOnce.Do(func() {
		l.mu.Lock()
		l.closed = true
		l.generation++
		close(l.updates)
		l.mu.Unlock()

		l.cancel()
		l.stream.Close()
		l.wg.Wait()
	})
}

// join returns a context cancelled with either ctx or the list
func (l *List) join(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(l.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// fetch runs one page request. appending pages are merged after the existing
// nodes, otherwise the page replaces the data.
func (l *List) fetch(ctx context.Context, gen uint64, after Cursor, appending bool) error {
	page, err := l.transport.FetchPage(ctx, l.endpointID, after)

	l.mu.Lock()
	if l.closed || gen != l.generation {
		l.mu.Unlock()
		return err
	}
	l.fetching = false
	l.loading = false

	if err != nil {
		if appending {
			l.log.Debugf("failed to load more webhooks of %s: %v", l.endpointID, err)
		} else {
			l.err = err
		}
		l.notify()
		l.mu.Unlock()
		return err
	}

	if page == nil {
		page = &Connection{}
	}
	if appending {
		for _, node := range page.Nodes {
			if !l.data.contains(node.ID) {
				l.data.Nodes = append(l.data.Nodes, node)
			}
		}
		l.data.PageInfo = page.PageInfo
	} else {
		l.data = dedup(page.clone())
		l.err = nil
	}
	snapshot := l.data.clone()
	l.notify()
	l.mu.Unlock()

	l.persist(snapshot)
	return nil
}

// consume applies creation events until the stream ends
func (l *List) consume() {
	defer l.wg.Done()
	for event := range l.stream.Events() {
		l.mu.Lock()
		if l.closed {
			l.mu.Unlock()
			return
		}
		if event.Err != nil {
			l.err = event.Err
			l.notify()
			l.mu.Unlock()
			continue
		}
		// events before the first page are dropped, the page will include them
		if event.Webhook == nil || l.data == nil || l.data.contains(event.Webhook.ID) {
			l.mu.Unlock()
			continue
		}
		l.data.Nodes = append([]Webhook{*event.Webhook}, l.data.Nodes...)
		snapshot := l.data.clone()
		l.notify()
		l.mu.Unlock()

		l.persist(snapshot)
	}
}

// notify must be called with mu held
func (l *List) notify() {
	if l.closed {
		return
	}
	select {
	case l.updates <- struct{}{}:
	default:
	}
}

func (l *List) persist(data *Connection) {
	if l.cache != nil {
		l.cache.Put(l.ctx, l.cacheKey, data)
	}
}

func dedup(c *Connection) *Connection {
	seen := make(map[string]struct{}, len(c.Nodes))
	nodes := c.Nodes[:0]
	for _, node := range c.Nodes {
		if _, ok := seen[node.ID]; ok {
			continue
		}
		seen[node.ID] = struct{}{}
		nodes = append(nodes, node)
	}
	c.Nodes = nodes
	return c
}
