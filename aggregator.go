package deadcode

// Compile-time interface verification.
var _ ViewModel = (*Aggregator)(nil)

// Aggregator buckets the documents of a Workspace by diagnostic category and
// serves them as a tree. It is not safe for concurrent use; callers drive it
// from a single event loop.
type Aggregator struct {
	workspace Workspace
	buckets   map[Category]*bucket
	listeners map[int]func()
	nextID    int
}

// NewAggregator returns an Aggregator over ws with empty buckets.
func NewAggregator(ws Workspace) *Aggregator {
	a := &Aggregator{
		workspace: ws,
		buckets:   make(map[Category]*bucket, len(Categories)),
		listeners: make(map[int]func()),
	}
	for _, c := range Categories {
		a.buckets[c] = newBucket()
	}
	return a
}

// Refresh rebuilds every bucket from the workspace's current diagnostics and
// notifies listeners once.
func (a *Aggregator) Refresh() {
	a.reset()
	for _, uri := range a.workspace.TextDocuments() {
		for _, d := range a.workspace.Diagnostics(uri) {
			for _, c := range Categories {
				if c.Matches(d) {
					a.buckets[c].add(uri)
				}
			}
		}
	}
	a.fire()
}

// ClearList empties every bucket without rescanning and notifies listeners.
// The buckets stay empty until the next Refresh.
func (a *Aggregator) ClearList() {
	a.reset()
	a.fire()
}

// RootNodes returns the Dead Code, Errors and Warnings headers followed by
// the Clear List action.
func (a *Aggregator) RootNodes() []Node {
	nodes := make([]Node, 0, len(Categories)+1)
	for _, c := range Categories {
		nodes = append(nodes, HeaderNode(c))
	}
	return append(nodes, ClearNode())
}

// Children returns the documents in parent's bucket, in the order they were
// encountered during the last Refresh.
func (a *Aggregator) Children(parent Node) []Node {
	if parent.Kind != NodeHeader {
		return []Node{}
	}
	b, ok := a.buckets[parent.Category]
	if !ok {
		return []Node{}
	}
	nodes := make([]Node, 0, len(b.uris))
	for _, uri := range b.uris {
		nodes = append(nodes, LeafNode(parent.Category, uri))
	}
	return nodes
}

// Counts returns the number of documents in each bucket.
func (a *Aggregator) Counts() map[Category]int {
	counts := make(map[Category]int, len(a.buckets))
	for c, b := range a.buckets {
		counts[c] = len(b.uris)
	}
	return counts
}

// OnDidChangeTreeData registers fn to run after every Refresh and ClearList.
func (a *Aggregator) OnDidChangeTreeData(fn func()) Disposable {
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	return func() { delete(a.listeners, id) }
}

func (a *Aggregator) reset() {
	for _, b := range a.buckets {
		b.clear()
	}
}

func (a *Aggregator) fire() {
	// Listeners run in registration order.
	for id := 0; id < a.nextID; id++ {
		if fn, ok := a.listeners[id]; ok {
			fn()
		}
	}
}

// bucket is an insertion-ordered set of URIs.
type bucket struct {
	uris []URI
	seen map[URI]struct{}
}

func newBucket() *bucket {
	return &bucket{seen: make(map[URI]struct{})}
}

func (b *bucket) add(uri URI) {
	if _, ok := b.seen[uri]; ok {
		return
	}
	b.seen[uri] = struct{}{}
	b.uris = append(b.uris, uri)
}

func (b *bucket) clear() {
	b.uris = nil
	clear(b.seen)
}
