package crawler

// frontier is the FIFO of URLs waiting to be crawled. Membership is exact
// string equality over the URLs currently queued; a popped URL may be queued
// again later.
type frontier struct {
	queue  []string
	queued map[string]struct{}
}

func newFrontier() *frontier {
	return &frontier{queued: make(map[string]struct{})}
}

// Push appends rawURL unless an identical string is already waiting.
func (f *frontier) Push(rawURL string) bool {
	if _, ok := f.queued[rawURL]; ok {
		return false
	}
	f.queued[rawURL] = struct{}{}
	f.queue = append(f.queue, rawURL)
	return true
}

// Pop removes and returns the oldest URL.
func (f *frontier) Pop() (string, bool) {
	if len(f.queue) == 0 {
		return "", false
	}
	next := f.queue[0]
	f.queue[0] = ""
	f.queue = f.queue[1:]
	delete(f.queued, next)
	return next, true
}

func (f *frontier) Len() int {
	return len(f.queue)
}

// hostSet records visited hosts in first-seen order.
type hostSet struct {
	order []string
	seen  map[string]struct{}
}

func newHostSet() *hostSet {
	return &hostSet{seen: make(map[string]struct{})}
}

func (h *hostSet) Add(host string) bool {
	if _, ok := h.seen[host]; ok {
		return false
	}
	h.seen[host] = struct{}{}
	h.order = append(h.order, host)
	return true
}

func (h *hostSet) Len() int {
	return len(h.order)
}

func (h *hostSet) List() []string {
	return append([]string(nil), h.order...)
}
