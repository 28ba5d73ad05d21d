package cache

// Ring is a bounded ring buffer: prepends beyond the capacity drop the
// oldest entries, so a dataset's history can never grow without bound.
type Ring struct {
	items []interface{}
	cap   int
}

func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 50
	}
	return &Ring{cap: capacity}
}

// Prepend puts item at the front, evicting beyond capacity.
func (r *Ring) Prepend(item interface{}) {
	r.items = append([]interface{}{item}, r.items...)
	if len(r.items) > r.cap {
		r.items = r.items[:r.cap]
	}
}

// Replace swaps the whole content, truncated to capacity.
func (r *Ring) Replace(items []interface{}) {
	if len(items) > r.cap {
		items = items[:r.cap]
	}
	r.items = append(r.items[:0:0], items...)
}

// Patch applies fn to the first item where match is true; reports whether a
// match was found.
func (r *Ring) Patch(match func(interface{}) bool, fn func(interface{}) interface{}) bool {
	for i, it := range r.items {
		if match(it) {
			r.items[i] = fn(it)
			return true
		}
	}
	return false
}

// Items returns a copy of the current content, newest first.
func (r *Ring) Items() []interface{} {
	return append([]interface{}(nil), r.items...)
}

func (r *Ring) Len() int { return len(r.items) }

func (r *Ring) Cap() int { return r.cap }
