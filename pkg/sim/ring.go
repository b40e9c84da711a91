package sim

import (
	"github.com/Workiva/go-datastructures/queue"
)

// ring is an on-device record buffer that evicts its oldest entry when
// full.
type ring struct {
	q        *queue.Queue
	capacity int
	evicted  int
}

func newRing(capacity int) *ring {
	return &ring{q: queue.New(int64(capacity)), capacity: capacity}
}

func (r *ring) len() int {
	return int(r.q.Len())
}

// push appends rec, evicting the oldest record if the ring is full.
func (r *ring) push(rec []byte) {
	if r.capacity <= 0 {
		r.evicted++
		return
	}
	for r.len() >= r.capacity {
		r.drop(1)
		r.evicted++
	}
	_ = r.q.Put(rec)
}

// pop removes and returns up to n of the oldest records.
func (r *ring) pop(n int) [][]byte {
	n = min(n, r.len())
	if n <= 0 {
		return nil
	}
	items, err := r.q.Get(int64(n))
	if err != nil {
		return nil
	}
	out := make([][]byte, 0, len(items))
	for _, it := range items {
		if rec, ok := it.([]byte); ok {
			out = append(out, rec)
		}
	}
	return out
}

// drop discards up to n of the oldest records.
func (r *ring) drop(n int) {
	r.pop(n)
}

// resize changes the capacity, discarding the oldest records that no
// longer fit.
func (r *ring) resize(capacity int) {
	r.capacity = capacity
	if over := r.len() - capacity; over > 0 {
		r.drop(over)
	}
}

func (r *ring) clear() {
	r.q.Dispose()
	r.q = queue.New(int64(r.capacity))
}
