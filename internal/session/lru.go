package session

import (
	"container/list"
	"sync"
)

// lru bounds the count of resident sessions, adapted from the teacher's
// internal/context/memory/lru_manager.go (same eviction policy, stripped
// of the session-type-specific memory-size accounting that doesn't apply
// to this generic record).
type lru struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	index    map[string]*list.Element
	onEvict  func(id string)

	hits, misses, evictions int64
}

func newLRU(capacity int, onEvict func(id string)) *lru {
	return &lru{
		capacity: capacity,
		order:    list.New(),
		index:    make(map[string]*list.Element),
		onEvict:  onEvict,
	}
}

// touch marks id as most-recently-used, evicting the least-recently-used
// entry if the new insertion would exceed capacity.
func (l *lru) touch(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if el, ok := l.index[id]; ok {
		l.order.MoveToFront(el)
		l.hits++
		return
	}
	l.misses++
	el := l.order.PushFront(id)
	l.index[id] = el

	for l.order.Len() > l.capacity {
		oldest := l.order.Back()
		if oldest == nil {
			break
		}
		evictedID := l.order.Remove(oldest).(string)
		delete(l.index, evictedID)
		l.evictions++
		if l.onEvict != nil {
			l.onEvict(evictedID)
		}
	}
}

func (l *lru) remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if el, ok := l.index[id]; ok {
		l.order.Remove(el)
		delete(l.index, id)
	}
}

// Stats mirrors the teacher's LRUStats shape.
type Stats struct {
	HitRate   float64
	Evictions int64
	Resident  int
}

func (l *lru) stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := l.hits + l.misses
	var rate float64
	if total > 0 {
		rate = float64(l.hits) / float64(total)
	}
	return Stats{HitRate: rate, Evictions: l.evictions, Resident: l.order.Len()}
}
