package common

import (
	"sync"

	"github.com/bobmcallan/advisor/internal/models"
)

// Notifier fans slice change events out to subscribers. Delivery is
// synchronous, in subscription order. Publish must not be called while
// holding a lock a subscriber might need.
type Notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]func(models.ChangeEvent)
	keys []int
}

// Subscribe registers fn and returns a func that removes it.
func (n *Notifier) Subscribe(fn func(models.ChangeEvent)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subs == nil {
		n.subs = make(map[int]func(models.ChangeEvent))
	}
	id := n.next
	n.next++
	n.subs[id] = fn
	n.keys = append(n.keys, id)

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
		for i, k := range n.keys {
			if k == id {
				n.keys = append(n.keys[:i], n.keys[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers ev to every current subscriber.
func (n *Notifier) Publish(ev models.ChangeEvent) {
	n.mu.Lock()
	fns := make([]func(models.ChangeEvent), 0, len(n.keys))
	for _, k := range n.keys {
		fns = append(fns, n.subs[k])
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
