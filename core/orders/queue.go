// Package orders holds the in-memory pending limit-order queue. The queue
// stores client-visible intent only; nothing in this service triggers or
// submits queued orders.
package orders

import (
	"sync"
	"time"
)

// PendingOrder is created once on successful validation of a limit trade
// and never mutated afterwards; cancellation removes it.
type PendingOrder struct {
	ID           int64     `json:"id"`
	TradeMode    string    `json:"trade_mode"`
	InputType    string    `json:"input_type"`
	Amount       float64   `json:"amount"`
	LimitPrice   float64   `json:"limit_price"`
	TokenAddress string    `json:"token_address"`
	TokenSymbol  string    `json:"token_symbol"`
	CreatedAt    time.Time `json:"created_at"`
}

type Queue struct {
	mu    sync.RWMutex
	items []PendingOrder
}

func NewQueue() *Queue {
	return &Queue{}
}

// Add appends to the end; insertion order is display order.
func (q *Queue) Add(o PendingOrder) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, o)
}

// Cancel removes the first entry with a matching id. Unknown ids are a
// no-op so repeated cancellation from the UI never errors.
func (q *Queue) Cancel(id int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, o := range q.items {
		if o.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

// List returns a snapshot; mutating it does not affect the queue.
func (q *Queue) List() []PendingOrder {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]PendingOrder, len(q.items))
	copy(out, q.items)
	return out
}

func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.items)
}
