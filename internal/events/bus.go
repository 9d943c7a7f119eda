package events

import (
	"time"

	"github.com/asaskevich/EventBus"
)

// Store tables that emit change notifications.
const (
	TableProducts      = "products"
	TableOrders        = "orders"
	TableConsultations = "consultations"
	TableConfig        = "site_config"
)

// Change actions
const (
	ActionInsert = "insert"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Change is a fire-and-forget row change notification. Consumers re-fetch
// the affected view instead of merging incrementally.
type Change struct {
	Table  string    `json:"table"`
	Action string    `json:"action"`
	ID     string    `json:"id"`
	At     time.Time `json:"at"`
}

// Bus fans row change notifications out to in-process subscribers
// (the admin SSE stream, dashboard counters).
type Bus struct {
	bus EventBus.Bus
}

func NewBus() *Bus {
	return &Bus{bus: EventBus.New()}
}

func topic(table string) string {
	return "store:" + table
}

// PublishChange emits a change notification for one row. Delivery is
// asynchronous; publishing never blocks the write path.
func (b *Bus) PublishChange(table, action, id string) {
	b.bus.Publish(topic(table), Change{
		Table:  table,
		Action: action,
		ID:     id,
		At:     time.Now(),
	})
}

// SubscribeChanges registers fn for changes on one table.
func (b *Bus) SubscribeChanges(table string, fn func(Change)) error {
	return b.bus.SubscribeAsync(topic(table), fn, false)
}

// Unsubscribe removes a previously registered handler.
func (b *Bus) Unsubscribe(table string, fn func(Change)) error {
	return b.bus.Unsubscribe(topic(table), fn)
}
