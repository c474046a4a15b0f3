package orders

import (
	"time"

	"github.com/olympus-platform/client-go/resource"
)

// Active returns the orders still needing attention (pending, confirmed,
// preparing, ready). Empty outside the Ready state.
func (c *Coordinator) Active() []Order { return c.active.Get() }

// Completed returns the completed orders.
func (c *Coordinator) Completed() []Order { return c.completed.Get() }

// ByPriority returns a total partition of the list keyed by every declared
// priority, including empty buckets.
func (c *Coordinator) ByPriority() map[Priority][]Order { return c.byPriority.Get() }

// Today returns the orders created within the current local day.
func (c *Coordinator) Today() []Order { return c.today.Get() }

// Revenue returns the sum of totals over completed orders only.
func (c *Coordinator) Revenue() float64 { return c.revenue.Get() }

func filterOrders(s resource.State[[]Order], keep func(Order) bool) []Order {
	list, ok := s.Value()
	if !ok {
		return []Order{}
	}
	out := []Order{}
	for _, o := range list {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}

func partitionByPriority(s resource.State[[]Order]) map[Priority][]Order {
	buckets := make(map[Priority][]Order, len(Priorities()))
	for _, p := range Priorities() {
		buckets[p] = []Order{}
	}
	list, ok := s.Value()
	if !ok {
		return buckets
	}
	for _, o := range list {
		buckets[o.Priority] = append(buckets[o.Priority], o)
	}
	return buckets
}

func ordersOnDay(s resource.State[[]Order], now time.Time) []Order {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	return filterOrders(s, func(o Order) bool {
		created := o.CreatedAt.In(now.Location())
		return !created.Before(dayStart) && created.Before(dayEnd)
	})
}

func completedRevenue(s resource.State[[]Order]) float64 {
	total := 0.0
	list, ok := s.Value()
	if !ok {
		return total
	}
	for _, o := range list {
		if o.Status == StatusCompleted {
			total += o.Total
		}
	}
	return total
}
