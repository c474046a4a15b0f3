package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/olympus-platform/client-go/api"
	"github.com/olympus-platform/client-go/pkg/logger"
	"github.com/olympus-platform/client-go/resource"
)

// Coordinator owns the authoritative order list. Full loads and searches
// replace the list wholesale and record their failures in the container;
// single-item mutations reconcile in place and report failures to the
// caller only, so a failed mutation never blanks a visible list.
type Coordinator struct {
	remote    api.Remote
	log       *logger.Logger
	container *resource.Container[[]Order]
	now       func() time.Time

	active     *resource.View[[]Order, []Order]
	completed  *resource.View[[]Order, []Order]
	byPriority *resource.View[[]Order, map[Priority][]Order]
	today      *resource.View[[]Order, []Order]
	revenue    *resource.View[[]Order, float64]
}

// NewCoordinator creates a coordinator with an idle container.
func NewCoordinator(remote api.Remote, log *logger.Logger) *Coordinator {
	if log == nil {
		log = logger.NewDefault("orders")
	}

	c := &Coordinator{
		remote:    remote,
		log:       log,
		container: resource.NewContainer[[]Order](),
		now:       time.Now,
	}

	c.active = resource.NewView(c.container, func(s resource.State[[]Order]) []Order {
		return filterOrders(s, func(o Order) bool { return o.Status.IsActive() })
	})
	c.completed = resource.NewView(c.container, func(s resource.State[[]Order]) []Order {
		return filterOrders(s, func(o Order) bool { return o.Status == StatusCompleted })
	})
	c.byPriority = resource.NewView(c.container, partitionByPriority)
	c.today = resource.NewView(c.container, func(s resource.State[[]Order]) []Order {
		return ordersOnDay(s, c.now())
	})
	c.revenue = resource.NewView(c.container, completedRevenue)

	return c
}

// Container exposes the underlying container for reads and subscriptions.
func (c *Coordinator) Container() *resource.Container[[]Order] {
	return c.container
}

// Subscribe registers fn for every state transition of the order list.
func (c *Coordinator) Subscribe(fn resource.Subscriber[[]Order]) func() {
	return c.container.Subscribe(fn)
}

// Load fetches the full order list. On failure the container transitions
// to Failed with the error preserved for display.
func (c *Coordinator) Load(ctx context.Context) error {
	return c.replaceAll(ctx, "/orders", nil)
}

// Get fetches a single order. It never touches the container.
func (c *Coordinator) Get(ctx context.Context, id string) (Order, error) {
	body, err := c.remote.Do(ctx, "GET", "/orders/"+id, nil, nil)
	if err != nil {
		return Order{}, err
	}

	var order Order
	if err := json.Unmarshal(body, &order); err != nil {
		return Order{}, fmt.Errorf("unmarshal order: %w", err)
	}
	return order, nil
}

// Create submits a new order. On success the returned order is prepended
// to whatever list the container holds at publish time; the read and
// publish are one atomic step, so a list that changed while the request
// was in flight is still the one extended.
func (c *Coordinator) Create(ctx context.Context, req CreateRequest) (Order, error) {
	body, err := c.remote.Do(ctx, "POST", "/orders", req, nil)
	if err != nil {
		return Order{}, err
	}

	var order Order
	if err := json.Unmarshal(body, &order); err != nil {
		return Order{}, fmt.Errorf("unmarshal created order: %w", err)
	}

	c.container.Mutate(func(s resource.State[[]Order]) (resource.State[[]Order], bool) {
		list, ok := s.Value()
		if !ok {
			return s, false
		}
		next := make([]Order, 0, len(list)+1)
		next = append(next, order)
		next = append(next, list...)
		return resource.Ready(next), true
	})

	c.log.WithField("order_id", order.ID).Debug("order created")
	return order, nil
}

// Update submits changes to one order and replaces the matching element in
// the current list. If no element matches the id, the returned order is
// dropped; the list is never appended to by an update.
func (c *Coordinator) Update(ctx context.Context, id string, req UpdateRequest) (Order, error) {
	body, err := c.remote.Do(ctx, "PUT", "/orders/"+id, req, nil)
	if err != nil {
		return Order{}, err
	}

	var order Order
	if err := json.Unmarshal(body, &order); err != nil {
		return Order{}, fmt.Errorf("unmarshal updated order: %w", err)
	}

	c.reconcileReplace(order)
	return order, nil
}

// UpdateStatus moves one order to the given status.
func (c *Coordinator) UpdateStatus(ctx context.Context, id string, status Status) (Order, error) {
	if !status.Valid() {
		return Order{}, fmt.Errorf("invalid order status %q", status)
	}
	return c.Update(ctx, id, UpdateRequest{Status: &status})
}

// Cancel cancels one order with a reason. The cancel endpoint returns no
// body, so the local element is reconciled to cancelled directly.
func (c *Coordinator) Cancel(ctx context.Context, id, reason string) error {
	payload := map[string]string{"reason": reason}
	if _, err := c.remote.Do(ctx, "POST", "/orders/"+id+"/cancel", payload, nil); err != nil {
		return err
	}

	c.container.Mutate(func(s resource.State[[]Order]) (resource.State[[]Order], bool) {
		list, ok := s.Value()
		if !ok {
			return s, false
		}
		next := make([]Order, len(list))
		copy(next, list)
		for i := range next {
			if next[i].ID == id {
				next[i].Status = StatusCancelled
			}
		}
		return resource.Ready(next), true
	})

	c.log.WithField("order_id", id).Debug("order cancelled")
	return nil
}

// Remove deletes one order and filters it out of the current list.
func (c *Coordinator) Remove(ctx context.Context, id string) error {
	if _, err := c.remote.Do(ctx, "DELETE", "/orders/"+id, nil, nil); err != nil {
		return err
	}

	c.container.Mutate(func(s resource.State[[]Order]) (resource.State[[]Order], bool) {
		list, ok := s.Value()
		if !ok {
			return s, false
		}
		next := make([]Order, 0, len(list))
		for _, o := range list {
			if o.ID != id {
				next = append(next, o)
			}
		}
		return resource.Ready(next), true
	})

	return nil
}

// Search replaces the list with the orders matching query. An empty query
// is a plain Load.
func (c *Coordinator) Search(ctx context.Context, query string) error {
	if strings.TrimSpace(query) == "" {
		return c.Load(ctx)
	}
	q := url.Values{}
	q.Set("q", query)
	return c.replaceAll(ctx, "/orders/search", q)
}

// FilterByStatus replaces the list with the orders in the given statuses.
func (c *Coordinator) FilterByStatus(ctx context.Context, statuses ...Status) error {
	parts := make([]string, 0, len(statuses))
	for _, s := range statuses {
		if !s.Valid() {
			return fmt.Errorf("invalid order status %q", s)
		}
		parts = append(parts, string(s))
	}
	q := url.Values{}
	q.Set("status", strings.Join(parts, ","))
	return c.replaceAll(ctx, "/orders", q)
}

// FilterByDateRange replaces the list with the orders created in
// [start, end).
func (c *Coordinator) FilterByDateRange(ctx context.Context, start, end time.Time) error {
	q := url.Values{}
	q.Set("start_date", start.Format(time.RFC3339))
	q.Set("end_date", end.Format(time.RFC3339))
	return c.replaceAll(ctx, "/orders", q)
}

// replaceAll runs one full-replace load cycle. A completion superseded by
// a later load is dropped, so a stale slow response cannot overwrite a
// later fast one.
func (c *Coordinator) replaceAll(ctx context.Context, path string, query url.Values) error {
	gen := c.container.SetLoading()

	body, err := c.remote.Do(ctx, "GET", path, nil, query)
	if err != nil {
		c.container.CompleteFailed(gen, err)
		return err
	}

	var payload struct {
		Orders []Order `json:"orders"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		err = fmt.Errorf("unmarshal order list: %w", err)
		c.container.CompleteFailed(gen, err)
		return err
	}
	if payload.Orders == nil {
		payload.Orders = []Order{}
	}

	c.container.CompleteReady(gen, payload.Orders)
	c.log.WithField("count", len(payload.Orders)).Debug("order list replaced")
	return nil
}

// reconcileReplace swaps the element matching order.ID in the current
// list. Elements with other ids are carried over untouched.
func (c *Coordinator) reconcileReplace(order Order) {
	c.container.Mutate(func(s resource.State[[]Order]) (resource.State[[]Order], bool) {
		list, ok := s.Value()
		if !ok {
			return s, false
		}
		next := make([]Order, len(list))
		copy(next, list)
		matched := false
		for i := range next {
			if next[i].ID == order.ID {
				next[i] = order
				matched = true
			}
		}
		if !matched {
			return s, false
		}
		return resource.Ready(next), true
	})
}
