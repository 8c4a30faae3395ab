package store

import (
	"fmt"
	"strconv"
	"strings"
)

// StatusPending is the only order status in use; orders have no transition
// logic beyond their initial state.
const StatusPending = "pending"

const orderRefPrefix = "WD"

// OrderInput carries the fields accepted at order placement.
type OrderInput struct {
	CustomerName   string
	Email          string
	Phone          string
	Items          []OrderItem
	ReferenceImage string
}

// AddOrder validates the input, allocates the next order id from the
// persisted counter (starting at 1), computes the total once, and persists.
// Missing contact fields yield ErrValidation with no state mutated.
func (s *Store) AddOrder(in OrderInput) (Order, error) {
	if in.CustomerName == "" || in.Email == "" || in.Phone == "" {
		return Order{}, fmt.Errorf("%w: customerName, email and phone are required", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, item := range in.Items {
		total += item.Price * float64(item.Quantity)
	}

	s.orderSeq++
	order := Order{
		ID:             s.orderSeq,
		CustomerName:   in.CustomerName,
		Email:          in.Email,
		Phone:          in.Phone,
		Items:          in.Items,
		TotalAmount:    total,
		Status:         StatusPending,
		ReferenceImage: in.ReferenceImage,
		CreatedAt:      s.now(),
	}
	s.orders = append(s.orders, order)
	s.persist()
	return order, nil
}

// OrderByRef looks up an order by its external reference ("WD0007").
func (s *Store) OrderByRef(ref string) (Order, error) {
	id, err := ParseOrderRef(ref)
	if err != nil {
		return Order{}, ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return Order{}, ErrNotFound
}

// RecentOrders returns up to limit orders, newest first. Insertion order
// already tracks chronology so no timestamp sort is needed.
func (s *Store) RecentOrders(limit int) []Order {
	if limit <= 0 {
		limit = 50
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.orders)
	if limit > n {
		limit = n
	}
	recent := make([]Order, limit)
	for i := 0; i < limit; i++ {
		recent[i] = s.orders[n-1-i]
	}
	return recent
}

// OrderCount returns the total number of recorded orders.
func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// FormatOrderRef builds the human-facing order reference from a numeric id.
func FormatOrderRef(id int64) string {
	return fmt.Sprintf("%s%04d", orderRefPrefix, id)
}

// ParseOrderRef extracts the numeric id from an external order reference.
func ParseOrderRef(ref string) (int64, error) {
	raw, ok := strings.CutPrefix(ref, orderRefPrefix)
	if !ok {
		return 0, fmt.Errorf("order reference %q missing %s prefix", ref, orderRefPrefix)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("order reference %q is not numeric: %w", ref, err)
	}
	return id, nil
}
