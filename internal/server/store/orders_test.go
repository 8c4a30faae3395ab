package store

import "testing"

func TestStore_AddOrder(t *testing.T) {
	t.Run("total derived from items once", func(t *testing.T) {
		s := newTestStore(t)
		order, err := s.AddOrder(OrderInput{
			CustomerName: "Ada",
			Email:        "ada@example.com",
			Phone:        "555-0100",
			Items: []OrderItem{
				{Name: "Croissant box", Price: 100, Quantity: 2},
				{Name: "Baguette", Price: 50, Quantity: 1},
			},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if order.TotalAmount != 250 {
			t.Errorf("expected total 250, got %v", order.TotalAmount)
		}
		if order.Status != StatusPending {
			t.Errorf("expected status pending, got %s", order.Status)
		}
		if order.ID != 1 {
			t.Errorf("expected first order id 1, got %d", order.ID)
		}
	})

	t.Run("missing contact fields fail validation without mutation", func(t *testing.T) {
		s := newTestStore(t)
		cases := []OrderInput{
			{Email: "a@b.c", Phone: "1"},
			{CustomerName: "Ada", Phone: "1"},
			{CustomerName: "Ada", Email: "a@b.c"},
		}
		for _, in := range cases {
			if _, err := s.AddOrder(in); err == nil {
				t.Errorf("expected validation error for %+v", in)
			}
		}
		if s.OrderCount() != 0 {
			t.Errorf("expected no orders recorded, got %d", s.OrderCount())
		}
	})
}

func TestOrderRef(t *testing.T) {
	t.Run("formats with WD prefix and zero padding", func(t *testing.T) {
		if got := FormatOrderRef(7); got != "WD0007" {
			t.Errorf("expected WD0007, got %s", got)
		}
		if got := FormatOrderRef(12345); got != "WD12345" {
			t.Errorf("expected WD12345, got %s", got)
		}
	})

	t.Run("parses the numeric suffix", func(t *testing.T) {
		id, err := ParseOrderRef("WD0007")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id != 7 {
			t.Errorf("expected 7, got %d", id)
		}
	})

	t.Run("rejects malformed references", func(t *testing.T) {
		for _, ref := range []string{"", "0007", "WDabc", "XX0007"} {
			if _, err := ParseOrderRef(ref); err == nil {
				t.Errorf("expected error for %q", ref)
			}
		}
	})
}

func TestStore_OrderByRef(t *testing.T) {
	s := newTestStore(t)
	order, err := s.AddOrder(OrderInput{CustomerName: "Ada", Email: "a@b.c", Phone: "1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("finds by external reference", func(t *testing.T) {
		found, err := s.OrderByRef(FormatOrderRef(order.ID))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if found.CustomerName != "Ada" {
			t.Errorf("expected Ada, got %s", found.CustomerName)
		}
	})

	t.Run("unknown reference yields not found", func(t *testing.T) {
		if _, err := s.OrderByRef("WD9999"); err != ErrNotFound {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestStore_RecentOrders(t *testing.T) {
	s := newTestStore(t)
	names := []string{"first", "second", "third"}
	for _, n := range names {
		if _, err := s.AddOrder(OrderInput{CustomerName: n, Email: "a@b.c", Phone: "1"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	t.Run("newest first", func(t *testing.T) {
		recent := s.RecentOrders(2)
		if len(recent) != 2 {
			t.Fatalf("expected 2 orders, got %d", len(recent))
		}
		if recent[0].CustomerName != "third" || recent[1].CustomerName != "second" {
			t.Errorf("expected [third second], got [%s %s]",
				recent[0].CustomerName, recent[1].CustomerName)
		}
	})

	t.Run("zero limit defaults to 50", func(t *testing.T) {
		if got := len(s.RecentOrders(0)); got != 3 {
			t.Errorf("expected all 3 orders, got %d", got)
		}
	})
}
