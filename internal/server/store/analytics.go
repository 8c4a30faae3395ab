package store

// Event types recorded by the handlers. The vocabulary is open: TrackEvent
// accepts any non-empty type, these are just the ones the stats derive from.
const (
	EventPageVisit    = "page_visit"
	EventImageView    = "image_view"
	EventOrderPlaced  = "order_placed"
	EventContact      = "contact_submit"
	EventLoginOK      = "admin_login_success"
	EventLoginFailed  = "admin_login_failed"
	EventUploadOK     = "upload_success"
	EventUploadFailed = "upload_failed"
	EventNotFound     = "route_not_found"
	EventServerError  = "server_error"
)

// TrackEvent appends an analytics event, truncates the log to the in-memory
// retention window, and persists. The empty type is rejected.
func (s *Store) TrackEvent(eventType string, data map[string]string) (Event, error) {
	if eventType == "" {
		return Event{}, ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ev := Event{
		ID:        s.nextID(),
		Type:      eventType,
		Data:      data,
		Timestamp: s.now(),
	}
	s.events = append(s.events, ev)
	if len(s.events) > maxEventsInMemory {
		s.events = s.events[len(s.events)-maxEventsInMemory:]
	}
	s.persist()
	return ev, nil
}

// EventCount returns the number of events currently retained in memory.
func (s *Store) EventCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// Stats derives the named counters with a full scan of the retained log.
// Events evicted by the retention window are excluded from counts, not just
// from storage. "Today" uses the host's local calendar day.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.now()
	ty, tm, td := today.Date()

	stats := Stats{TotalEvents: len(s.events)}
	for _, ev := range s.events {
		switch ev.Type {
		case EventPageVisit:
			stats.PageVisits++
			if y, m, d := ev.Timestamp.Date(); y == ty && m == tm && d == td {
				stats.PageVisitsToday++
			}
		case EventImageView:
			stats.ImageViews++
		case EventOrderPlaced:
			stats.OrdersPlaced++
		case EventContact:
			stats.ContactSubmits++
		case EventLoginOK:
			stats.LoginSuccesses++
		case EventLoginFailed:
			stats.LoginFailures++
		case EventUploadFailed:
			stats.UploadFailures++
		case EventNotFound:
			stats.NotFoundHits++
		}
	}
	return stats
}
