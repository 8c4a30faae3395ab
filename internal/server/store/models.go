package store

import "time"

// Image represents one uploaded gallery asset.
type Image struct {
	ID           int64     `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	UploadedBy   string    `json:"uploadedBy"`
	Size         int64     `json:"size"`
	MimeType     string    `json:"mimeType"`
	UploadedAt   time.Time `json:"uploadedAt"`
	Views        int       `json:"views"`
	IsPublic     bool      `json:"isPublic"`
	URL          string    `json:"url"`
}

// Event is one recorded analytics occurrence. Type is an open vocabulary
// (page_visit, image_view, order_placed, ...); Data carries free-form
// request attributes.
type Event struct {
	ID        int64             `json:"id"`
	Type      string            `json:"type"`
	Data      map[string]string `json:"data,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// OrderItem is a single line in an order.
type OrderItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Order is a recorded customer purchase intent. TotalAmount is computed once
// at creation and never recomputed.
type Order struct {
	ID             int64       `json:"id"`
	CustomerName   string      `json:"customerName"`
	Email          string      `json:"email"`
	Phone          string      `json:"phone"`
	Items          []OrderItem `json:"items"`
	TotalAmount    float64     `json:"totalAmount"`
	Status         string      `json:"status"`
	ReferenceImage string      `json:"referenceImage,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// Stats holds the counters derived from the analytics log on demand.
type Stats struct {
	TotalEvents     int `json:"totalEvents"`
	PageVisits      int `json:"pageVisits"`
	PageVisitsToday int `json:"pageVisitsToday"`
	ImageViews      int `json:"imageViews"`
	OrdersPlaced    int `json:"ordersPlaced"`
	ContactSubmits  int `json:"contactSubmits"`
	LoginSuccesses  int `json:"loginSuccesses"`
	LoginFailures   int `json:"loginFailures"`
	UploadFailures  int `json:"uploadFailures"`
	NotFoundHits    int `json:"notFoundHits"`
}

// snapshot is the on-disk layout of the store file.
type snapshot struct {
	Images         []Image   `json:"images"`
	Analytics      []Event   `json:"analytics"`
	Orders         []Order   `json:"orders"`
	OrderIDCounter int64     `json:"orderIdCounter"`
	LastUpdated    time.Time `json:"lastUpdated"`
}
