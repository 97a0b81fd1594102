package model

// Package model holds the storefront content shapes consumed from the
// commerce backend. The gateway never owns this data; these are wire
// snapshots rendered or relayed as-is.

import "time"

// Product is a catalog entry.
type Product struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	PriceCents  int64    `json:"price_cents"`
	Currency    string   `json:"currency"`
	Images      []string `json:"images,omitempty"`
	InStock     bool     `json:"in_stock"`
}

// Post is a blog entry.
type Post struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Excerpt     string    `json:"excerpt"`
	Body        string    `json:"body,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// CartItem is one line of a cart.
type CartItem struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitCents int64  `json:"unit_cents"`
}

// Cart is the visitor's current cart as reported by the backend.
type Cart struct {
	ID         string     `json:"id"`
	Items      []CartItem `json:"items"`
	TotalCents int64      `json:"total_cents"`
	Currency   string     `json:"currency"`
}

// Order is a summary row for the admin order table.
type Order struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Status     string    `json:"status"`
	TotalCents int64     `json:"total_cents"`
	CreatedAt  time.Time `json:"created_at"`
}

// Account is a summary row for the admin user table.
type Account struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Settings is the store-wide configuration blob edited in the admin UI.
type Settings struct {
	StoreName       string `json:"store_name"`
	SupportEmail    string `json:"support_email"`
	CheckoutEnabled bool   `json:"checkout_enabled"`
}

// StoreStats is the aggregate block on the admin dashboard.
type StoreStats struct {
	Products int `json:"products"`
	Orders   int `json:"orders"`
	Users    int `json:"users"`
	Leads    int `json:"leads"`
}

// Lead is a contact captured by the chat widget.
type Lead struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact"`
	Message   string    `json:"message"`
	Page      string    `json:"page,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
