package entities

import "time"

// Client is the root entity. Estimates and invoices reference it by ID only.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	GSTNumber string    `json:"gst_number"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}
