package inquiry

import (
	"context"
	"time"
)

const (
	StatusNew     = "new"
	StatusPending = "pending"

	DefaultInquiryType = "general"
)

// Inquiry is a contact-form submission.
type Inquiry struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Company     string    `json:"company,omitempty"`
	InquiryType string    `json:"inquiryType"`
	Message     string    `json:"message"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

type QuoteRequest struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	Phone               string    `json:"phone,omitempty"`
	Company             string    `json:"company,omitempty"`
	ProductCategory     string    `json:"productCategory"`
	Quantity            int64     `json:"quantity"`
	DeliveryDate        string    `json:"deliveryDate,omitempty"`
	SpecialRequirements string    `json:"specialRequirements,omitempty"`
	Message             string    `json:"message,omitempty"`
	Status              string    `json:"status"`
	CreatedAt           time.Time `json:"createdAt"`
}

// Store lists newest first.
type Store interface {
	Ping(ctx context.Context) error
	CreateInquiry(ctx context.Context, in Inquiry) error
	ListInquiries(ctx context.Context) ([]Inquiry, error)
	CreateQuote(ctx context.Context, q QuoteRequest) error
	ListQuotes(ctx context.Context) ([]QuoteRequest, error)
}
