package inquiry

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 5 * time.Second
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) CreateInquiry(ctx context.Context, in Inquiry) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inquiries (id, name, email, phone, company, inquiry_type, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, in.ID, in.Name, in.Email, in.Phone, in.Company, in.InquiryType, in.Message, in.Status, in.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert inquiry: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListInquiries(ctx context.Context) ([]Inquiry, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, phone, company, inquiry_type, message, status, created_at
		FROM inquiries
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list inquiries: %w", err)
	}
	defer rows.Close()

	out := make([]Inquiry, 0, 16)
	for rows.Next() {
		var in Inquiry
		if err := rows.Scan(&in.ID, &in.Name, &in.Email, &in.Phone, &in.Company, &in.InquiryType, &in.Message, &in.Status, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan inquiry: %w", err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list inquiries: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CreateQuote(ctx context.Context, q QuoteRequest) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO quote_requests (id, name, email, phone, company, product_category, quantity,
			delivery_date, special_requirements, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, q.ID, q.Name, q.Email, q.Phone, q.Company, q.ProductCategory, q.Quantity,
		q.DeliveryDate, q.SpecialRequirements, q.Message, q.Status, q.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert quote request: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListQuotes(ctx context.Context) ([]QuoteRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, phone, company, product_category, quantity,
			delivery_date, special_requirements, message, status, created_at
		FROM quote_requests
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list quote requests: %w", err)
	}
	defer rows.Close()

	out := make([]QuoteRequest, 0, 16)
	for rows.Next() {
		var q QuoteRequest
		if err := rows.Scan(&q.ID, &q.Name, &q.Email, &q.Phone, &q.Company, &q.ProductCategory, &q.Quantity,
			&q.DeliveryDate, &q.SpecialRequirements, &q.Message, &q.Status, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quote request: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list quote requests: %w", err)
	}
	return out, nil
}
