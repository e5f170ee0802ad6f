package catalog

import (
	"context"
	"time"
)

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Category    string    `json:"category"`
	Image       *string   `json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewProduct carries the caller-supplied fields of a product. A nil or
// empty Image means "use the placeholder".
type NewProduct struct {
	Name        string
	Description string
	Price       int64
	Category    string
	Image       *string
}

// Patch is a partial update; nil fields keep their stored value.
// A non-nil empty Image clears the image.
type Patch struct {
	Name        *string
	Description *string
	Price       *int64
	Category    *string
	Image       *string
}

type Store interface {
	Ping(ctx context.Context) error
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (Product, bool, error)
	Create(ctx context.Context, in NewProduct) (Product, error)
	Update(ctx context.Context, id string, p Patch) (Product, bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

func (p Product) clone() Product {
	p.Image = cloneImage(p.Image)
	return p
}

func cloneImage(img *string) *string {
	if img == nil || *img == "" {
		return nil
	}
	v := *img
	return &v
}

func (p Product) apply(patch Patch, now time.Time) Product {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Image != nil {
		p.Image = cloneImage(patch.Image)
	}
	p.UpdatedAt = now
	return p
}
