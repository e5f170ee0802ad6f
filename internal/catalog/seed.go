package catalog

import (
	"context"
	"fmt"
)

func strPtr(s string) *string { return &s }

// SeedProducts is the sample range shown on a fresh install.
func SeedProducts() []NewProduct {
	return []NewProduct{
		{
			Name:        "Premium School Uniform Fabric",
			Description: "High-quality, durable fabric perfect for school uniforms. Available in navy blue and white with excellent color retention and wrinkle resistance.",
			Price:       450,
			Category:    "School Uniforms",
			Image:       strPtr("/generated_images/School_uniform_fabric_samples_bdf2889f.png"),
		},
		{
			Name:        "Security Guard Uniform Material",
			Description: "Professional-grade fabric for security personnel. Tough, reliable, and maintains professional appearance even after extensive use.",
			Price:       520,
			Category:    "Security Uniforms",
			Image:       strPtr("/generated_images/Security_uniform_fabric_collection_a6e53df7.png"),
		},
		{
			Name:        "Corporate Staff Uniform Fabric",
			Description: "Elegant fabric for corporate and staff uniforms. Perfect blend of comfort and professionalism for office environments.",
			Price:       480,
			Category:    "Staff Uniforms",
			Image:       strPtr("/generated_images/Staff_uniform_fabric_samples_1370191d.png"),
		},
		{
			Name:        "Executive School Blazer Material",
			Description: "Premium blazer fabric for school formal wear. Sophisticated finish with excellent drape and durability.",
			Price:       650,
			Category:    "School Uniforms",
			Image:       strPtr("/generated_images/School_uniform_fabric_samples_bdf2889f.png"),
		},
		{
			Name:        "Hospital Staff Uniform Fabric",
			Description: "Medical-grade uniform fabric. Easy to clean, comfortable, and maintains color after multiple washes.",
			Price:       380,
			Category:    "Staff Uniforms",
			Image:       strPtr("/generated_images/Staff_uniform_fabric_samples_1370191d.png"),
		},
		{
			Name:        "Security Officer Formal Fabric",
			Description: "High-end fabric for senior security officers. Professional appearance with superior durability and comfort.",
			Price:       580,
			Category:    "Security Uniforms",
			Image:       strPtr("/generated_images/Security_uniform_fabric_collection_a6e53df7.png"),
		},
	}
}

// Seed inserts SeedProducts into an empty store. A store that already holds
// products is left alone.
func Seed(ctx context.Context, s Store) (int, error) {
	existing, err := s.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list products: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	n := 0
	for _, p := range SeedProducts() {
		if _, err := s.Create(ctx, p); err != nil {
			return n, fmt.Errorf("seed %q: %w", p.Name, err)
		}
		n++
	}
	return n, nil
}
