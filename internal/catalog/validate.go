package catalog

import (
	"net/url"
	"strings"

	"SupremeFabrics/pkg/kit"
)

type productBody struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *int64  `json:"price"`
	Category    *string `json:"category"`
	Image       *string `json:"image"`
}

func (b productBody) toNew() (NewProduct, []kit.Violation) {
	var vs []kit.Violation

	required := func(field string, v *string) string {
		if v == nil {
			vs = append(vs, kit.Violation{Field: field, Message: "is required"})
			return ""
		}
		if strings.TrimSpace(*v) == "" {
			vs = append(vs, kit.Violation{Field: field, Message: "must not be empty"})
		}
		return *v
	}

	in := NewProduct{
		Name:        required("name", b.Name),
		Description: required("description", b.Description),
		Category:    required("category", b.Category),
	}

	if b.Price == nil {
		vs = append(vs, kit.Violation{Field: "price", Message: "is required"})
	} else {
		vs = append(vs, checkPrice(*b.Price)...)
		in.Price = *b.Price
	}

	vs = append(vs, checkImage(b.Image)...)
	in.Image = cloneImage(b.Image)

	return in, vs
}

func (b productBody) toPatch() (Patch, []kit.Violation) {
	var vs []kit.Violation

	for _, f := range []struct {
		name string
		v    *string
	}{
		{"name", b.Name},
		{"description", b.Description},
		{"category", b.Category},
	} {
		if f.v != nil && strings.TrimSpace(*f.v) == "" {
			vs = append(vs, kit.Violation{Field: f.name, Message: "must not be empty"})
		}
	}
	if b.Price != nil {
		vs = append(vs, checkPrice(*b.Price)...)
	}
	vs = append(vs, checkImage(b.Image)...)

	return Patch{
		Name:        b.Name,
		Description: b.Description,
		Price:       b.Price,
		Category:    b.Category,
		Image:       b.Image,
	}, vs
}

func checkPrice(p int64) []kit.Violation {
	if p < 0 {
		return []kit.Violation{{Field: "price", Message: "must be greater than or equal to 0"}}
	}
	return nil
}

// Images are either site-relative paths from the upload endpoint or
// absolute http(s) URLs.
func checkImage(img *string) []kit.Violation {
	if img == nil || *img == "" {
		return nil
	}

	bad := []kit.Violation{{Field: "image", Message: "must be a relative path or an http(s) URL"}}

	u, err := url.Parse(*img)
	if err != nil {
		return bad
	}
	if u.Scheme == "" && u.Host == "" && strings.HasPrefix(u.Path, "/") {
		return nil
	}
	if (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return nil
	}
	return bad
}
