package inquiry

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"SupremeFabrics/pkg/kit"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type contactBody struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Company     string `json:"company"`
	InquiryType string `json:"inquiryType"`
	Message     string `json:"message"`
}

type quoteBody struct {
	Name                string          `json:"name"`
	Email               string          `json:"email"`
	Phone               string          `json:"phone"`
	Company             string          `json:"company"`
	ProductCategory     string          `json:"productCategory"`
	Quantity            json.RawMessage `json:"quantity"`
	DeliveryDate        string          `json:"deliveryDate"`
	SpecialRequirements string          `json:"specialRequirements"`
	Message             string          `json:"message"`
}

type checker struct {
	vs []kit.Violation
}

func (c *checker) required(field, v string) {
	if strings.TrimSpace(v) == "" {
		c.vs = append(c.vs, kit.Violation{Field: field, Message: "is required"})
	}
}

func (c *checker) email(v string) {
	if strings.TrimSpace(v) == "" {
		c.required("email", v)
		return
	}
	if !emailRe.MatchString(v) {
		c.vs = append(c.vs, kit.Violation{Field: "email", Message: "must be a valid email address"})
	}
}

func (b contactBody) validate() []kit.Violation {
	var c checker
	c.required("name", b.Name)
	c.email(b.Email)
	c.required("message", b.Message)
	return c.vs
}

func (b quoteBody) validate() (int64, []kit.Violation) {
	var c checker
	c.required("name", b.Name)
	c.email(b.Email)
	c.required("productCategory", b.ProductCategory)

	qty, msg := parseQuantity(b.Quantity)
	if msg != "" {
		c.vs = append(c.vs, kit.Violation{Field: "quantity", Message: msg})
	}
	return qty, c.vs
}

// parseQuantity accepts a JSON integer or a string holding one.
func parseQuantity(raw json.RawMessage) (int64, string) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, "is required"
	}

	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0, "must be a whole number"
		}
		s = strings.TrimSpace(str)
		if s == "" {
			return 0, "is required"
		}
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, "must be a whole number"
	}
	if n <= 0 {
		return 0, "must be greater than 0"
	}
	return n, ""
}
