package inquiry

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"SupremeFabrics/pkg/kit"
)

const (
	maxSubmitBody = 1 << 20

	contactThanks = "Thank you for your inquiry! We will get back to you within 24 hours."
	quoteThanks   = "Quote request submitted successfully! We will provide a detailed quote within 2 business days."
)

// Server accepts contact and quote submissions. Delay, when set, is waited
// out before the submission is stored.
type Server struct {
	Store Store
	Admin func(http.Handler) http.Handler
	Log   *zap.Logger
	Delay time.Duration

	now func() time.Time
}

func (s *Server) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

func (s *Server) ContactRoutes() http.Handler {
	r := chi.NewRouter()
	r.Post("/", s.submitContact)
	r.With(s.Admin).Get("/inquiries", s.listInquiries)
	return r
}

func (s *Server) QuoteRoutes() http.Handler {
	r := chi.NewRouter()
	r.Post("/", s.submitQuote)
	r.With(s.Admin).Get("/requests", s.listQuotes)
	return r
}

func (s *Server) submitContact(w http.ResponseWriter, r *http.Request) {
	var body contactBody
	if err := kit.DecodeJSON(w, r, maxSubmitBody, &body); err != nil {
		kit.BadJSON(w, r, "invalid contact data", err)
		return
	}
	if vs := body.validate(); len(vs) > 0 {
		kit.WriteViolations(w, r, "invalid contact data", vs)
		return
	}

	if err := s.wait(r.Context()); err != nil {
		s.writeStoreError(w, r, "contact submission aborted", err)
		return
	}

	in := Inquiry{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(body.Name),
		Email:       strings.TrimSpace(body.Email),
		Phone:       strings.TrimSpace(body.Phone),
		Company:     strings.TrimSpace(body.Company),
		InquiryType: strings.TrimSpace(body.InquiryType),
		Message:     body.Message,
		Status:      StatusNew,
		CreatedAt:   s.clock(),
	}
	if in.InquiryType == "" {
		in.InquiryType = DefaultInquiryType
	}

	if err := s.Store.CreateInquiry(r.Context(), in); err != nil {
		s.writeStoreError(w, r, "store inquiry failed", err)
		return
	}

	if s.Log != nil {
		s.Log.Info("inquiry received", zap.String("inquiry_id", in.ID), zap.String("type", in.InquiryType))
	}
	kit.WriteJSON(w, http.StatusCreated, map[string]any{
		"success":   true,
		"message":   contactThanks,
		"inquiryId": in.ID,
	})
}

func (s *Server) submitQuote(w http.ResponseWriter, r *http.Request) {
	var body quoteBody
	if err := kit.DecodeJSON(w, r, maxSubmitBody, &body); err != nil {
		kit.BadJSON(w, r, "invalid quote data", err)
		return
	}
	qty, vs := body.validate()
	if len(vs) > 0 {
		kit.WriteViolations(w, r, "invalid quote data", vs)
		return
	}

	if err := s.wait(r.Context()); err != nil {
		s.writeStoreError(w, r, "quote submission aborted", err)
		return
	}

	q := QuoteRequest{
		ID:                  uuid.NewString(),
		Name:                strings.TrimSpace(body.Name),
		Email:               strings.TrimSpace(body.Email),
		Phone:               strings.TrimSpace(body.Phone),
		Company:             strings.TrimSpace(body.Company),
		ProductCategory:     strings.TrimSpace(body.ProductCategory),
		Quantity:            qty,
		DeliveryDate:        strings.TrimSpace(body.DeliveryDate),
		SpecialRequirements: body.SpecialRequirements,
		Message:             body.Message,
		Status:              StatusPending,
		CreatedAt:           s.clock(),
	}

	if err := s.Store.CreateQuote(r.Context(), q); err != nil {
		s.writeStoreError(w, r, "store quote request failed", err)
		return
	}

	if s.Log != nil {
		s.Log.Info("quote request received", zap.String("quote_id", q.ID), zap.String("category", q.ProductCategory))
	}
	kit.WriteJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": quoteThanks,
		"quoteId": q.ID,
	})
}

func (s *Server) listInquiries(w http.ResponseWriter, r *http.Request) {
	out, err := s.Store.ListInquiries(r.Context())
	if err != nil {
		s.writeStoreError(w, r, "list inquiries failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) listQuotes(w http.ResponseWriter, r *http.Request) {
	out, err := s.Store.ListQuotes(r.Context())
	if err != nil {
		s.writeStoreError(w, r, "list quote requests failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) wait(ctx context.Context) error {
	if s.Delay <= 0 {
		return nil
	}

	t := time.NewTimer(s.Delay)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if isTimeoutErr(err) {
		if s.Log != nil {
			s.Log.Warn(msg, zap.Error(err), zap.String("path", r.URL.Path))
		}
		kit.WriteError(w, r, http.StatusGatewayTimeout, "timeout", nil)
		return
	}
	kit.WriteServerError(w, r, s.Log, msg, err)
}

func isTimeoutErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
