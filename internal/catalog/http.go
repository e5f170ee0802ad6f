package catalog

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"SupremeFabrics/internal/cache"
	"SupremeFabrics/pkg/kit"
)

const (
	keyAll         = "products:all"
	keyPrefix      = "products:"
	cacheNamespace = "products"
)

// CachedResponse is an encoded product payload ready to be written as-is,
// so repeated reads inside the TTL are byte-identical.
type CachedResponse struct {
	Body []byte
	ETag string
}

type ResponseCache = cache.Cache[CachedResponse]

func NewResponseCache(ttl time.Duration, opts ...cache.Option) *ResponseCache {
	return cache.New[CachedResponse](ttl, opts...)
}

// Server serves the product catalog. Admin gates every mutating route and
// must be set.
type Server struct {
	Store Store
	Cache *ResponseCache
	Admin func(http.Handler) http.Handler
	Log   *zap.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.list)
	r.Get("/{id}", s.get)

	r.Group(func(ar chi.Router) {
		ar.Use(s.Admin)
		ar.Post("/", s.create)
		ar.Put("/{id}", s.update)
		ar.Delete("/{id}", s.delete)
	})

	return r
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	c, gen, ok := s.Cache.GetGen(keyAll)
	if !ok {
		products, err := s.Store.List(r.Context())
		if err != nil {
			kit.WriteServerError(w, r, s.Log, "list products failed", err)
			return
		}

		c, err = encode(products)
		if err != nil {
			kit.WriteServerError(w, r, s.Log, "encode products failed", err)
			return
		}
		s.Cache.SetIfGen(keyAll, c, gen)
	}

	s.writeCached(w, r, c)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	key := keyPrefix + id

	c, gen, ok := s.Cache.GetGen(key)
	if !ok {
		p, found, err := s.Store.Get(r.Context(), id)
		if err != nil {
			kit.WriteServerError(w, r, s.Log, "get product failed", err)
			return
		}
		if !found {
			kit.WriteError(w, r, http.StatusNotFound, "product not found", nil)
			return
		}

		c, err = encode(p)
		if err != nil {
			kit.WriteServerError(w, r, s.Log, "encode product failed", err)
			return
		}
		s.Cache.SetIfGen(key, c, gen)
	}

	s.writeCached(w, r, c)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var body productBody
	if err := kit.DecodeJSON(w, r, kit.MaxJSONBody, &body); err != nil {
		kit.BadJSON(w, r, "invalid product data", err)
		return
	}

	in, vs := body.toNew()
	if len(vs) > 0 {
		kit.WriteViolations(w, r, "invalid product data", vs)
		return
	}

	p, err := s.Store.Create(r.Context(), in)
	if err != nil {
		kit.WriteServerError(w, r, s.Log, "create product failed", err)
		return
	}
	s.invalidate(p.ID)

	kit.WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body productBody
	if err := kit.DecodeJSON(w, r, kit.MaxJSONBody, &body); err != nil {
		kit.BadJSON(w, r, "invalid product data", err)
		return
	}

	patch, vs := body.toPatch()
	if len(vs) > 0 {
		kit.WriteViolations(w, r, "invalid product data", vs)
		return
	}

	p, found, err := s.Store.Update(r.Context(), id, patch)
	if err != nil {
		kit.WriteServerError(w, r, s.Log, "update product failed", err)
		return
	}
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "product not found", nil)
		return
	}
	s.invalidate(id)

	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := s.Store.Delete(r.Context(), id)
	if err != nil {
		kit.WriteServerError(w, r, s.Log, "delete product failed", err)
		return
	}
	if !deleted {
		kit.WriteError(w, r, http.StatusNotFound, "product not found", nil)
		return
	}
	s.invalidate(id)

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) invalidate(id string) {
	n := s.Cache.Invalidate(cacheNamespace)
	if s.Log != nil {
		s.Log.Debug("product cache invalidated", zap.String("id", id), zap.Int("entries", n))
	}
}

func (s *Server) writeCached(w http.ResponseWriter, r *http.Request, c CachedResponse) {
	h := w.Header()
	h.Set("Cache-Control", "public, max-age="+strconv.Itoa(int(s.Cache.TTL().Seconds())))
	h.Set("ETag", c.ETag)

	if etagMatch(r.Header.Get("If-None-Match"), c.ETag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	h.Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(c.Body)
}

func encode(v any) (CachedResponse, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return CachedResponse{}, err
	}

	sum := sha256.Sum256(buf.Bytes())
	return CachedResponse{
		Body: buf.Bytes(),
		ETag: `"` + hex.EncodeToString(sum[:8]) + `"`,
	}, nil
}

func etagMatch(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, cand := range strings.Split(header, ",") {
		cand = strings.TrimSpace(cand)
		if cand == "*" || strings.TrimPrefix(cand, "W/") == etag {
			return true
		}
	}
	return false
}
