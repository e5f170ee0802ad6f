package upload

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"SupremeFabrics/pkg/kit"
)

const (
	DefaultMaxBytes = 5 << 20
	formField       = "image"
	formMemory      = 1 << 20
	formOverhead    = 64 << 10
)

// Server takes admin image uploads. Admin runs before the body is read, so
// an unauthorized request never reaches storage.
type Server struct {
	Images   ImageStore
	Admin    func(http.Handler) http.Handler
	Log      *zap.Logger
	MaxBytes int64
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.With(s.Admin).Post("/image", s.uploadImage)
	return r
}

func (s *Server) maxBytes() int64 {
	if s.MaxBytes > 0 {
		return s.MaxBytes
	}
	return DefaultMaxBytes
}

type uploadResp struct {
	ImageURL string `json:"imageUrl"`
	Filename string `json:"filename"`
}

func (s *Server) uploadImage(w http.ResponseWriter, r *http.Request) {
	limit := s.maxBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+formOverhead)

	if err := r.ParseMultipartForm(formMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			s.tooLarge(w, r, limit)
			return
		}
		kit.WriteError(w, r, http.StatusBadRequest, "invalid multipart form", map[string]any{"cause": err.Error()})
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, hdr, err := r.FormFile(formField)
	if errors.Is(err, http.ErrMissingFile) {
		kit.WriteError(w, r, http.StatusBadRequest, "no file uploaded", nil)
		return
	}
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid multipart form", map[string]any{"cause": err.Error()})
		return
	}
	defer file.Close()

	if hdr.Size > limit {
		s.tooLarge(w, r, limit)
		return
	}

	typ, err := DetectImageType(file)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		kit.WriteServerError(w, r, s.Log, "rewind upload failed", err)
		return
	}

	name := "product-" + uuid.NewString() + typ.Ext
	url, err := s.Images.Put(r.Context(), name, typ.ContentType, file, hdr.Size)
	if err != nil {
		kit.WriteServerError(w, r, s.Log, "store image failed", err)
		return
	}

	if s.Log != nil {
		s.Log.Info("image uploaded", zap.String("filename", name), zap.Int64("bytes", hdr.Size), zap.String("format", typ.Format))
	}
	kit.WriteJSON(w, http.StatusOK, uploadResp{ImageURL: url, Filename: name})
}

func (s *Server) tooLarge(w http.ResponseWriter, r *http.Request, limit int64) {
	kit.WriteError(w, r, http.StatusBadRequest, "file too large", map[string]any{"max_bytes": limit})
}
