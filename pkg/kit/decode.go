package kit

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
)

const MaxJSONBody = 10 << 20

var (
	ErrEmptyBody    = errors.New("empty body")
	ErrTrailingData = errors.New("extra data after json object")
)

// DecodeJSON reads exactly one JSON object from the request body into v.
// Unknown fields are rejected.
func DecodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return ErrTrailingData
	}
	return nil
}

// DecodeViolations maps the decoder errors that name a field (type mismatch,
// unknown field) to violations. ok is false for anything else.
func DecodeViolations(err error) (vs []Violation, ok bool) {
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) && te.Field != "" {
		return []Violation{{Field: te.Field, Message: "must be " + kindName(te.Type)}}, true
	}

	const unknownPrefix = "json: unknown field "
	if msg := err.Error(); strings.HasPrefix(msg, unknownPrefix) {
		field := strings.Trim(strings.TrimPrefix(msg, unknownPrefix), `"`)
		return []Violation{{Field: field, Message: "unknown field"}}, true
	}

	return nil, false
}

func kindName(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	default:
		return "a valid " + t.Kind().String()
	}
}

// BadJSON writes the 400 for a DecodeJSON failure.
func BadJSON(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if vs, ok := DecodeViolations(err); ok {
		WriteViolations(w, r, msg, vs)
		return
	}

	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		WriteError(w, r, http.StatusRequestEntityTooLarge, "body too large", map[string]any{"max_bytes": mbe.Limit})
		return
	}

	WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
}
