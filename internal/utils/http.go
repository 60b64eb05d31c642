package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
)

// MaxBodyBytes caps the request bodies DecodeJSON will read.
const MaxBodyBytes = 1 << 20

var (
	// ErrInvalidJSON is returned by DecodeJSON for empty, malformed or
	// non-object bodies.
	ErrInvalidJSON  = errors.New("Invalid JSON data")
	ErrBodyTooLarge = errors.New("Request body too large")
)

// JSON writes a JSON response with status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// JSONError writes {"success": false, "error": "..."} with a given status.
func JSONError(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]any{"success": false, "error": msg})
}

// DecodeJSON parses the JSON object body into v. Empty objects count as
// invalid. On failure it writes the error response itself: 413 with
// ErrBodyTooLarge past MaxBodyBytes, otherwise 400 with ErrInvalidJSON.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	}

	if err := decodeObject(r, v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			JSONError(w, http.StatusRequestEntityTooLarge, ErrBodyTooLarge.Error())
			return ErrBodyTooLarge
		}
		JSONError(w, http.StatusBadRequest, ErrInvalidJSON.Error())
		return ErrInvalidJSON
	}
	return nil
}

func decodeObject(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return ErrInvalidJSON
	}

	var raw map[string]json.RawMessage
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if len(raw) == 0 {
		return ErrInvalidJSON
	}
	// trailing garbage after the object
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return ErrInvalidJSON
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// ClientIP returns the caller address, preferring proxy headers: the first
// X-Forwarded-For entry, then X-Real-IP, then Client-IP, then RemoteAddr.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	for _, h := range []string{"X-Real-IP", "Client-IP"} {
		if ip := strings.TrimSpace(r.Header.Get(h)); ip != "" {
			return ip
		}
	}
	if r.RemoteAddr == "" {
		return "unknown"
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
