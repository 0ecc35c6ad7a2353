// Package httputil holds the small helpers shared by the admin debug routes.
package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/banshee-data/qgclink/internal/monitoring"
)

// WriteJSON writes v as a JSON response with status 200.
func WriteJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		monitoring.Logf("failed to encode json response: %v", err)
	}
}

// PostOnly rejects every method but POST with 405.
func PostOnly(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		fn(w, r)
	}
}

// FormString returns the trimmed form value of key, or an error if it is
// empty.
func FormString(r *http.Request, key string) (string, error) {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return "", fmt.Errorf("missing %s", key)
	}
	return v, nil
}

// FormInt parses the form value of key as a decimal integer.
func FormInt(r *http.Request, key string) (int, error) {
	s, err := FormString(r, key)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return v, nil
}

// FormUint8 parses the form value of key as a value in 0..255.
func FormUint8(r *http.Request, key string) (uint8, error) {
	s, err := FormString(r, key)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return uint8(v), nil
}

// FormFloat parses the form value of key as a float.
func FormFloat(r *http.Request, key string) (float64, error) {
	s, err := FormString(r, key)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return v, nil
}
