// Package testutil provides shared test helpers for the admin routes and
// for decoding the frames a test transport captured.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/banshee-data/qgclink/internal/mavlink"
)

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// LocalRequest builds a request that appears to come from localhost, which
// tsweb's debug access check requires. A non-nil form is sent url-encoded.
func LocalRequest(method, path string, form url.Values) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.RemoteAddr = "127.0.0.1:12345"
	return req
}

// Serve runs req against h and returns the recorder.
func Serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// Payload is a message body that can be decoded from a frame.
type Payload interface {
	UnmarshalPayload(b []byte) error
}

// ParseFrames validates every frame and fails the test on the first bad one.
func ParseFrames(t *testing.T, frames [][]byte) []mavlink.Frame {
	t.Helper()
	out := make([]mavlink.Frame, 0, len(frames))
	for i, b := range frames {
		f, err := mavlink.Parse(b)
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		out = append(out, f)
	}
	return out
}

// MessageIDs returns the message id of each frame, in order.
func MessageIDs(t *testing.T, frames [][]byte) []uint8 {
	t.Helper()
	ids := make([]uint8, 0, len(frames))
	for _, f := range ParseFrames(t, frames) {
		ids = append(ids, f.MessageID)
	}
	return ids
}

// Decode parses frame, checks its message id against want and decodes the
// payload into m.
func Decode(t *testing.T, frame []byte, want uint8, m Payload) mavlink.Frame {
	t.Helper()
	f, err := mavlink.Parse(frame)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.MessageID != want {
		t.Fatalf("message id = %d, want %d", f.MessageID, want)
	}
	if err := m.UnmarshalPayload(f.Payload); err != nil {
		t.Fatalf("decode message %d: %v", f.MessageID, err)
	}
	return f
}
