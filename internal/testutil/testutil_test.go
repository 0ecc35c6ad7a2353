package testutil

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/banshee-data/qgclink/internal/mavlink"
)

func TestAssertStatusCode(t *testing.T) {
	fakeT := &testing.T{}
	AssertStatusCode(fakeT, http.StatusOK, http.StatusOK)
	if fakeT.Failed() {
		t.Error("expected no failure for matching status codes")
	}
}

func TestLocalRequest(t *testing.T) {
	req := LocalRequest(http.MethodPost, "/debug/rates", url.Values{"rate": {"5"}})
	if req.RemoteAddr != "127.0.0.1:12345" {
		t.Errorf("RemoteAddr = %q", req.RemoteAddr)
	}
	if got := req.FormValue("rate"); got != "5" {
		t.Errorf("FormValue(rate) = %q, want 5", got)
	}

	get := LocalRequest(http.MethodGet, "/debug/downlink", nil)
	if get.Method != http.MethodGet || get.URL.Path != "/debug/downlink" {
		t.Errorf("unexpected request %s %s", get.Method, get.URL.Path)
	}
}

func TestServe(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	rec := Serve(h, LocalRequest(http.MethodGet, "/", nil))
	AssertStatusCode(t, rec.Code, http.StatusTeapot)
}

func TestDecodeFrames(t *testing.T) {
	var enc mavlink.Encoder
	frames := [][]byte{
		enc.Pack(100, 200, &mavlink.Heartbeat{Type: mavlink.TypeHelicopter}),
		enc.Pack(100, 0, &mavlink.StatusText{Text: "hello"}),
	}

	ids := MessageIDs(t, frames)
	if len(ids) != 2 || ids[0] != mavlink.MsgIDHeartbeat || ids[1] != mavlink.MsgIDStatusText {
		t.Fatalf("MessageIDs = %v", ids)
	}

	var st mavlink.StatusText
	f := Decode(t, frames[1], mavlink.MsgIDStatusText, &st)
	if st.Text != "hello" || f.ComponentID != 0 || f.Seq != 1 {
		t.Errorf("decoded %+v from frame %+v", st, f)
	}
}
