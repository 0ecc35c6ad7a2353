package qgclink

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/qgclink/internal/autopilot"
	"github.com/banshee-data/qgclink/internal/diag"
	"github.com/banshee-data/qgclink/internal/testutil"
)

func TestNew_Defaults(t *testing.T) {
	l := New(Options{Rates: Rates{Heartbeat: 2, RCChannels: 10, ControlOutput: -3}}, nil)
	assert.Equal(t, Rates{Heartbeat: 2, RCChannels: 10, ControlOutput: 0}, l.Rates())
	assert.Equal(t, DefaultRequestCapacity, l.capacity)
}

func TestSetRate(t *testing.T) {
	l := New(Options{}, nil)
	require.NoError(t, l.SetRate(StreamHeartbeat, 4))
	require.NoError(t, l.SetRate(StreamRCChannels, 20))
	require.NoError(t, l.SetRate(StreamControlOutput, 0))
	assert.Equal(t, 4, l.HeartbeatRate())
	assert.Equal(t, 20, l.RCChannelRate())
	assert.Equal(t, 0, l.ControlOutputRate())

	assert.Error(t, l.SetRate(StreamHeartbeat, -1))
	assert.Error(t, l.SetRate("gps", 1))
	assert.Equal(t, 4, l.HeartbeatRate())
}

func TestLatchesAreOneShot(t *testing.T) {
	l := New(Options{}, nil)
	assert.False(t, l.TakeParamListRequest())

	l.RequestParamList()
	l.RequestParamList()
	assert.True(t, l.TakeParamListRequest())
	assert.False(t, l.TakeParamListRequest(), "repeated requests coalesce")

	l.RequestRCCalibration()
	assert.True(t, l.TakeRCCalibrationRequest())
	assert.False(t, l.TakeRCCalibrationRequest())
}

func TestParamRequests_FIFOAndDrain(t *testing.T) {
	l := New(Options{}, nil)
	assert.Nil(t, l.DrainParamRequests())

	ids := []autopilot.ParamID{{ComponentID: 1, Name: "A"}, {ComponentID: 2, Name: "B"}, {ComponentID: 1, Name: "C"}}
	for _, id := range ids {
		require.True(t, l.RequestParam(id))
	}
	assert.Equal(t, 3, l.PendingParamRequests())
	assert.Equal(t, ids, l.DrainParamRequests())
	assert.Equal(t, 0, l.PendingParamRequests())
	assert.Nil(t, l.DrainParamRequests())
}

func TestParamRequests_RejectNewestWhenFull(t *testing.T) {
	var ops bytes.Buffer
	sink := diag.New(diag.LogWriters{Ops: &ops})
	var warnings []string
	sink.Warnings.Connect(func(s string) { warnings = append(warnings, s) })

	l := New(Options{RequestCapacity: 2}, sink)
	assert.True(t, l.RequestParam(autopilot.ParamID{ComponentID: 1, Name: "A"}))
	assert.True(t, l.RequestParam(autopilot.ParamID{ComponentID: 1, Name: "B"}))
	assert.False(t, l.RequestParam(autopilot.ParamID{ComponentID: 1, Name: "C"}))

	assert.Equal(t, uint64(1), l.DroppedParamRequests())
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "1/C")
	assert.Contains(t, ops.String(), "Warning: parameter request queue full")

	got := l.DrainParamRequests()
	assert.Equal(t, []autopilot.ParamID{{ComponentID: 1, Name: "A"}, {ComponentID: 1, Name: "B"}}, got)
}

func TestParamRequests_Concurrent(t *testing.T) {
	l := New(Options{RequestCapacity: 1000}, nil)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				l.RequestParam(autopilot.ParamID{ComponentID: uint8(i), Name: fmt.Sprint(j)})
			}
		}(i)
	}
	wg.Wait()
	assert.Len(t, l.DrainParamRequests(), 500)
}

func TestAttachAdminRoutes_Rates(t *testing.T) {
	l := New(Options{Rates: Rates{Heartbeat: 2}}, nil)
	mux := http.NewServeMux()
	l.AttachAdminRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, testutil.LocalRequest(http.MethodGet, "/debug/rates", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var status linkStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, 2, status.Rates.Heartbeat)

	tests := []struct {
		name       string
		form       url.Values
		wantStatus int
	}{
		{"set rc", url.Values{"stream": {"rc"}, "rate": {"25"}}, http.StatusOK},
		{"bad rate", url.Values{"stream": {"rc"}, "rate": {"fast"}}, http.StatusBadRequest},
		{"negative", url.Values{"stream": {"rc"}, "rate": {"-1"}}, http.StatusBadRequest},
		{"unknown stream", url.Values{"stream": {"gps"}, "rate": {"1"}}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, testutil.LocalRequest(http.MethodPost, "/debug/rates", tt.form))
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
	assert.Equal(t, 25, l.RCChannelRate())
}

func TestAttachAdminRoutes_Requests(t *testing.T) {
	l := New(Options{}, nil)
	mux := http.NewServeMux()
	l.AttachAdminRoutes(mux)

	post := func(path string, form url.Values) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, testutil.LocalRequest(http.MethodPost, path, form))
		return rec
	}

	assert.Equal(t, http.StatusOK, post("/debug/request-params", nil).Code)
	assert.True(t, l.TakeParamListRequest())

	assert.Equal(t, http.StatusOK, post("/debug/request-rc-calibration", nil).Code)
	assert.True(t, l.TakeRCCalibrationRequest())

	assert.Equal(t, http.StatusOK, post("/debug/request-param", url.Values{"component": {"1"}, "name": {"ROLL_KP"}}).Code)
	assert.Equal(t, []autopilot.ParamID{{ComponentID: 1, Name: "ROLL_KP"}}, l.DrainParamRequests())

	assert.Equal(t, http.StatusBadRequest, post("/debug/request-param", url.Values{"component": {"300"}, "name": {"A"}}).Code)
	assert.Equal(t, http.StatusBadRequest, post("/debug/request-param", url.Values{"component": {"1"}}).Code)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, testutil.LocalRequest(http.MethodGet, "/debug/request-params", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.False(t, l.TakeParamListRequest())
}
