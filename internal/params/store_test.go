package params

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/qgclink/internal/autopilot"
	"github.com/banshee-data/qgclink/internal/testutil"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "params.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_AppliesMigrations(t *testing.T) {
	s := openTestStore(t)
	version, dirty, err := s.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	// a second run is a no-op
	require.NoError(t, s.MigrateUp())
}

func TestMigrateDown(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.MigrateDown())
	version, _, err := s.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	_, err = s.History(10)
	assert.Error(t, err, "history table is gone")
}

func TestSeedAndParameters_Order(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Seed("controller", autopilot.ComponentController, []autopilot.Parameter{
		{Name: "ROLL_KP", Value: 0.5},
		{Name: "ROLL_KD", Value: 0.1},
		{Name: "PITCH_KP", Value: 0.4},
	}))
	require.NoError(t, s.Seed("helicopter", autopilot.ComponentHelicopter, []autopilot.Parameter{
		{Name: "MASS", Value: 8.2},
	}))

	modules, err := s.Modules()
	require.NoError(t, err)
	assert.Equal(t, []string{"controller", "helicopter"}, modules)

	got, err := s.Parameters("controller")
	require.NoError(t, err)
	want := []autopilot.Parameter{
		{ComponentID: 1, Name: "ROLL_KP", Value: 0.5},
		{ComponentID: 1, Name: "ROLL_KD", Value: 0.1},
		{ComponentID: 1, Name: "PITCH_KP", Value: 0.4},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parameters() mismatch (-want +got):\n%s", diff)
	}
}

func TestSeed_KeepsStoredValues(t *testing.T) {
	s := openTestStore(t)
	defaults := []autopilot.Parameter{{Name: "MASS", Value: 8.2}}
	require.NoError(t, s.Seed("helicopter", 2, defaults))
	require.NoError(t, s.Set("helicopter", "MASS", 9.0))
	require.NoError(t, s.Seed("helicopter", 2, defaults))

	got, err := s.Parameters("helicopter")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 9.0, got[0].Value)
}

func TestSet(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.RegisterModule("controller", 1))

	require.NoError(t, s.Set("controller", "A", 1))
	require.NoError(t, s.Set("controller", "B", 2))
	require.NoError(t, s.Set("controller", "A", 3))

	got, err := s.Parameters("controller")
	require.NoError(t, err)
	assert.Equal(t, []autopilot.Parameter{
		{ComponentID: 1, Name: "A", Value: 3},
		{ComponentID: 1, Name: "B", Value: 2},
	}, got, "updates keep position")

	assert.ErrorIs(t, s.Set("absent", "A", 1), ErrUnknownModule)
	assert.ErrorIs(t, s.Set("controller", strings.Repeat("X", 17), 1), ErrNameTooLong)
	assert.NoError(t, s.Set("controller", strings.Repeat("X", 16), 1))
}

func TestHistory(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.RegisterModule("controller", 1))
	require.NoError(t, s.Set("controller", "A", 1))
	require.NoError(t, s.Set("controller", "A", 2))
	require.NoError(t, s.Set("controller", "A", 2))
	require.NoError(t, s.Set("controller", "A", 5))

	changes, err := s.History(0)
	require.NoError(t, err)
	require.Len(t, changes, 2, "inserts and no-op writes are not history")
	assert.Equal(t, 5.0, changes[0].NewValue)
	require.NotNil(t, changes[0].OldValue)
	assert.Equal(t, 2.0, *changes[0].OldValue)
	assert.Equal(t, 2.0, changes[1].NewValue)
}

func TestLookup(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Seed("controller", 1, []autopilot.Parameter{{Name: "ROLL_KP", Value: 0.5}}))

	p, ok, err := s.Lookup(autopilot.ParamID{ComponentID: 1, Name: "ROLL_KP"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, autopilot.Parameter{ComponentID: 1, Name: "ROLL_KP", Value: 0.5}, p)

	_, ok, err = s.Lookup(autopilot.ParamID{ComponentID: 2, Name: "ROLL_KP"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestModuleView(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Seed("helicopter", 2, []autopilot.Parameter{{Name: "MASS", Value: 8.2}}))

	m := s.Module("helicopter")
	assert.Equal(t, "helicopter", m.Name())
	assert.Equal(t, []autopilot.Parameter{{ComponentID: 2, Name: "MASS", Value: 8.2}}, m.Parameters())
	assert.Empty(t, s.Module("unregistered").Parameters())
}

func TestModuleLookupParameter(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Seed("controller", 1, []autopilot.Parameter{{Name: "ROLL_KP", Value: 0.5}}))
	require.NoError(t, s.Seed("helicopter", 2, []autopilot.Parameter{{Name: "MASS", Value: 8.2}}))

	heli := s.Module("helicopter")
	p, ok := heli.LookupParameter(autopilot.ParamID{ComponentID: 2, Name: "MASS"})
	assert.True(t, ok)
	assert.Equal(t, autopilot.Parameter{ComponentID: 2, Name: "MASS", Value: 8.2}, p)

	_, ok = heli.LookupParameter(autopilot.ParamID{ComponentID: 1, Name: "ROLL_KP"})
	assert.False(t, ok, "a module only answers for its own parameters")

	require.NoError(t, s.Close())
	_, ok = heli.LookupParameter(autopilot.ParamID{ComponentID: 2, Name: "MASS"})
	assert.False(t, ok, "read errors report not found")
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Seed("controller", 1, []autopilot.Parameter{{Name: "A", Value: 1}}))
	got, err := s.Parameters("controller")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestAttachAdminRoutes_Params(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Seed("controller", 1, []autopilot.Parameter{{Name: "ROLL_KP", Value: 0.5}}))

	mux := http.NewServeMux()
	s.AttachAdminRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, testutil.LocalRequest(http.MethodGet, "/debug/params", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var views []moduleView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "controller", views[0].Name)
	assert.Equal(t, []parameterRow{{1, "ROLL_KP", 0.5}}, views[0].Parameters)

	form := url.Values{"module": {"controller"}, "name": {"ROLL_KP"}, "value": {"0.75"}}
	req := testutil.LocalRequest(http.MethodPost, "/debug/params", form)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	p, ok, err := s.Lookup(autopilot.ParamID{ComponentID: 1, Name: "ROLL_KP"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0.75, p.Value)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, testutil.LocalRequest(http.MethodGet, "/debug/params-history", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"new_value":0.75`)
}

func TestAttachAdminRoutes_ParamsBadRequest(t *testing.T) {
	s := openTestStore(t)
	mux := http.NewServeMux()
	s.AttachAdminRoutes(mux)

	tests := []struct {
		name string
		form url.Values
	}{
		{"missing name", url.Values{"module": {"controller"}, "value": {"1"}}},
		{"bad value", url.Values{"module": {"controller"}, "name": {"A"}, "value": {"x"}}},
		{"unknown module", url.Values{"module": {"absent"}, "name": {"A"}, "value": {"1"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.LocalRequest(http.MethodPost, "/debug/params", tt.form)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
