package main

import (
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/banshee-data/qgclink/internal/config"
	"github.com/banshee-data/qgclink/internal/diag"
	"github.com/banshee-data/qgclink/internal/mavlink"
	"github.com/banshee-data/qgclink/internal/sim"
	"github.com/banshee-data/qgclink/internal/testutil"
)

func TestFlagDefaults(t *testing.T) {
	if *configPath != "" {
		t.Errorf("config default = %q, want empty", *configPath)
	}
	if *devMode {
		t.Error("dev mode should be off by default")
	}
	if *adminListen != "" {
		t.Errorf("admin-listen default = %q, want empty", *adminListen)
	}
}

func TestLoadConfig_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if got := cfg.GetBaseRateHz(); got != 200 {
		t.Errorf("base rate = %d, want 200", got)
	}
}

// listen returns a UDP socket standing in for the ground station and a
// config sending to it.
func listen(t *testing.T, extra string) (*net.UDPConn, *config.Config) {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	dir := t.TempDir()
	body := `{"udp_address": "` + conn.LocalAddr().String() + `", "param_db_path": "` +
		filepath.Join(dir, "params.db") + `", "heartbeat_rate_hz": 200` + extra + `}`
	path := filepath.Join(dir, "qgclink.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return conn, cfg
}

func receive(t *testing.T, conn *net.UDPConn) mavlink.Frame {
	t.Helper()
	buf := make([]byte, 512)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	f, err := mavlink.Parse(buf[:n])
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return f
}

func TestNewApp_SendsOverUDP(t *testing.T) {
	conn, cfg := listen(t, `, "uas_id": 7`)
	a, err := newApp(cfg, false, diag.LogWriters{})
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer a.Close()

	if a.heli != nil {
		t.Error("simulation should only run in dev mode")
	}

	a.sender.Iterate()
	hb := receive(t, conn)
	if hb.MessageID != mavlink.MsgIDHeartbeat || hb.SystemID != 7 {
		t.Errorf("first frame = message %d system %d, want heartbeat from 7", hb.MessageID, hb.SystemID)
	}
	var st mavlink.UalbertaSysStatus
	f := receive(t, conn)
	if err := st.UnmarshalPayload(f.Payload); err != nil {
		t.Fatal(err)
	}
	if st.ControlMode != mavlink.Unknown {
		t.Errorf("control mode = %d without a controller, want unknown", st.ControlMode)
	}
}

func TestNewApp_DevModeAndAdminRoutes(t *testing.T) {
	conn, cfg := listen(t, "")
	a, err := newApp(cfg, true, diag.LogWriters{})
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer a.Close()

	if a.heli == nil {
		t.Fatal("dev mode should build the simulation")
	}
	if names := a.drivers.Names(); len(names) != 1 || names[0] != "altimeter" {
		t.Errorf("drivers = %v, want [altimeter]", names)
	}
	mods, err := a.store.Modules()
	if err != nil {
		t.Fatal(err)
	}
	if len(mods) != 2 || mods[0] != sim.ModuleController || mods[1] != sim.ModuleHelicopter {
		t.Errorf("modules = %v", mods)
	}

	mux := a.adminMux()
	for _, path := range []string{"/debug/rates", "/debug/params", "/debug/downlink"} {
		rec := testutil.Serve(mux, testutil.LocalRequest(http.MethodGet, path, nil))
		testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	}

	a.heli.Advance(20 * time.Second)
	a.sender.Iterate()
	ids := map[uint8]bool{}
	for i := 0; i < 6; i++ {
		ids[receive(t, conn).MessageID] = true
	}
	for _, id := range []uint8{
		mavlink.MsgIDHeartbeat, mavlink.MsgIDUalbertaSysStatus,
		mavlink.MsgIDRCChannelsRaw, mavlink.MsgIDRCChannelsScaled,
		mavlink.MsgIDUalbertaControlEffort, mavlink.MsgIDNamedValueFloat,
	} {
		if !ids[id] {
			t.Errorf("message %d not sent on the first iteration", id)
		}
	}
}

func TestNewApp_BadTransport(t *testing.T) {
	_, cfg := listen(t, `, "transport": "serial", "serial_port": "/dev/does-not-exist"`)
	if _, err := newApp(cfg, false, diag.LogWriters{}); err == nil {
		t.Error("expected an error opening a missing serial port")
	}
}
