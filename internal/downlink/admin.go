package downlink

import (
	"net/http"

	"tailscale.com/tsweb"

	"github.com/banshee-data/qgclink/internal/httputil"
	"github.com/banshee-data/qgclink/internal/monitoring"
)

// Status is a point-in-time summary of a Sender.
type Status struct {
	Counters
	BaseRate       int                     `json:"base_rate_hz"`
	Modes          ModeSnapshot            `json:"modes"`
	ConsoleDepth   int                     `json:"console_depth"`
	ConsoleDropped uint64                  `json:"console_dropped"`
	Loop           monitoring.LoopSnapshot `json:"loop"`
}

// Status summarises the Sender.
func (s *Sender) Status() Status {
	return Status{
		Counters:       s.Counters(),
		BaseRate:       s.cfg.BaseRate,
		Modes:          s.modes.Snapshot(),
		ConsoleDepth:   s.console.Len(),
		ConsoleDropped: s.console.Dropped(),
		Loop:           s.stats.Snapshot(),
	}
}

// AttachAdminRoutes mounts the downlink status route and a console route
// for injecting test lines (POST text=...).
func (s *Sender) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	debug.HandleFunc("downlink", "downlink loop counters, modes and timing", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, s.Status())
	})

	debug.HandleSilentFunc("console", httputil.PostOnly(func(w http.ResponseWriter, r *http.Request) {
		text, err := httputil.FormString(r, "text")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.console.PushText(text)
		w.WriteHeader(http.StatusAccepted)
	}))
}
