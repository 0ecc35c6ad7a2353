package qgclink

import (
	"fmt"
	"net/http"

	"tailscale.com/tsweb"

	"github.com/banshee-data/qgclink/internal/autopilot"
	"github.com/banshee-data/qgclink/internal/httputil"
)

type linkStatus struct {
	Rates                Rates  `json:"rates"`
	PendingParamRequests int    `json:"pending_param_requests"`
	DroppedParamRequests uint64 `json:"dropped_param_requests"`
}

// AttachAdminRoutes mounts the link debug routes. They stand in for the
// uplink commands while testing against a ground station that cannot send
// them.
func (l *Link) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	debug.HandleFunc("rates", "downlink stream rates (POST stream=heartbeat|rc|control&rate=N)", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
		case http.MethodPost:
			rate, err := httputil.FormInt(r, "rate")
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if err := l.SetRate(Stream(r.FormValue("stream")), rate); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		httputil.WriteJSON(w, linkStatus{
			Rates:                l.Rates(),
			PendingParamRequests: l.PendingParamRequests(),
			DroppedParamRequests: l.DroppedParamRequests(),
		})
	})

	debug.HandleSilentFunc("request-params", httputil.PostOnly(func(w http.ResponseWriter, r *http.Request) {
		l.RequestParamList()
		fmt.Fprintln(w, "Parameter list requested")
	}))

	debug.HandleSilentFunc("request-param", httputil.PostOnly(func(w http.ResponseWriter, r *http.Request) {
		comp, err := httputil.FormUint8(r, "component")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		name, err := httputil.FormString(r, "name")
		if err != nil || len(name) > autopilot.ParamIDLen {
			http.Error(w, "Invalid name", http.StatusBadRequest)
			return
		}
		if !l.RequestParam(autopilot.ParamID{ComponentID: comp, Name: name}) {
			http.Error(w, "Request queue full", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintf(w, "Parameter %d/%s requested\n", comp, name)
	}))

	debug.HandleSilentFunc("request-rc-calibration", httputil.PostOnly(func(w http.ResponseWriter, r *http.Request) {
		l.RequestRCCalibration()
		fmt.Fprintln(w, "Radio calibration requested")
	}))
}
