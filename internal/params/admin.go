package params

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/tailscale/tailsql/server/tailsql"
	"tailscale.com/tsweb"

	"github.com/banshee-data/qgclink/internal/httputil"
)

type moduleView struct {
	Name       string         `json:"name"`
	Parameters []parameterRow `json:"parameters"`
}

type parameterRow struct {
	ComponentID uint8   `json:"component_id"`
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
}

// AttachAdminRoutes mounts the parameter debug routes:
//
//   - params: GET lists every module, POST module=&name=&value= sets one
//   - params-history: recent changes
//   - tailsql/: live SQL browser over the parameter database
func (s *Store) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		log.Fatalf("failed to create tailsql server: %v", err)
	}
	tsql.SetDB("sqlite://"+s.path, s.db, &tailsql.DBOptions{
		Label: "Parameter DB",
	})
	debug.Handle("tailsql/", "SQL live debugging of the parameter tables", tsql.NewMux())

	debug.HandleFunc("params", "parameter tables of every module", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.handleList(w)
		case http.MethodPost:
			s.handleSet(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	debug.HandleSilentFunc("params-history", func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		changes, err := s.History(limit)
		if err != nil {
			http.Error(w, fmt.Sprintf("failed to read history: %v", err), http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, changes)
	})
}

func (s *Store) handleList(w http.ResponseWriter) {
	names, err := s.Modules()
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to list modules: %v", err), http.StatusInternalServerError)
		return
	}
	views := make([]moduleView, 0, len(names))
	for _, name := range names {
		ps, err := s.Parameters(name)
		if err != nil {
			http.Error(w, fmt.Sprintf("failed to read %s: %v", name, err), http.StatusInternalServerError)
			return
		}
		v := moduleView{Name: name, Parameters: make([]parameterRow, 0, len(ps))}
		for _, p := range ps {
			v.Parameters = append(v.Parameters, parameterRow{p.ComponentID, p.Name, p.Value})
		}
		views = append(views, v)
	}
	httputil.WriteJSON(w, views)
}

func (s *Store) handleSet(w http.ResponseWriter, r *http.Request) {
	module, err := httputil.FormString(r, "module")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	name, err := httputil.FormString(r, "name")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	value, err := httputil.FormFloat(r, "value")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.Set(module, name, value); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	fmt.Fprintf(w, "Set %s.%s = %g\n", module, name, value)
}
