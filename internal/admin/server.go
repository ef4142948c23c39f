package admin

import (
	"embed"
	"encoding/json"
	"html/template"
	"net/http"

	"fieldsim/internal/sim"
)

// Server exposes a small status page and JSON endpoints for a running
// field simulation.
type Server struct {
	Sim *sim.Simulator
	tpl *template.Template
}

//go:embed templates/index.html
var content embed.FS

func NewServer(simulator *sim.Simulator) *Server {
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	return &Server{Sim: simulator, tpl: tpl}
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/nodes", s.handleNodes)
	mux.HandleFunc("/log", s.handleLog)
	mux.HandleFunc("/field-health", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
}

func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()
	s.routes(mux)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Status sim.Status
		Cycle  int
		Health sim.FieldHealth
		Nodes  []nodeView
	}{
		Status: s.Sim.Status(),
		Cycle:  s.Sim.Cycle(),
		Health: s.Sim.Health(),
	}
	for _, row := range s.Sim.NodeSnapshot() {
		data.Nodes = append(data.Nodes, nodeView{
			ID:      row.NodeID,
			Type:    string(row.DataType),
			X:       row.X,
			Y:       row.Y,
			Battery: row.Battery,
			Active:  row.Active,
		})
	}
	s.tpl.Execute(w, data)
}

type nodeView struct {
	ID      int
	Type    string
	X, Y    float64
	Battery float64
	Active  bool
}

func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Sim.NodeSnapshot())
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Sim.LogSnapshot())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Sim.Health())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status": s.Sim.Status(),
		"cycle":  s.Sim.Cycle(),
	})
}
