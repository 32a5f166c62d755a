package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/pterm/pterm"

	"github.com/tosih/motor-curve-tool/pkg/compare"
	"github.com/tosih/motor-curve-tool/pkg/editor"
	"github.com/tosih/motor-curve-tool/pkg/grid"
	"github.com/tosih/motor-curve-tool/pkg/models"
	"github.com/tosih/motor-curve-tool/pkg/reader"
	"github.com/tosih/motor-curve-tool/pkg/scanner"
)

//go:embed templates/*
var templates embed.FS

// GridResponse is the active voltage as the browser table shows it.
type GridResponse struct {
	Drive     string              `json:"drive"`
	Voltage   float64             `json:"voltage"`
	Header    []string            `json:"header"`
	ReadOnly  []bool              `json:"readOnly"`
	Rows      [][]string          `json:"rows"`
	Selection []grid.CellPosition `json:"selection"`
	Dirty     bool                `json:"dirty"`
	CanUndo   bool                `json:"canUndo"`
	CanRedo   bool                `json:"canRedo"`
	History   []string            `json:"history"`
}

// SelectionRequest drives one selection operation.
type SelectionRequest struct {
	Op     string `json:"op"`
	Row    int    `json:"row"`
	Column int    `json:"column"`
	ToRow  int    `json:"toRow"`
	ToCol  int    `json:"toColumn"`
	DRow   int    `json:"dRow"`
	DCol   int    `json:"dColumn"`
}

// EditRequest carries a value for cell, selection and scale edits.
type EditRequest struct {
	Row    int     `json:"row"`
	Column int     `json:"column"`
	Value  float64 `json:"value"`
}

type VoltageRequest struct {
	Drive   int `json:"drive"`
	Voltage int `json:"voltage"`
}

type ChangeResponse struct {
	Changed bool `json:"changed"`
}

type FindingResponse struct {
	Voltage float64 `json:"voltage"`
	Curve   string  `json:"curve"`
	Percent int     `json:"percent"`
	Kind    string  `json:"kind"`
	Detail  string  `json:"detail"`
}

// Server exposes one editing session over HTTP. Handlers run concurrently, so
// every access to the session goes through mu.
type Server struct {
	mu      sync.Mutex
	session *editor.Session
	port    int
}

func NewServer(s *editor.Session, port int) *Server {
	return &Server{session: s, port: port}
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/motor", s.handleMotor)
	mux.HandleFunc("GET /api/grid", s.handleGrid)
	mux.HandleFunc("POST /api/voltage", s.handleVoltage)
	mux.HandleFunc("POST /api/selection", s.handleSelection)
	mux.HandleFunc("POST /api/cell", s.handleCell)
	mux.HandleFunc("POST /api/apply", s.handleApply)
	mux.HandleFunc("POST /api/scale", s.handleScale)
	mux.HandleFunc("GET /api/copy", s.handleCopy)
	mux.HandleFunc("POST /api/paste", s.handlePaste)
	mux.HandleFunc("POST /api/undo", s.handleUndo)
	mux.HandleFunc("POST /api/redo", s.handleRedo)
	mux.HandleFunc("POST /api/save", s.handleSave)
	mux.HandleFunc("GET /api/scan", s.handleScan)
	mux.HandleFunc("GET /api/compare", s.handleCompare)
	return mux
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	url := fmt.Sprintf("http://localhost%s", addr)

	pterm.DefaultHeader.WithFullWidth().
		WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Println("Motor Curve Web Editor Started")

	pterm.Info.Printf("Opening web interface at %s\n", url)
	pterm.Info.Println("Press Ctrl+C to stop the server")
	pterm.Println()

	openBrowser(url)

	server := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return server.ListenAndServe()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}

// status maps session errors to HTTP codes.
func status(err error) int {
	switch {
	case errors.Is(err, editor.ErrNoSelection), errors.Is(err, editor.ErrNoVoltage),
		errors.Is(err, editor.ErrPasteDoesntFit), errors.Is(err, models.ErrDuplicateName),
		errors.Is(err, models.ErrEmptyName):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	content, err := templates.ReadFile("templates/index.html")
	if err != nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(content)
}

func (s *Server) handleMotor(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, s.session.Motor)
}

// gridLocked builds the grid response; s.mu must be held.
func (s *Server) gridLocked() GridResponse {
	sess := s.session
	g := sess.Grid
	resp := GridResponse{
		Header:    g.Header(),
		ReadOnly:  make([]bool, g.ColumnCount()),
		Rows:      make([][]string, g.RowCount()),
		Selection: sess.Selection.Cells(),
		Dirty:     sess.Dirty(),
	}
	if v := sess.Voltage(); v != nil {
		resp.Voltage = v.Value
		resp.Drive = sess.Drive().Name
	}
	for c := range resp.ReadOnly {
		resp.ReadOnly[c] = g.ReadOnly(c)
	}
	for r := range resp.Rows {
		row := make([]string, g.ColumnCount())
		for c := range row {
			row[c] = g.Text(r, c)
		}
		resp.Rows[r] = row
	}
	if sess.Stack != nil {
		resp.CanUndo = sess.Stack.CanUndo()
		resp.CanRedo = sess.Stack.CanRedo()
		resp.History = sess.Stack.History()
	}
	return resp
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, s.gridLocked())
}

func (s *Server) handleVoltage(w http.ResponseWriter, r *http.Request) {
	var req VoltageRequest
	if !readJSON(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.session.SelectVoltage(req.Drive, req.Voltage); err != nil {
		http.Error(w, err.Error(), status(err))
		return
	}
	writeJSON(w, s.gridLocked())
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if !readJSON(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sel := s.session.Selection
	switch req.Op {
	case "cell":
		sel.SelectCell(req.Row, req.Column)
	case "toggle":
		sel.ToggleCell(req.Row, req.Column)
	case "range":
		sel.SelectRange(req.Row, req.Column)
	case "add":
		sel.AddToSelection(req.Row, req.Column)
	case "rect":
		sel.SelectRectangularRange(grid.Cell(req.Row, req.Column), grid.Cell(req.ToRow, req.ToCol))
	case "extend":
		sel.ExtendSelection(req.DRow, req.DCol)
	case "extendToEnd":
		sel.ExtendSelectionToEnd(req.DRow, req.DCol)
	case "move":
		sel.MoveSelection(req.DRow, req.DCol)
	case "all":
		sel.SelectAll()
	case "clear":
		sel.ClearSelection()
	default:
		http.Error(w, fmt.Sprintf("Unknown selection op %q", req.Op), http.StatusBadRequest)
		return
	}
	writeJSON(w, sel.Cells())
}

func (s *Server) edit(w http.ResponseWriter, r *http.Request, apply func(EditRequest) (bool, error)) {
	var req EditRequest
	if !readJSON(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	changed, err := apply(req)
	if err != nil {
		http.Error(w, err.Error(), status(err))
		return
	}
	writeJSON(w, ChangeResponse{Changed: changed})
}

func (s *Server) handleCell(w http.ResponseWriter, r *http.Request) {
	s.edit(w, r, func(req EditRequest) (bool, error) {
		return s.session.SetCell(req.Row, req.Column, req.Value)
	})
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	s.edit(w, r, func(req EditRequest) (bool, error) {
		return s.session.ApplyValue(req.Value)
	})
}

func (s *Server) handleScale(w http.ResponseWriter, r *http.Request) {
	s.edit(w, r, func(req EditRequest) (bool, error) {
		return s.session.ScaleSelection(req.Value)
	})
}

func (s *Server) handleCopy(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	text := s.session.Copy()
	s.mu.Unlock()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, text)
}

func (s *Server) handlePaste(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	changed, err := s.session.Paste(string(body))
	if err != nil {
		http.Error(w, err.Error(), status(err))
		return
	}
	writeJSON(w, ChangeResponse{Changed: changed})
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.session.Undo(); err != nil {
		http.Error(w, err.Error(), status(err))
		return
	}
	writeJSON(w, s.gridLocked())
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.session.Redo(); err != nil {
		http.Error(w, err.Error(), status(err))
		return
	}
	writeJSON(w, s.gridLocked())
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.session.Save(); err != nil {
		http.Error(w, fmt.Sprintf("Error saving: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"path": s.session.Path})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.session.Voltage()
	if v == nil {
		http.Error(w, editor.ErrNoVoltage.Error(), http.StatusBadRequest)
		return
	}
	out := []FindingResponse{}
	for _, f := range scanner.ScanVoltage(v, s.session.Motor.RatedPeakTorque) {
		out = append(out, FindingResponse{
			Voltage: f.Voltage,
			Curve:   f.Curve.Name,
			Percent: f.Curve.Points[f.Index].Percent,
			Kind:    f.Kind,
			Detail:  f.Detail,
		})
	}
	writeJSON(w, out)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("file")
	if filename == "" {
		http.Error(w, "file parameter required", http.StatusBadRequest)
		return
	}
	other, err := reader.ReadMotor(filename)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error reading motor: %v", err), http.StatusInternalServerError)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, compare.Motors(s.session.Motor, other))
}
