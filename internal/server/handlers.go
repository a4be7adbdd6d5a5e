package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/KaramelBytes/csvask-cli/internal/dataset"
	"github.com/KaramelBytes/csvask-cli/internal/render"
	"github.com/KaramelBytes/csvask-cli/internal/router"
	"github.com/KaramelBytes/csvask-cli/internal/tools"
)

var allowedExt = map[string]bool{".csv": true, ".tsv": true, ".tab": true, ".txt": true, ".xlsx": true}

// ColumnView is one column in API responses.
type ColumnView struct {
	Name    string       `json:"name"`
	Kind    dataset.Kind `json:"kind"`
	Unit    string       `json:"unit,omitempty"`
	Binary  bool         `json:"binary,omitempty"`
	Missing int          `json:"missing"`
}

// DatasetView describes an uploaded dataset.
type DatasetView struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Rows    int          `json:"rows"`
	Columns []ColumnView `json:"columns"`
	Created time.Time    `json:"created"`
}

// AskRequest is the body of POST /api/datasets/{id}/ask.
type AskRequest struct {
	Query      string           `json:"query"`
	Tool       string           `json:"tool,omitempty"`
	Selections tools.Selections `json:"selections,omitempty"`
}

// AskResponse carries the routing decision and the tool result.
type AskResponse struct {
	Decision router.Decision `json:"decision"`
	Result   *tools.Result   `json:"result"`
	ChartURL string          `json:"chart_url,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if !allowedExt[strings.ToLower(filepath.Ext(name))] {
		writeError(w, http.StatusBadRequest, "only CSV, TSV and XLSX files are allowed")
		return
	}
	opt := s.cfg.Load
	if sheet := r.FormValue("sheet"); sheet != "" {
		opt.Sheet = sheet
	}
	d, err := dataset.Read(file, name, opt)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse %s: %v", name, err))
		return
	}
	sess := s.add(d, uuid.NewString())
	s.logger.Info("dataset uploaded",
		slog.String("id", sess.id),
		slog.String("name", name),
		slog.Int("rows", d.NumRows()),
		slog.Int("cols", d.NumCols()))
	writeJSON(w, http.StatusCreated, view(sess))
}

func (s *Server) describe(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "dataset not found")
		return
	}
	writeJSON(w, http.StatusOK, view(sess))
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	if !s.drop(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "dataset not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ask(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "dataset not found")
		return
	}
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	var dec router.Decision
	if req.Tool != "" {
		t, ok := router.Parse(req.Tool)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown tool %q", req.Tool))
			return
		}
		dec = router.Decision{Tool: t, Strategy: router.StrategyManual}
	} else {
		dec = s.cfg.Router.Route(r.Context(), req.Query)
	}

	treq := tools.Request{Dataset: sess.data, Query: req.Query, Selections: req.Selections}
	res, err := s.cfg.Runner.Run(dec.Tool, treq)
	if err == nil && res.NeedsSelection() && s.cfg.Assistant != nil {
		if extra := s.cfg.Assistant.Suggest(r.Context(), req.Query, res.Pending); len(extra) > 0 {
			treq.Selections = merge(req.Selections, extra)
			res, err = s.cfg.Runner.Run(dec.Tool, treq)
		}
	}
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, tools.ErrUnknownColumn) || errors.Is(err, tools.ErrWrongKind) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	out := AskResponse{Decision: dec, Result: res}
	if render.HasImage(res.Chart) {
		sess.keep(res.ID, res.Chart, s.cfg.MaxCharts)
		out.ChartURL = fmt.Sprintf("/api/datasets/%s/charts/%s.png", sess.id, res.ID)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) chart(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "dataset not found")
		return
	}
	c, ok := sess.chart(chi.URLParam(r, "resultID"))
	if !ok {
		writeError(w, http.StatusNotFound, "chart not found")
		return
	}
	b, err := render.PNGBytes(c)
	if err != nil {
		s.logger.Error("chart render failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(b)
}

func view(sess *session) DatasetView {
	v := DatasetView{ID: sess.id, Name: sess.data.Name, Rows: sess.data.NumRows(), Created: sess.created}
	for _, c := range sess.data.Columns() {
		v.Columns = append(v.Columns, ColumnView{
			Name:    c.Name,
			Kind:    c.Kind,
			Unit:    c.Unit,
			Binary:  c.IsBinary(),
			Missing: c.MissingCount(),
		})
	}
	return v
}

// merge returns base overlaid with extra; base wins on conflicts.
func merge(base, extra tools.Selections) tools.Selections {
	out := tools.Selections{}
	for k, v := range extra {
		out[k] = v
	}
	for k, v := range base {
		out[k] = v
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
