package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/KaramelBytes/evdash/internal/charts"
	"github.com/KaramelBytes/evdash/internal/dataset"
	"github.com/KaramelBytes/evdash/internal/filter"
	"github.com/KaramelBytes/evdash/internal/normalize"
	"github.com/KaramelBytes/evdash/internal/table"
)

var funcs = template.FuncMap{
	"toJSON": func(v any) (template.JS, error) {
		b, err := json.Marshal(v)
		return template.JS(b), err
	},
	"selected": func(vals []string, v string) bool {
		for _, s := range vals {
			if s == v {
				return true
			}
		}
		return false
	},
}

// viewResponse is the /api/view payload.
type viewResponse struct {
	Source    string           `json:"source"`
	Rows      int              `json:"rows"`
	Selection filter.Selection `json:"selection"`
	Options   filter.Result    `json:"options"`
	Empty     bool             `json:"empty"`
	Table     table.Table      `json:"table"`
	Raw       table.Table      `json:"raw"`
	Radar     normalize.Result `json:"radar"`
}

type chartPanel struct {
	Kind   charts.Kind
	Title  string
	Figure charts.Figure
	Empty  bool
}

type pageData struct {
	Version   string
	Source    string
	Rows      int
	Selection filter.Selection
	Options   filter.Result
	Empty     bool
	Table     table.Table
	Raw       table.Table
	Charts    []chartPanel
	Radar     *chartPanel
	Query     template.URL
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ds, sel, res, err := s.resolve(r.Context(), r.URL.Query())
	if err != nil {
		s.loadFailed(w, err)
		return
	}
	data := pageData{
		Version:   s.opt.Version,
		Source:    ds.Name,
		Rows:      ds.Len(),
		Selection: sel,
		Options:   res,
		Empty:     res.Empty(),
		Query:     template.URL(encodeSelection(sel).Encode()),
	}
	if data.Table, err = table.Display(ds.Header, res.View, printerFor(r)); err != nil {
		s.fail(w, "build table", err)
		return
	}
	if data.Raw, err = table.Raw(ds.Header, res.View); err != nil {
		s.fail(w, "build raw table", err)
		return
	}
	if !data.Empty {
		for _, k := range charts.Kinds {
			spec, _ := charts.SpecFor(k)
			fig, err := charts.Build(spec, res.View)
			if err != nil {
				s.fail(w, "build chart", err)
				return
			}
			p := chartPanel{Kind: k, Title: spec.Title, Figure: fig, Empty: fig.Empty()}
			if k == charts.KindRadar {
				data.Radar = &p
				continue
			}
			data.Charts = append(data.Charts, p)
		}
	}

	// Render into a buffer so a template error can still produce a 500.
	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		s.fail(w, "render page", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("[http] write page: %v", err)
	}
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	_, sel, res, err := s.resolve(r.Context(), r.URL.Query())
	if err != nil {
		s.loadFailed(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"selection": sel,
		"options":   res,
	})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	ds, sel, res, err := s.resolve(r.Context(), r.URL.Query())
	if err != nil {
		s.loadFailed(w, err)
		return
	}
	resp := viewResponse{
		Source:    ds.Name,
		Rows:      ds.Len(),
		Selection: sel,
		Options:   res,
		Empty:     res.Empty(),
		Radar:     normalize.Normalize(res.View),
	}
	if resp.Table, err = table.Display(ds.Header, res.View, printerFor(r)); err != nil {
		s.fail(w, "build table", err)
		return
	}
	if resp.Raw, err = table.Raw(ds.Header, res.View); err != nil {
		s.fail(w, "build raw table", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleChart serves /charts/{kind}.{format}.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	name, ext, ok := strings.Cut(r.PathValue("file"), ".")
	if !ok {
		http.Error(w, "chart path must be <kind>.<png|svg|json>", http.StatusNotFound)
		return
	}
	kind, err := charts.ParseKind(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	format, err := charts.ParseFormat(ext)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	_, _, res, err := s.resolve(r.Context(), r.URL.Query())
	if err != nil {
		s.loadFailed(w, err)
		return
	}
	spec, _ := charts.SpecFor(kind)
	fig, err := charts.Build(spec, res.View)
	if err != nil {
		s.fail(w, "build chart", err)
		return
	}

	var buf bytes.Buffer
	err = charts.Render(&buf, fig, format, s.opt.ChartWidth, s.opt.ChartHeight)
	switch {
	case errors.Is(err, charts.ErrEmptyFigure):
		w.WriteHeader(http.StatusNoContent)
		return
	case err != nil:
		s.fail(w, "render chart", err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ds, _, res, err := s.resolve(r.Context(), r.URL.Query())
	if err != nil {
		s.loadFailed(w, err)
		return
	}
	raw := r.URL.Query().Get("raw") == "1"
	var buf bytes.Buffer
	if err := table.WriteCSV(&buf, ds.Header, res.View, raw); err != nil {
		s.fail(w, "export csv", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="ev_selection.csv"`)
	_, _ = buf.WriteTo(w)
}

// handleQR encodes the share link of the resolved selection.
func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	_, sel, _, err := s.resolve(r.Context(), r.URL.Query())
	if err != nil {
		s.loadFailed(w, err)
		return
	}
	u := s.ShareURL(sel)
	if len(u) > 2048 {
		http.Error(w, "selection too large for a QR code", http.StatusRequestEntityTooLarge)
		return
	}
	png, err := qrcode.Encode(u, qrcode.Medium, 256)
	if err != nil {
		s.fail(w, "encode qr", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Disposition", `inline; filename="qr.png"`)
	_, _ = w.Write(png)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.cache.Invalidate()
	ds, err := s.cache.Get(r.Context(), s.src)
	if err != nil {
		s.loadFailed(w, err)
		return
	}
	log.Printf("[serve] reloaded %s (%d rows)", ds.Name, ds.Len())
	writeJSON(w, http.StatusOK, map[string]any{"source": ds.Name, "rows": ds.Len()})
}

// ShareURL returns the public link that reproduces sel.
func (s *Server) ShareURL(sel filter.Selection) string {
	base := strings.TrimRight(s.opt.PublicURL, "/")
	if base == "" {
		base = "http://localhost:8765"
	}
	return base + "/?" + encodeSelection(sel).Encode()
}

func (s *Server) loadFailed(w http.ResponseWriter, err error) {
	log.Printf("[data] load %s: %v", s.src.Name(), err)
	msg := "data source unavailable"
	if errors.Is(err, dataset.ErrMissingColumn) {
		msg = "data source is malformed"
	}
	http.Error(w, msg, http.StatusInternalServerError)
}

func (s *Server) fail(w http.ResponseWriter, what string, err error) {
	log.Printf("[http] %s: %v", what, err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[http] encode json: %v", err)
	}
}
