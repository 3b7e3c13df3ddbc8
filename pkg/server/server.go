// Package server exposes selection export over HTTP. Datasets are
// registered once at startup and only read while serving.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"regionbridge/pkg/logger"
	"regionbridge/pkg/shape"
	"regionbridge/pkg/subset"
	"regionbridge/pkg/translate"
	"regionbridge/pkg/visualization"
)

// maxBody caps request bodies; selections are small documents
const maxBody = 1 << 20

// Dataset is a dataset served under a name, with the unit shown in listings.
type Dataset struct {
	Data subset.Dataset
	Unit string
}

// Options configures a Server.
type Options struct {
	// Translation is used for masks and reverse translation; the registry's
	// exporters carry their own options.
	Translation translate.Options

	// Format is the export format used when a request names none
	Format string

	// Workers renders masks, 0 for all CPUs
	Workers int

	Logger logger.ILogger
}

// Server routes export requests to a format registry.
type Server struct {
	registry *translate.Registry
	datasets map[string]Dataset
	opts     Options
	log      logger.ILogger
}

// New creates a server over a fixed set of datasets.
func New(registry *translate.Registry, datasets map[string]Dataset, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = &logger.NullLogger{}
	}
	if opts.Format == "" {
		opts.Format = translate.FormatRegions
	}
	return &Server{registry: registry, datasets: datasets, opts: opts, log: log}
}

// Router builds the chi router serving
//
//	GET  /formats
//	GET  /datasets
//	POST /datasets/{name}/export
//	POST /datasets/{name}/export/{format}
//	POST /datasets/{name}/mask
//	POST /datasets/{name}/import
func (s *Server) Router() chi.Router {
	root := chi.NewRouter()
	root.Use(middleware.Logger)
	root.Use(middleware.Recoverer)

	root.Get("/formats", s.listFormats)
	root.Get("/datasets", s.listDatasets)
	root.Route("/datasets/{name}", func(r chi.Router) {
		r.Post("/export", s.export)
		r.Post("/export/{format}", s.export)
		r.Post("/mask", s.mask)
		r.Post("/import", s.importShape)
	})
	return root
}

type datasetInfo struct {
	Name  string `json:"name"`
	Shape []int  `json:"shape"`
	Unit  string `json:"unit,omitempty"`
}

func (s *Server) listFormats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, s.registry.Formats())
}

func (s *Server) listDatasets(w http.ResponseWriter, r *http.Request) {
	out := make([]datasetInfo, 0, len(s.datasets))
	for name, ds := range s.datasets {
		out = append(out, datasetInfo{Name: name, Shape: ds.Data.Shape(), Unit: ds.Unit})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	respondJSON(w, out)
}

// selection resolves the dataset named in the URL and decodes the request
// body against it. It writes the error response itself and returns ok=false
// on failure.
func (s *Server) selection(w http.ResponseWriter, r *http.Request) (Dataset, subset.State, bool) {
	name := chi.URLParam(r, "name")
	ds, found := s.datasets[name]
	if !found {
		http.Error(w, "unknown dataset "+name, http.StatusNotFound)
		return Dataset{}, nil, false
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return Dataset{}, nil, false
	}
	sel, err := subset.Decode(body, ds.Data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return Dataset{}, nil, false
	}
	return ds, sel, true
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	ds, sel, ok := s.selection(w, r)
	if !ok {
		return
	}
	format := chi.URLParam(r, "format")
	if format == "" {
		format = s.opts.Format
	}
	out, err := s.registry.SelectionToShape(format, ds.Data, sel)
	if err != nil {
		s.translationError(w, err)
		return
	}
	data, err := shape.Marshal(out)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) mask(w http.ResponseWriter, r *http.Request) {
	ds, sel, ok := s.selection(w, r)
	if !ok {
		return
	}
	out, err := translate.New(ds.Data, s.opts.Translation).ToShape(sel)
	if err != nil {
		s.translationError(w, err)
		return
	}
	viewer, err := visualization.NewViewer(ds.Data, s.opts.Workers)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	img := viewer.RenderMask(out)
	w.Header().Set("Content-Type", "image/png")
	if err := visualization.EncodePNG(w, img); err != nil {
		s.log.Errorf("failed to encode mask: %v", err)
	}
}

func (s *Server) importShape(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	ds, found := s.datasets[name]
	if !found {
		http.Error(w, "unknown dataset "+name, http.StatusNotFound)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	in, err := shape.Unmarshal(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sel, err := translate.New(ds.Data, s.opts.Translation).FromShape(in)
	if err != nil {
		s.translationError(w, err)
		return
	}
	data, err := subset.Encode(sel)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// translationError maps translation failures onto status codes: an unknown
// format is a missing resource, everything else is a well formed request
// the translator rejected.
func (s *Server) translationError(w http.ResponseWriter, err error) {
	status := http.StatusUnprocessableEntity
	if errors.Is(err, translate.ErrUnknownFormat) {
		status = http.StatusNotFound
	}
	s.log.Debugf("rejected selection: %v", err)
	http.Error(w, err.Error(), status)
}

func respondJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
