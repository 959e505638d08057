package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/mondrian/pkg/buildinfo"
	"github.com/matzehuels/mondrian/pkg/config"
	apperr "github.com/matzehuels/mondrian/pkg/errors"
	"github.com/matzehuels/mondrian/pkg/gallery"
	"github.com/matzehuels/mondrian/pkg/palette"
	"github.com/matzehuels/mondrian/pkg/pipeline"
	"github.com/matzehuels/mondrian/pkg/sink"
)

// Response headers describing a rendered artifact.
const (
	SeedHeader  = "X-Mondrian-Seed"
	CacheHeader = "X-Mondrian-Cache"
)

const maxBodyBytes = 64 << 10

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type createResponse struct {
	Record *gallery.Record `json:"record"`
	Image  string          `json:"image"`
}

type listResponse struct {
	Records []*gallery.Record `json:"records"`
}

// =============================================================================
// Service
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

// =============================================================================
// Rendering
// =============================================================================

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cfg, err := configFromQuery(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := formatFromQuery(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.render(w, r, cfg, f)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	cfg := config.Default()
	cfg.Weights = nil
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		s.writeError(w, r, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	// The default weights only belong to the default palette.
	if cfg.Weights == nil && slices.Equal(cfg.Palette, palette.DefaultColors) {
		cfg.Weights = append([]uint32(nil), palette.DefaultWeights...)
	}
	cfg.Format = string(sink.FormatJSON)
	if err := s.checkLimits(cfg); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), pipeline.Options{
		Config:  cfg,
		Formats: []sink.Format{sink.FormatJSON},
		Logger:  loggerFrom(r.Context(), s.logger),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	cfg.Format = ""
	rec := gallery.NewRecord(cfg, result.Seed, result.Stats.Leaves, result.Stats.Border)
	if err := s.store.Put(r.Context(), rec); err != nil {
		s.writeError(w, r, err)
		return
	}
	loggerFrom(r.Context(), s.logger).Info("recorded composition", "id", rec.ID, "seed", rec.Seed, "leaves", rec.Leaves)

	image := "/api/gallery/" + rec.ID + "/image"
	w.Header().Set("Location", "/api/gallery/"+rec.ID)
	writeJSON(w, http.StatusCreated, createResponse{Record: rec, Image: image})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, cfg config.Config, f sink.Format) {
	cfg.Format = string(f)
	if err := s.checkLimits(cfg); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), pipeline.Options{
		Config:  cfg,
		Formats: []sink.Format{f},
		Logger:  loggerFrom(r.Context(), s.logger),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	data := result.Artifacts[f]
	h := w.Header()
	h.Set("Content-Type", f.ContentType())
	h.Set("Content-Length", strconv.Itoa(len(data)))
	h.Set(SeedHeader, strconv.FormatUint(result.Seed, 10))
	if result.CacheHit {
		h.Set(CacheHeader, "hit")
	} else {
		h.Set(CacheHeader, "miss")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// checkLimits validates cfg and applies the per-request bounds.
func (s *Server) checkLimits(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if px := uint64(cfg.Width) * uint64(cfg.Height); px > s.limits.MaxPixels {
		return apperr.New(apperr.ErrCodeInvalidDimensions, "canvas %dx%d exceeds the %d pixel limit", cfg.Width, cfg.Height, s.limits.MaxPixels)
	}
	if cfg.Levels > s.limits.MaxLevels {
		return apperr.New(apperr.ErrCodeInvalidLevels, "levels %d exceeds the server maximum of %d", cfg.Levels, s.limits.MaxLevels)
	}
	return nil
}

// =============================================================================
// Gallery
// =============================================================================

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := gallery.DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, apperr.New(apperr.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	recs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if recs == nil {
		recs = []*gallery.Record{}
	}
	writeJSON(w, http.StatusOK, listResponse{Records: recs})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	f, err := formatFromQuery(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cfg := rec.ReplayConfig()
	if err := applyOutputParams(&cfg, q); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.render(w, r, cfg, f)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Query parsing
// =============================================================================

// configFromQuery layers query parameters over the default configuration.
func configFromQuery(q url.Values) (config.Config, error) {
	cfg := config.Default()
	if v := q.Get("width"); v != "" {
		n, err := parseUint32("width", v)
		if err != nil {
			return cfg, err
		}
		cfg.Width = n
	}
	if v := q.Get("height"); v != "" {
		n, err := parseUint32("height", v)
		if err != nil {
			return cfg, err
		}
		cfg.Height = n
	}
	if v := q.Get("levels"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, apperr.Wrap(apperr.ErrCodeInvalidLevels, err, "invalid levels %q", v)
		}
		cfg.Levels = n
	}
	if v := q.Get("seed"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return cfg, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "invalid seed %q", v)
		}
		cfg.Seed = n
	}
	if v := q.Get("palette"); v != "" {
		cfg.Palette = palette.SplitList(v)
		cfg.Weights = nil
	}
	if v := q.Get("weights"); v != "" {
		ws, err := palette.ParseWeights(v)
		if err != nil {
			return cfg, err
		}
		cfg.Weights = ws
	}
	if err := applyOutputParams(&cfg, q); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyOutputParams reads the encoder settings, which may also be applied
// when re-rendering a record.
func applyOutputParams(cfg *config.Config, q url.Values) error {
	if v := q.Get("scale"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "invalid scale %q", v)
		}
		cfg.Scale = f
	}
	if v := q.Get("quality"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "invalid quality %q", v)
		}
		cfg.Quality = n
	}
	return nil
}

func formatFromQuery(q url.Values) (sink.Format, error) {
	v := q.Get("format")
	if v == "" {
		return sink.FormatPNG, nil
	}
	return sink.ParseFormat(v)
}

func parseUint32(name, v string) (uint32, error) {
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, apperr.Wrap(apperr.ErrCodeInvalidDimensions, err, "invalid %s %q", name, v)
	}
	return uint32(n), nil
}

// =============================================================================
// Responses
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, gallery.ErrNotFound), apperr.Is(err, apperr.ErrCodeNotFound):
		status = http.StatusNotFound
	case apperr.IsInvalid(err):
		status = http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}

	logger := loggerFrom(r.Context(), s.logger)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "path", r.URL.Path, "err", err)
	} else {
		logger.Debug("request rejected", "path", r.URL.Path, "status", status, "err", err)
	}
	writeJSON(w, status, errorResponse{Error: apperr.UserMessage(err), Code: string(apperr.GetCode(err))})
}
