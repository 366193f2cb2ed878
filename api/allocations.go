package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	coremetrics "github.com/kilianp07/wasteflow/core/metrics"
	"github.com/kilianp07/wasteflow/core/model"
	"github.com/kilianp07/wasteflow/core/runstore"
	"github.com/kilianp07/wasteflow/pkg/export"
	"github.com/kilianp07/wasteflow/scenario"
)

func (s *server) handleAllocate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sc, err := scenario.Parse(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()
	ev, err := s.runner.Run(ctx, sc)
	if err != nil {
		var ve *model.ValidationError
		switch {
		case errors.As(err, &ve):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			s.log.Warnf("allocation aborted: %v", err)
			writeError(w, http.StatusServiceUnavailable, "allocation did not complete in time")
		default:
			s.log.Errorf("allocation failed: %v", err)
			writeError(w, http.StatusInternalServerError, "allocation failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, report(ev))
}

// runSummary is the list view of a stored run.
type runSummary struct {
	RunID         string    `json:"run_id"`
	Strategy      string    `json:"strategy"`
	Finished      time.Time `json:"finished_at"`
	Records       int       `json:"records"`
	TotalVolumeKg float64   `json:"total_allocated_kg"`
	TotalCost     float64   `json:"total_cost_eur"`
	ShortfallKg   float64   `json:"shortfall_kg"`
}

func (s *server) handleList(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "run history disabled")
		return
	}
	q := r.URL.Query()
	f := runstore.Filter{Strategy: q.Get("strategy")}
	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "since must be RFC3339")
			return
		}
		f.Since = t
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		f.Limit = n
	}
	runs, err := s.store.List(r.Context(), f)
	if err != nil {
		s.log.Errorf("list runs: %v", err)
		writeError(w, http.StatusInternalServerError, "run history unavailable")
		return
	}
	out := make([]runSummary, len(runs))
	for i, ev := range runs {
		out[i] = runSummary{
			RunID:         ev.RunID,
			Strategy:      ev.Strategy,
			Finished:      ev.Finished,
			Records:       len(ev.Records),
			TotalVolumeKg: ev.Summary.TotalVolumeKg,
			TotalCost:     ev.Summary.TotalCost,
			ShortfallKg:   ev.Summary.ShortfallKg,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleGet(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "run history disabled")
		return
	}
	ev, err := s.store.Get(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, runstore.ErrNotFound):
		writeError(w, http.StatusNotFound, "run not found")
		return
	case err != nil:
		s.log.Errorf("get run: %v", err)
		writeError(w, http.StatusInternalServerError, "run history unavailable")
		return
	}
	writeJSON(w, http.StatusOK, report(ev))
}

func report(ev coremetrics.RunEvent) export.Report {
	rep := export.Report{
		RunID:    ev.RunID,
		Strategy: ev.Strategy,
		Records:  ev.Records,
		Unmet:    ev.Unmet,
		Summary:  ev.Summary,
	}
	if rep.Records == nil {
		rep.Records = []model.AllocationRecord{}
	}
	if rep.Unmet == nil {
		rep.Unmet = []model.UnmetDemand{}
	}
	return rep
}
