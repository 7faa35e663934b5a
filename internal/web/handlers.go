package web

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/contractops/appconfig-api/internal/appconfig"
	"github.com/contractops/appconfig-api/internal/logging"
)

// exportHeader is the fixed CSV column order for exports.
var exportHeader = []string{"ID", "Contract", "URL", "UUID", "Name", "Billable", "Ignore Files"}

// handleList returns one page of records matching the request filters.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	filter := parseListFilter(r)

	result, err := s.service.List(r.Context(), filter)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

// handleGet returns a single record by id.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	ac, err := s.service.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, ac)
}

// handleCreate inserts a new record from the JSON body.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var params appconfig.CreateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ac, err := s.service.Create(r.Context(), params)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("app config created", "id", ac.ID)
	writeJSON(w, r, http.StatusCreated, ac)
}

// handleUpdate applies a partial update to one record.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	var params appconfig.UpdateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ac, err := s.service.Update(r.Context(), id, params)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, ac)
}

// bulkUpdateRequest is the body for POST /bulk-update: the target identities
// and the partial update applied to each of them.
type bulkUpdateRequest struct {
	IDs    []int64                `json:"ids"`
	Update appconfig.UpdateParams `json:"update"`
}

// handleBulkUpdate applies one partial update across many records.
func (s *Server) handleBulkUpdate(w http.ResponseWriter, r *http.Request) {
	var req bulkUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids must not be empty")
		return
	}

	updated, err := s.service.BulkUpdate(r.Context(), req.IDs, req.Update)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("app configs bulk updated",
		"requested", len(req.IDs), "updated", len(updated))
	writeJSON(w, r, http.StatusOK, updated)
}

// handleDelete removes one record.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	if err := s.service.Delete(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("app config deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleExport streams the filtered page as a CSV attachment. Rows are
// written as they arrive from the store and flushed periodically so large
// exports reach the client without buffering the whole page.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	filter := parseListFilter(r)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="app_configs.csv"`)

	// csv.Writer buffers internally, so nothing reaches the client until
	// the first flush. Until then a failure can still become a clean JSON
	// error response.
	cw := csv.NewWriter(w)
	cw.Write(exportHeader)

	flusher, _ := w.(http.Flusher)
	flushEvery := s.cfg.Export.FlushRows
	rowCount := 0
	flushed := false

	err := s.service.Stream(r.Context(), filter, func(ac appconfig.AppConfig) error {
		if err := cw.Write(exportRow(ac)); err != nil {
			return err
		}
		rowCount++
		if flushEvery > 0 && rowCount%flushEvery == 0 {
			cw.Flush()
			if err := cw.Error(); err != nil {
				return err
			}
			flushed = true
			if flusher != nil {
				flusher.Flush()
			}
		}
		return nil
	})
	if err != nil {
		if !flushed {
			w.Header().Del("Content-Disposition")
			s.respondError(w, r, err)
			return
		}
		// Bytes are already out, so a mid-stream failure can only be
		// logged and the connection truncated.
		logging.FromContext(r.Context()).Error("csv export failed",
			"error", err.Error(), "rows_written", rowCount)
		return
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		logging.FromContext(r.Context()).Error("csv flush failed", "error", err.Error())
		return
	}

	logging.FromContext(r.Context()).Info("csv export complete", "rows", rowCount)
}

// exportRow renders one record in exportHeader order. A NULL billable is
// exported as the literal string NULL so it stays distinct from false.
func exportRow(ac appconfig.AppConfig) []string {
	billable := "NULL"
	if ac.Billable != nil {
		billable = strconv.FormatBool(*ac.Billable)
	}
	return []string{
		strconv.FormatInt(ac.ID, 10),
		ac.Contract,
		ac.URL,
		ac.UUID,
		ac.Name,
		billable,
		strconv.FormatBool(ac.IgnoreFiles),
	}
}

// handleHealth reports liveness and database connectivity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Ping(r.Context()); err != nil {
		logging.FromContext(r.Context()).Error("health check failed", "error", err.Error())
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
		})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
