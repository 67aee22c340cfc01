package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/coachdesk/internal/ingest"
	"github.com/claude/coachdesk/internal/ingest/alpha"
	"github.com/claude/coachdesk/internal/storage"
	"github.com/google/uuid"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	stats, err := s.db.GetCustomerStats(r.Context(), customerID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleTrainingSummary(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if end == nil {
		t := time.Now().UTC().AddDate(0, 0, 1)
		end = &t
	}
	if start == nil {
		t := end.AddDate(0, -3, 0)
		start = &t
	}
	bucket := r.URL.Query().Get("bucket")

	periods, err := s.db.GetTrainingSummary(r.Context(), customerID, *start, *end, bucket)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if periods == nil {
		periods = []storage.TrainingSummaryPeriod{}
	}
	writeJSON(w, http.StatusOK, periods)
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	logs, err := s.db.QueryImportLogs(r.Context(), customerID, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if logs == nil {
		logs = []storage.ImportLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

// logImport records an import operation's result to the import_logs table.
func (s *Server) logImport(customerID uuid.UUID, result *ingest.Result, importErr error, durationMs int) {
	status := "success"
	var errMsg *string
	if importErr != nil {
		status = "error"
		msg := importErr.Error()
		errMsg = &msg
	}

	log := storage.ImportLog{
		CustomerID:   customerID,
		Source:       alpha.Source,
		Status:       status,
		DurationMs:   &durationMs,
		ErrorMessage: errMsg,
	}
	if result != nil {
		log.SessionsReceived = result.SessionsReceived
		log.WorkoutsInserted = result.WorkoutsInserted
	}

	ctx, cancel := contextWithTimeout()
	defer cancel()

	if _, err := s.db.InsertImportLog(ctx, log); err != nil {
		s.log.Error("failed to log import", "customer", customerID, "error", err)
	}
}

// contextWithTimeout returns a background context with a 5-second timeout for import logging.
func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second) //nolint:mnd
}
