package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"railmail-service/internal/domain/entity"
	"railmail-service/internal/domain/repository"
	"railmail-service/internal/usecase"
	"railmail-service/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// SourceUpload tags tickets confirmed from an uploaded batch
const SourceUpload = "upload"

const (
	defaultListLimit = 50
	maxListLimit     = 500

	// maxUploadFiles bounds the files of one upload request
	maxUploadFiles = 20
	// multipartOverhead covers part headers and boundaries
	multipartOverhead = 1 << 20
)

// Handler serves the ticket API
type Handler struct {
	parser         *usecase.BatchParser
	tickets        repository.TicketRepository
	imports        repository.EmailRepository
	batches        *BatchStore
	maxUploadBytes int64
	version        string
	logger         logger.Logger
}

// NewHandler creates a new handler. maxUploadBytes is the per-file limit
// that the batch parser enforces.
func NewHandler(
	parser *usecase.BatchParser,
	tickets repository.TicketRepository,
	imports repository.EmailRepository,
	batches *BatchStore,
	maxUploadBytes int64,
	version string,
	logger logger.Logger,
) *Handler {
	return &Handler{
		parser:         parser,
		tickets:        tickets,
		imports:        imports,
		batches:        batches,
		maxUploadBytes: maxUploadBytes,
		version:        version,
		logger:         logger.With("component", "api-handler"),
	}
}

// BatchResponse describes a review batch
type BatchResponse struct {
	BatchID  string                 `json:"batchId"`
	Total    int                    `json:"total"`
	Position int                    `json:"position"`
	Finished bool                   `json:"finished"`
	Current  *entity.ParsedTicket   `json:"current,omitempty"`
	Tickets  []*entity.ParsedTicket `json:"tickets,omitempty"`
	Saved    []*entity.Ticket       `json:"saved,omitempty"`
	Failures []string               `json:"failures,omitempty"`
	Message  string                 `json:"message,omitempty"`
}

// EmailImport is one entry of the Gmail import log
type EmailImport struct {
	EmailID     string     `json:"emailId"`
	Subject     string     `json:"subject"`
	From        string     `json:"from"`
	ReceivedAt  time.Time  `json:"receivedAt"`
	Status      string     `json:"status"`
	ProcessedAt *time.Time `json:"processedAt,omitempty"`
	PNR         string     `json:"pnr,omitempty"`
	TicketID    string     `json:"ticketId,omitempty"`
	ErrorDetail string     `json:"errorDetail,omitempty"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error    string   `json:"error"`
	Failures []string `json:"failures,omitempty"`
}

// GetHealth reports liveness
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": h.version,
	})
}

// ParseTickets parses the uploaded files and opens a review batch
func (h *Handler) ParseTickets(w http.ResponseWriter, r *http.Request) {
	// Oversized files are rejected one by one by the batch parser, so the
	// request itself may carry a full set of them
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes*maxUploadFiles+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "no files uploaded")
		return
	}
	if len(headers) > maxUploadFiles {
		writeError(w, http.StatusBadRequest, "too many files: at most "+strconv.Itoa(maxUploadFiles)+" per upload")
		return
	}

	files := make([]usecase.InputFile, 0, len(headers))
	for _, fh := range headers {
		files = append(files, usecase.InputFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Open:        openerFor(fh.Open),
		})
	}

	result := h.parser.ParseFiles(r.Context(), files)
	failures := make([]string, len(result.Failures))
	for i, f := range result.Failures {
		failures[i] = f.Error()
	}

	if len(result.Tickets) == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:    result.Summary(),
			Failures: failures,
		})
		return
	}

	session := usecase.NewReviewSession(result.Tickets, h.tickets, SourceUpload, h.logger)
	batch := h.batches.Create(session, failures, result.Summary())

	h.logger.Info("Opened review batch",
		"batchID", batch.ID,
		"tickets", len(result.Tickets),
		"failures", len(failures))

	var resp BatchResponse
	batch.Do(func(s *usecase.ReviewSession) error {
		resp = batchResponse(batch, s)
		return nil
	})
	resp.Tickets = result.Tickets
	writeJSON(w, http.StatusCreated, resp)
}

// GetBatch shows the ticket under review
func (h *Handler) GetBatch(w http.ResponseWriter, r *http.Request) {
	batch, ok := h.batch(w, r)
	if !ok {
		return
	}

	var resp BatchResponse
	batch.Do(func(s *usecase.ReviewSession) error {
		resp = batchResponse(batch, s)
		return nil
	})
	writeJSON(w, http.StatusOK, resp)
}

// ConfirmTicket saves the current ticket and advances the batch
func (h *Handler) ConfirmTicket(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(s *usecase.ReviewSession, resp *BatchResponse) error {
		saved, err := s.Confirm(r.Context())
		if saved != nil {
			resp.Saved = []*entity.Ticket{saved}
		}
		return err
	})
}

// SkipTicket drops the current ticket and advances the batch
func (h *Handler) SkipTicket(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(s *usecase.ReviewSession, _ *BatchResponse) error {
		return s.Skip()
	})
}

// ConfirmAll saves every remaining ticket of the batch
func (h *Handler) ConfirmAll(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(s *usecase.ReviewSession, resp *BatchResponse) error {
		saved, err := s.ConfirmAll(r.Context())
		resp.Saved = saved
		return err
	})
}

// CancelBatch discards the batch without saving anything else
func (h *Handler) CancelBatch(w http.ResponseWriter, r *http.Request) {
	batch, ok := h.batch(w, r)
	if !ok {
		return
	}
	batch.Do(func(s *usecase.ReviewSession) error {
		s.CancelAll()
		return nil
	})
	h.batches.Delete(batch.ID)
	w.WriteHeader(http.StatusNoContent)
}

// ListTickets returns the latest stored tickets
func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	limit, ok := listLimit(w, r)
	if !ok {
		return
	}

	tickets, err := h.tickets.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list tickets", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list tickets")
		return
	}
	writeJSON(w, http.StatusOK, tickets)
}

// GetTicket returns a stored ticket by PNR
func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	pnr := chi.URLParam(r, "pnr")
	ticket, err := h.tickets.FindByPNR(r.Context(), pnr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "ticket not found")
			return
		}
		h.logger.Error("Failed to find ticket", "pnr", pnr, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to find ticket")
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

// ListImports returns the Gmail import log, newest first. It filters on
// the status and pnr query parameters.
func (h *Handler) ListImports(w http.ResponseWriter, r *http.Request) {
	limit, ok := listLimit(w, r)
	if !ok {
		return
	}

	status := strings.ToUpper(r.URL.Query().Get("status"))
	switch status {
	case "", entity.StatusPending, entity.StatusProcessing, entity.StatusCompleted, entity.StatusFailed, entity.StatusSkipped:
	default:
		writeError(w, http.StatusBadRequest, "unknown status: "+status)
		return
	}

	emails, err := h.imports.FindImports(r.Context(), repository.ImportFilter{
		Status: status,
		PNR:    r.URL.Query().Get("pnr"),
		Limit:  limit,
	})
	if err != nil {
		h.logger.Error("Failed to list imports", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list imports")
		return
	}

	out := make([]EmailImport, 0, len(emails))
	for _, e := range emails {
		entry := EmailImport{
			EmailID:     e.EmailID,
			Subject:     e.Subject,
			From:        e.From,
			ReceivedAt:  e.ReceivedAt,
			Status:      e.ProcessStatus,
			PNR:         e.PNR,
			TicketID:    e.TicketID,
			ErrorDetail: e.ErrorDetail,
		}
		if !e.ProcessedAt.IsZero() {
			processedAt := e.ProcessedAt
			entry.ProcessedAt = &processedAt
		}
		out = append(out, entry)
	}
	writeJSON(w, http.StatusOK, out)
}

// act runs a review action and answers with the new batch state. A
// finished batch is removed from the store.
func (h *Handler) act(w http.ResponseWriter, r *http.Request, fn func(*usecase.ReviewSession, *BatchResponse) error) {
	batch, ok := h.batch(w, r)
	if !ok {
		return
	}

	var resp BatchResponse
	err := batch.Do(func(s *usecase.ReviewSession) error {
		err := fn(s, &resp)
		saved := resp.Saved
		resp = batchResponse(batch, s)
		resp.Saved = saved
		return err
	})

	switch {
	case errors.Is(err, usecase.ErrSessionFinished):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.logger.Error("Review action failed", "batchID", batch.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, struct {
			ErrorResponse
			Batch BatchResponse `json:"batch"`
		}{ErrorResponse{Error: err.Error()}, resp})
		return
	}

	if resp.Finished {
		h.batches.Delete(batch.ID)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) batch(w http.ResponseWriter, r *http.Request) (*Batch, bool) {
	batch, ok := h.batches.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "batch not found")
		return nil, false
	}
	return batch, true
}

func batchResponse(b *Batch, s *usecase.ReviewSession) BatchResponse {
	resp := BatchResponse{
		BatchID:  b.ID,
		Total:    s.Total(),
		Finished: s.Finished(),
		Failures: b.Failures,
		Message:  b.Message,
	}
	if cur, pos, ok := s.Current(); ok {
		resp.Current = cur
		resp.Position = pos
	} else {
		resp.Position = s.Total()
	}
	return resp
}

func listLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return defaultListLimit, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return 0, false
	}
	return min(n, maxListLimit), true
}

func openerFor(open func() (multipart.File, error)) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		f, err := open()
		if err != nil {
			return nil, err
		}
		return f, nil
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
