package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/maauso/wordclip/internal/job"
)

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	service            *job.CutService
	validator          *validator.Validate
	logger             *slog.Logger
	enableAsyncProcess bool
}

// HandlerOption is a function that configures a Handlers instance.
type HandlerOption func(*Handlers)

// WithAsyncProcessing enables or disables background processing.
// When disabled, CreateCut only stores the job.
func WithAsyncProcessing(enabled bool) HandlerOption {
	return func(h *Handlers) {
		h.enableAsyncProcess = enabled
	}
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *job.CutService, logger *slog.Logger, opts ...HandlerOption) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	v := validator.New()
	// unit names become file names, so they follow the same rules
	_ = v.RegisterValidation("unitname", func(fl validator.FieldLevel) bool {
		return job.ValidateUnitName(fl.Field().String()) == nil
	})

	h := &Handlers{
		service:            service,
		validator:          v,
		logger:             logger,
		enableAsyncProcess: true,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// CreateCut handles POST /cuts requests.
func (h *Handlers) CreateCut(w http.ResponseWriter, r *http.Request) {
	var req CreateCutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode request body", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("request validation failed", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	created, err := h.service.CreateJob(r.Context(), req.Unit, req.Publish)
	if err != nil {
		if errors.Is(err, job.ErrUnitNameInvalid) {
			writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
			return
		}
		h.logger.Error("failed to create job", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to create job", "JOB_CREATION_FAILED")
		return
	}

	if h.enableAsyncProcess {
		go func(ctx context.Context, jobID string) {
			if _, err := h.service.ProcessExistingJob(ctx, jobID); err != nil {
				h.logger.Error("background processing failed",
					slog.String("job_id", jobID),
					slog.String("error", err.Error()),
				)
			}
		}(context.WithoutCancel(r.Context()), created.ID)
	}

	h.logger.Info("cut queued",
		slog.String("job_id", created.ID),
		slog.String("unit", req.Unit),
	)

	writeJSON(w, http.StatusAccepted, CreateCutResponse{
		ID:     created.ID,
		Status: string(created.Status),
	})
}

// GetCut handles GET /cuts/{id} requests.
func (h *Handlers) GetCut(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "job ID is required", "MISSING_JOB_ID")
		return
	}

	found, err := h.service.GetJob(r.Context(), jobID)
	if err != nil {
		h.jobError(w, jobID, err, "JOB_FETCH_FAILED")
		return
	}
	writeJSON(w, http.StatusOK, newCutResponse(found))
}

// ListCuts handles GET /cuts requests.
func (h *Handlers) ListCuts(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.service.ListJobs(r.Context())
	if err != nil {
		h.logger.Error("failed to list jobs", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list jobs", "JOB_LIST_FAILED")
		return
	}

	resp := ListCutsResponse{Cuts: make([]CutResponse, 0, len(jobs))}
	for _, j := range jobs {
		resp.Cuts = append(resp.Cuts, newCutResponse(j))
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteCut handles DELETE /cuts/{id} requests. Only finished jobs can be
// removed.
func (h *Handlers) DeleteCut(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "job ID is required", "MISSING_JOB_ID")
		return
	}

	if err := h.service.DeleteJob(r.Context(), jobID); err != nil {
		if errors.Is(err, job.ErrJobActive) {
			writeError(w, http.StatusConflict, err.Error(), "JOB_ACTIVE")
			return
		}
		h.jobError(w, jobID, err, "JOB_DELETE_FAILED")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) jobError(w http.ResponseWriter, jobID string, err error, code string) {
	if errors.Is(err, job.ErrJobNotFound) {
		writeError(w, http.StatusNotFound, "job not found", "JOB_NOT_FOUND")
		return
	}
	h.logger.Error("job lookup failed",
		slog.String("job_id", jobID),
		slog.String("error", err.Error()),
	)
	writeError(w, http.StatusInternalServerError, "job lookup failed", code)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}
