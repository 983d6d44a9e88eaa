// Package server exposes the cut pipeline over HTTP. Requests create jobs
// that run in the background; clients poll them by ID.
package server

import (
	"time"

	"github.com/maauso/wordclip/internal/job"
)

// CreateCutRequest is the HTTP request body for cutting one unit.
type CreateCutRequest struct {
	// Unit is the unit base name, e.g. "D1S1".
	Unit string `json:"unit" validate:"required,max=128,unitname"`
	// Publish uploads the finished track to object storage.
	Publish bool `json:"publish"`
}

// CreateCutResponse is the HTTP response after queueing a cut.
type CreateCutResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CutResponse describes a cut job.
type CutResponse struct {
	ID      string `json:"id"`
	Unit    string `json:"unit"`
	Publish bool   `json:"publish"`
	Status  string `json:"status"`
	// Error contains the reason if the job failed.
	Error string `json:"error,omitempty"`
	// Report is present once the unit has been processed.
	Report *job.Report `json:"report,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ListCutsResponse is the HTTP response for listing cut jobs.
type ListCutsResponse struct {
	Cuts []CutResponse `json:"cuts"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

func newCutResponse(j *job.Job) CutResponse {
	resp := CutResponse{
		ID:        j.ID,
		Unit:      j.Unit,
		Publish:   j.Publish,
		Status:    string(j.Status),
		Error:     j.Error,
		Report:    j.Report,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
	if !j.CompletedAt.IsZero() {
		completed := j.CompletedAt
		resp.CompletedAt = &completed
	}
	return resp
}
