// Package web provides HTTP request and response types for the run API.
package web

// CreateRunRequest represents the request body for starting a document run.
type CreateRunRequest struct {
	Document string `json:"document" validate:"required,min=1"`
	Wait     bool   `json:"wait"`
}

// DocumentsResponse lists the runnable documents known to the repository.
type DocumentsResponse struct {
	Documents []string `json:"documents"`
}
