package dto

import (
	"time"

	"github.com/google/uuid"
)

// PublishAction is what a generic publish call does to the target rows.
type PublishAction string

const (
	ActionPublish   PublishAction = "publish"
	ActionUnpublish PublishAction = "unpublish"
)

// PublishRequest drives the generic publish endpoint.
type PublishRequest struct {
	Resource string        `json:"resource" validate:"required"`
	ID       *uuid.UUID    `json:"id,omitempty"`
	Action   PublishAction `json:"action" validate:"required,oneof=publish unpublish"`
}

// PublishByIDRequest is the optional body of the per-resource publish call.
type PublishByIDRequest struct {
	ID *uuid.UUID `json:"id,omitempty"`
}

// PublishResponse reports what a single publish/unpublish call touched.
type PublishResponse struct {
	Resource string        `json:"resource"`
	Action   PublishAction `json:"action"`
	ID       *uuid.UUID    `json:"id"`
	Count    int           `json:"count"`
	IDs      []uuid.UUID   `json:"ids"`
}

// PublishResult is one resource's outcome inside a publish-all batch.
type PublishResult struct {
	Resource string `json:"resource"`
	Success  bool   `json:"success"`
	Count    int    `json:"count"`
	Error    string `json:"error,omitempty"`
}

// PublishAllSummary aggregates a publish-all batch.
type PublishAllSummary struct {
	TotalItems          int       `json:"total_items"`
	SuccessfulResources int       `json:"successful_resources"`
	TotalResources      int       `json:"total_resources"`
	PublishedAt         time.Time `json:"published_at"`
}

// PublishAllReport is the full fail-soft batch response: per-resource
// outcomes plus the summary. The call itself always succeeds.
type PublishAllReport struct {
	Results []PublishResult   `json:"results"`
	Summary PublishAllSummary `json:"summary"`
}

// DeleteResponse returns the soft-deleted row's id and, for albums, how many
// images were cascade-deleted with it.
type DeleteResponse struct {
	ID             uuid.UUID `json:"id"`
	CascadedImages int64     `json:"cascaded_images,omitempty"`
}
