package api

import "strings"

const (
	maxTitleLength       = 200
	maxDescriptionLength = 2000
)

// Validate checks a create request, returning an *APIError describing the
// first invalid field.
func (r *CreateTaskRequest) Validate() *APIError {
	if strings.TrimSpace(r.Title) == "" {
		return NewInvalidRequestError("title", "title is required")
	}
	if len(r.Title) > maxTitleLength {
		return NewInvalidRequestError("title", "title exceeds maximum length")
	}
	if len(r.Description) > maxDescriptionLength {
		return NewInvalidRequestError("description", "description exceeds maximum length")
	}
	return nil
}

// Validate checks an update request. An update with no fields set is
// rejected rather than treated as a no-op write.
func (r *UpdateTaskRequest) Validate() *APIError {
	if r.Title == nil && r.Description == nil && r.Completed == nil {
		return NewInvalidRequestError("", "at least one field must be provided")
	}
	if r.Title != nil {
		if strings.TrimSpace(*r.Title) == "" {
			return NewInvalidRequestError("title", "title must not be empty")
		}
		if len(*r.Title) > maxTitleLength {
			return NewInvalidRequestError("title", "title exceeds maximum length")
		}
	}
	if r.Description != nil && len(*r.Description) > maxDescriptionLength {
		return NewInvalidRequestError("description", "description exceeds maximum length")
	}
	return nil
}
