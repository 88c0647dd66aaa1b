package dto

import "strings"

type AdminUserPatchRequest struct {
	UserID string `json:"userId" validate:"required"`
	Action string `json:"action" validate:"required"`
	Status string `json:"status"`
}

// Validate only checks presence; action and status values are checked by the admin service.
func (r *AdminUserPatchRequest) Validate() error {
	r.UserID = strings.TrimSpace(r.UserID)
	r.Action = strings.TrimSpace(r.Action)
	r.Status = strings.TrimSpace(r.Status)
	return validateStruct(r)
}

type AdminUserDeleteRequest struct {
	UserID string `json:"userId" validate:"required"`
}

func (r *AdminUserDeleteRequest) Validate() error {
	r.UserID = strings.TrimSpace(r.UserID)
	return validateStruct(r)
}
