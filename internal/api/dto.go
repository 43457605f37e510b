package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/arnfell/driftline/internal/models"
)

type createPostRequest struct {
	Content   string            `json:"content"`
	Latitude  float64           `json:"latitude"`
	Longitude float64           `json:"longitude"`
	Media     []models.MediaRef `json:"media,omitempty"`
}

// Validate checks the payload before any network call is attempted.
func (r createPostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content,
			validation.Required.Error("content must not be empty"),
			validation.Length(1, 4000)),
	)
}

type updateSettingRequest struct {
	Value bool `json:"value"`
}

type sessionRequest struct {
	IsAuthenticated bool             `json:"is_authenticated"`
	Identity        *models.Identity `json:"identity,omitempty"`
}
