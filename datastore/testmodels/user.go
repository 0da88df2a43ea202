package testmodels

import (
	"fmt"

	"github.com/go-openapi/strfmt"
)

type User struct {

	// Unique identifier for the user.
	// Required: true
	UserID string `json:"userId" dynamodbav:"userId" validate:"required"`

	// Login name, indexed by UserNameIndex.
	// Required: true
	UserName string `json:"userName" dynamodbav:"userName" validate:"required"`

	// Contact address.
	Email string `json:"email,omitempty" dynamodbav:"email,omitempty" validate:"omitempty,email"`

	// Age in years.
	Age int `json:"age,omitempty" dynamodbav:"age,omitempty" validate:"gte=0"`

	// Account status, e.g. "active" or "banned".
	Status string `json:"status,omitempty" dynamodbav:"status,omitempty"`

	// Timestamp when the user was created.
	// Format: date-time
	CreatedAt string `json:"createdAt,omitempty" dynamodbav:"createdAt,omitempty"`

	// Timestamp when the user was soft-deleted.
	// Format: date-time
	DeletedAt string `json:"deletedAt,omitempty" dynamodbav:"deletedAt,omitempty"`
}

// Validate checks the date-time fields.
func (u User) Validate() error {
	if u.CreatedAt != "" && !strfmt.IsDateTime(u.CreatedAt) {
		return fmt.Errorf("createdAt %q is not a date-time", u.CreatedAt)
	}
	if u.DeletedAt != "" && !strfmt.IsDateTime(u.DeletedAt) {
		return fmt.Errorf("deletedAt %q is not a date-time", u.DeletedAt)
	}
	return nil
}
