package entities

import (
	"time"

	"template-backend/pkg/utils"
)

// Household is a row of the household table
type Household struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name" validate:"required,max=200"`
	LastModified time.Time `db:"last_modified" json:"lastModified"`
}

// Validate checks field constraints
func (h *Household) Validate() error {
	return utils.ValidateStruct(h)
}

// Touch stamps the modification time
func (h *Household) Touch(now time.Time) {
	h.LastModified = now.UTC().Truncate(time.Second)
}
