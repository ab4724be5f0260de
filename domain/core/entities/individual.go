package entities

import (
	"strings"
	"time"

	"template-backend/pkg/utils"
)

// IndividualType is the role of an individual within a household
type IndividualType string

const (
	IndividualTypeHead   IndividualType = "HEAD"
	IndividualTypeSpouse IndividualType = "SPOUSE"
	IndividualTypeChild  IndividualType = "CHILD"
)

// Individual is a row of the individual table
type Individual struct {
	ID             int64          `db:"id" json:"id"`
	HouseholdID    *int64         `db:"household_id" json:"householdId,omitempty"`
	IndividualType IndividualType `db:"individual_type" json:"individualType" validate:"oneof=HEAD SPOUSE CHILD"`
	FirstName      string         `db:"first_name" json:"firstName" validate:"required,max=100"`
	LastName       string         `db:"last_name" json:"lastName" validate:"max=100"`
	BirthDate      *time.Time     `db:"birth_date" json:"birthDate,omitempty"`
	AlarmTime      *time.Time     `db:"alarm_time" json:"alarmTime,omitempty"`
	Phone          string         `db:"phone" json:"phone" validate:"max=40"`
	Email          string         `db:"email" json:"email" validate:"omitempty,email"`
	Available      bool           `db:"available" json:"available"`
	LastModified   time.Time      `db:"last_modified" json:"lastModified"`
}

// FullName joins first and last name
func (i *Individual) FullName() string {
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}

// Validate checks field constraints
func (i *Individual) Validate() error {
	if i.IndividualType == "" {
		i.IndividualType = IndividualTypeHead
	}
	return utils.ValidateStruct(i)
}

// Touch stamps the modification time
func (i *Individual) Touch(now time.Time) {
	i.LastModified = now.UTC().Truncate(time.Second)
}
