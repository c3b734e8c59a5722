// Package model defines the vacancy record and the wire types shared by the
// server and the load-generation client.
package model

import (
	"fmt"
	"time"
)

// Division represents the department a vacancy belongs to.
type Division string

const (
	DivisionDevelopment Division = "development"
	DivisionSecurity    Division = "security"
	DivisionSales       Division = "sales"
	DivisionOther       Division = "other"
)

// Divisions lists every valid division, in a fixed order used by the
// synthetic-data generator.
var Divisions = []Division{
	DivisionDevelopment,
	DivisionSecurity,
	DivisionSales,
	DivisionOther,
}

// Valid reports whether d is one of the known divisions.
func (d Division) Valid() bool {
	switch d {
	case DivisionDevelopment, DivisionSecurity, DivisionSales, DivisionOther:
		return true
	}
	return false
}

// Vacancy is a single job posting held by the in-memory store.
// ID is assigned server-side and never reused after deletion.
type Vacancy struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Views       int       `json:"views"`
	Division    Division  `json:"division"`
	Country     string    `json:"country"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ValidateCreate checks the fields a caller controls on creation.
func ValidateCreate(req CreateVacancyRequest) error {
	if req.Title == "" {
		return fmt.Errorf("title is required")
	}
	if !req.Division.Valid() {
		return fmt.Errorf("unknown division %q", req.Division)
	}
	return nil
}

// ValidateUpdate checks the fields a caller controls on update.
func ValidateUpdate(req UpdateVacancyRequest) error {
	if req.Title == "" {
		return fmt.Errorf("title is required")
	}
	if !req.Division.Valid() {
		return fmt.Errorf("unknown division %q", req.Division)
	}
	if req.Views < 0 {
		return fmt.Errorf("views must be non-negative")
	}
	return nil
}
