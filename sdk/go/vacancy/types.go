package vacancy

import "time"

// Division represents the department a vacancy belongs to.
type Division string

const (
	DivisionDevelopment Division = "development"
	DivisionSecurity    Division = "security"
	DivisionSales       Division = "sales"
	DivisionOther       Division = "other"
)

// Vacancy is a job posting as returned by the API.
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

// CreateRequest is the payload for Create.
type CreateRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Division    Division `json:"division"`
	Country     string   `json:"country"`
}

// UpdateRequest is the payload for Update. All mutable fields are
// overwritten server-side.
type UpdateRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Division    Division `json:"division"`
	Country     string   `json:"country"`
	Views       int      `json:"views"`
}

// DeleteResponse is the result of Delete.
type DeleteResponse struct {
	Success bool `json:"success"`
}

// HealthResponse is the result of Health.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Vacancies int    `json:"vacancies"`
	Uptime    int64  `json:"uptime_seconds"`
}

type signInRequest struct {
	Identity string `json:"identity"`
	Secret   string `json:"secret"`
}

type signInResponse struct {
	Token string `json:"token"`
}
