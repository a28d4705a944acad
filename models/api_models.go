// backend/models/api_models.go
package models

// SubmitEquivalencesRequest is the expected JSON body for
// POST /api/equivalences: many historical courses mapped to one
// certification, with an optional free-text observation.
type SubmitEquivalencesRequest struct {
	Courses       []string `json:"courses"`
	Certification string   `json:"certification"`
	Observation   string   `json:"observation"`
}

// Per-course outcome statuses in an EquivalenceReport.
const (
	OutcomeCreated        = "created"
	OutcomeDuplicate      = "duplicate"
	OutcomeCourseNotFound = "course_not_found"
)

// CourseOutcome reports what happened to one course within a submission.
type CourseOutcome struct {
	Course        string `json:"course"`
	Status        string `json:"status"`
	EquivalenceID int64  `json:"equivalence_id,omitempty"`
}

// EquivalenceReport aggregates the result of one submission. Every requested
// course appears exactly once in Outcomes; Created+Duplicates+NotFound equals
// the number of distinct courses submitted.
type EquivalenceReport struct {
	CertificationID   int64           `json:"certification_id"`
	CertificationName string          `json:"certification_name"`
	Observation       string          `json:"observation"`
	Created           int             `json:"created"`
	Duplicates        int             `json:"duplicates"`
	NotFound          int             `json:"not_found"`
	Outcomes          []CourseOutcome `json:"outcomes"`
}

// StudentPage is one page of the filtered student snapshot.
type StudentPage struct {
	Students   []StudentRecord `json:"students"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PerPage    int             `json:"per_page"`
	TotalPages int             `json:"total_pages"`
}
