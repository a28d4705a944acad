// backend/services/equivalence_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/dir-tecno/capacita/backend/database"
	"github.com/dir-tecno/capacita/backend/models"
)

// ErrInvalidRequest marks a malformed submission (no courses, no
// certification). It is returned before any store call is made.
var ErrInvalidRequest = errors.New("invalid request")

// Default observations persisted when the user leaves the field blank.
// The stored note must never be empty.
const (
	ObservacionDirecta  = "Equivalencia directa"
	ObservacionMultiple = "Equivalencia múltiple"
)

// EquivalenceRepository is the slice of the equivalence store the workflow
// needs. *database.EquivalenceStore satisfies it.
type EquivalenceRepository interface {
	FindCourseID(name string) (int64, error)
	FindCertificationID(name string) (int64, error)
	HasActiveEquivalence(courseID, certID int64) (bool, error)
	CreateEquivalence(eq database.NewEquivalence) (int64, error)
	ListActiveEquivalences(filter models.EquivalenceFilter) ([]models.Equivalence, error)
	GetEquivalence(id int64) (*models.Equivalence, error)
	DeactivateEquivalence(id int64, actingUser string) error
}

// EquivalenceService turns batch user submissions (N historical courses, one
// certification, one observation) into store calls and a per-item report.
type EquivalenceService struct {
	store EquivalenceRepository
}

func NewEquivalenceService(store EquivalenceRepository) *EquivalenceService {
	return &EquivalenceService{store: store}
}

// Submit creates equivalences between every submitted historical course and
// the one certification.
//
// An unresolvable certification aborts the whole submission; an unresolvable
// course only skips that course. A pair that is already actively linked is
// counted as a duplicate, not an error. Any storage failure aborts with an
// error wrapping database.ErrStorageUnavailable; retrying the whole call is
// safe because already-created pairs resolve as duplicates.
func (s *EquivalenceService) Submit(req models.SubmitEquivalencesRequest, actingUser string) (*models.EquivalenceReport, error) {
	courses := dedupeNonEmpty(req.Courses)
	certification := strings.TrimSpace(req.Certification)

	// Fail fast, before touching the store: no partial side effects for a
	// malformed request.
	if len(courses) == 0 {
		return nil, fmt.Errorf("%w: at least one historical course is required", ErrInvalidRequest)
	}
	if certification == "" {
		return nil, fmt.Errorf("%w: a certification is required", ErrInvalidRequest)
	}

	observation := strings.TrimSpace(req.Observation)
	if observation == "" {
		if len(courses) > 1 {
			observation = ObservacionMultiple
		} else {
			observation = ObservacionDirecta
		}
	}

	certID, err := s.store.FindCertificationID(certification)
	if err != nil {
		// Unknown certification (or unreachable storage) aborts the whole
		// submission; no partial equivalences against a bad certification.
		return nil, err
	}

	report := &models.EquivalenceReport{
		CertificationID:   certID,
		CertificationName: certification,
		Observation:       observation,
	}

	for _, course := range courses {
		courseID, err := s.store.FindCourseID(course)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				log.Printf("Service: Course %q not found, skipping.\n", course)
				report.NotFound++
				report.Outcomes = append(report.Outcomes, models.CourseOutcome{
					Course: course,
					Status: models.OutcomeCourseNotFound,
				})
				continue
			}
			return nil, err
		}

		exists, err := s.store.HasActiveEquivalence(courseID, certID)
		if err != nil {
			return nil, err
		}
		if exists {
			report.Duplicates++
			report.Outcomes = append(report.Outcomes, models.CourseOutcome{
				Course: course,
				Status: models.OutcomeDuplicate,
			})
			continue
		}

		id, err := s.store.CreateEquivalence(database.NewEquivalence{
			CourseID:          courseID,
			CourseName:        course,
			CertificationID:   certID,
			CertificationName: certification,
			Observation:       observation,
			CreatedBy:         actingUser,
		})
		if err != nil {
			// A concurrent submission may have created the pair between our
			// check and the insert; the store's transactional re-check turns
			// that race into a duplicate outcome.
			if errors.Is(err, database.ErrDuplicateActive) {
				report.Duplicates++
				report.Outcomes = append(report.Outcomes, models.CourseOutcome{
					Course: course,
					Status: models.OutcomeDuplicate,
				})
				continue
			}
			return nil, err
		}

		report.Created++
		report.Outcomes = append(report.Outcomes, models.CourseOutcome{
			Course:        course,
			Status:        models.OutcomeCreated,
			EquivalenceID: id,
		})
	}

	log.Printf("Service: Equivalence submission for %q done: %d created, %d duplicates, %d not found.\n",
		certification, report.Created, report.Duplicates, report.NotFound)
	return report, nil
}

// ListActive returns the ACTIVO equivalences matching the filter, newest first.
func (s *EquivalenceService) ListActive(filter models.EquivalenceFilter) ([]models.Equivalence, error) {
	return s.store.ListActiveEquivalences(filter)
}

// Get returns one equivalence by id, in any estado.
func (s *EquivalenceService) Get(id int64) (*models.Equivalence, error) {
	return s.store.GetEquivalence(id)
}

// Deactivate soft-deletes an ACTIVO equivalence, attributing the action to
// actingUser in the audit trail.
func (s *EquivalenceService) Deactivate(id int64, actingUser string) error {
	actingUser = strings.TrimSpace(actingUser)
	if actingUser == "" {
		return fmt.Errorf("%w: an acting user is required", ErrInvalidRequest)
	}
	return s.store.DeactivateEquivalence(id, actingUser)
}

// dedupeNonEmpty trims the submitted names and drops blanks and repeats,
// keeping first-seen order.
func dedupeNonEmpty(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
