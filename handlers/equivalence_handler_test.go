// backend/handlers/equivalence_handler_test.go
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dir-tecno/capacita/backend/database"
	"github.com/dir-tecno/capacita/backend/models"
	"github.com/dir-tecno/capacita/backend/services"
)

// stubEquivalenceStore satisfies services.EquivalenceRepository so the
// handler tests can drive the real service over HTTP without a database.
type stubEquivalenceStore struct {
	courses map[string]int64
	certs   map[string]int64

	nextID     int64
	active     map[string]int64 // "courseID/certID" -> equivalence id
	created    []database.NewEquivalence
	list       []models.Equivalence
	lastFilter models.EquivalenceFilter
	lastActor  string
	failWith   error
}

func newStubStore() *stubEquivalenceStore {
	return &stubEquivalenceStore{
		courses: map[string]int64{"Soldadura Básica": 101, "Carpintería": 102},
		certs:   map[string]int64{"Certificación en Oficios": 201},
		active:  make(map[string]int64),
	}
}

func pairKey(courseID, certID int64) string {
	return fmt.Sprintf("%d/%d", courseID, certID)
}

func (s *stubEquivalenceStore) FindCourseID(name string) (int64, error) {
	if s.failWith != nil {
		return 0, s.failWith
	}
	id, ok := s.courses[name]
	if !ok {
		return 0, fmt.Errorf("course %q: %w", name, database.ErrNotFound)
	}
	return id, nil
}

func (s *stubEquivalenceStore) FindCertificationID(name string) (int64, error) {
	if s.failWith != nil {
		return 0, s.failWith
	}
	id, ok := s.certs[name]
	if !ok {
		return 0, fmt.Errorf("certification %q: %w", name, database.ErrNotFound)
	}
	return id, nil
}

func (s *stubEquivalenceStore) HasActiveEquivalence(courseID, certID int64) (bool, error) {
	_, ok := s.active[pairKey(courseID, certID)]
	return ok, nil
}

func (s *stubEquivalenceStore) CreateEquivalence(eq database.NewEquivalence) (int64, error) {
	s.nextID++
	s.active[pairKey(eq.CourseID, eq.CertificationID)] = s.nextID
	s.created = append(s.created, eq)
	return s.nextID, nil
}

func (s *stubEquivalenceStore) ListActiveEquivalences(filter models.EquivalenceFilter) ([]models.Equivalence, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	s.lastFilter = filter
	return s.list, nil
}

func (s *stubEquivalenceStore) GetEquivalence(id int64) (*models.Equivalence, error) {
	for _, eqID := range s.active {
		if eqID == id {
			return &models.Equivalence{ID: id, Estado: models.EstadoActivo}, nil
		}
	}
	return nil, fmt.Errorf("equivalence %d: %w", id, database.ErrNotFound)
}

func (s *stubEquivalenceStore) DeactivateEquivalence(id int64, actingUser string) error {
	s.lastActor = actingUser
	for key, eqID := range s.active {
		if eqID == id {
			delete(s.active, key)
			return nil
		}
	}
	return fmt.Errorf("active equivalence %d: %w", id, database.ErrNotFound)
}

func newEquivalenceHandler(store *stubEquivalenceStore) *EquivalenceHandler {
	return &EquivalenceHandler{Service: services.NewEquivalenceService(store)}
}

func TestSubmitEndpoint(t *testing.T) {
	store := newStubStore()
	handler := newEquivalenceHandler(store)

	body := `{"courses": ["Soldadura Básica", "Carpintería"], "certification": "Certificación en Oficios"}`
	req := httptest.NewRequest(http.MethodPost, "/api/equivalences", strings.NewReader(body))
	req.Header.Set("X-User", "alice")
	rec := httptest.NewRecorder()

	handler.Collection(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var report models.EquivalenceReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, services.ObservacionMultiple, report.Observation)

	require.Len(t, store.created, 2)
	assert.Equal(t, "alice", store.created[0].CreatedBy)
}

func TestSubmitEndpointInvalidJSON(t *testing.T) {
	handler := newEquivalenceHandler(newStubStore())

	req := httptest.NewRequest(http.MethodPost, "/api/equivalences", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	handler.Collection(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitEndpointEmptyCourses(t *testing.T) {
	handler := newEquivalenceHandler(newStubStore())

	req := httptest.NewRequest(http.MethodPost, "/api/equivalences",
		strings.NewReader(`{"courses": [], "certification": "Certificación en Oficios"}`))
	rec := httptest.NewRecorder()

	handler.Collection(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitEndpointUnknownCertification(t *testing.T) {
	handler := newEquivalenceHandler(newStubStore())

	req := httptest.NewRequest(http.MethodPost, "/api/equivalences",
		strings.NewReader(`{"courses": ["Soldadura Básica"], "certification": "Inexistente"}`))
	rec := httptest.NewRecorder()

	handler.Collection(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitEndpointStorageDown(t *testing.T) {
	store := newStubStore()
	store.failWith = fmt.Errorf("%w: dial tcp", database.ErrStorageUnavailable)
	handler := newEquivalenceHandler(store)

	req := httptest.NewRequest(http.MethodPost, "/api/equivalences",
		strings.NewReader(`{"courses": ["Soldadura Básica"], "certification": "Certificación en Oficios"}`))
	rec := httptest.NewRecorder()

	handler.Collection(rec, req)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "try again later")
}

func TestListEndpoint(t *testing.T) {
	store := newStubStore()
	store.list = []models.Equivalence{
		{ID: 2, CourseName: "Soldadura Básica", Estado: models.EstadoActivo, CreatedAt: time.Now()},
		{ID: 1, CourseName: "Carpintería", Estado: models.EstadoActivo, CreatedAt: time.Now().Add(-time.Hour)},
	}
	handler := newEquivalenceHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/equivalences?course=Sold&from=2025-08-01&until=2025-08-31", nil)
	rec := httptest.NewRecorder()

	handler.Collection(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Equivalence
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	assert.Equal(t, "Sold", store.lastFilter.CourseContains)
	require.NotNil(t, store.lastFilter.CreatedFrom)
	require.NotNil(t, store.lastFilter.CreatedUntil)
	// The until day is included whole.
	assert.Equal(t, 23, store.lastFilter.CreatedUntil.Hour())
}

func TestListEndpointEmptyIsArray(t *testing.T) {
	handler := newEquivalenceHandler(newStubStore())

	req := httptest.NewRequest(http.MethodGet, "/api/equivalences", nil)
	rec := httptest.NewRecorder()

	handler.Collection(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestListEndpointBadDate(t *testing.T) {
	handler := newEquivalenceHandler(newStubStore())

	req := httptest.NewRequest(http.MethodGet, "/api/equivalences?from=31-08-2025", nil)
	rec := httptest.NewRecorder()

	handler.Collection(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListEndpointCSVDownload(t *testing.T) {
	store := newStubStore()
	store.list = []models.Equivalence{
		{ID: 1, CourseName: "Soldadura Básica", CertificationName: "Certificación en Oficios",
			Observation: "obs", Estado: models.EstadoActivo, CreatedAt: time.Now()},
	}
	handler := newEquivalenceHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/equivalences?format=csv", nil)
	rec := httptest.NewRecorder()

	handler.Collection(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "equivalencias.csv")
	assert.Contains(t, rec.Body.String(), "Soldadura Básica")
}

func TestItemEndpointLifecycle(t *testing.T) {
	store := newStubStore()
	handler := newEquivalenceHandler(store)

	// Seed one active equivalence through the service.
	submit := httptest.NewRequest(http.MethodPost, "/api/equivalences",
		strings.NewReader(`{"courses": ["Soldadura Básica"], "certification": "Certificación en Oficios"}`))
	rec := httptest.NewRecorder()
	handler.Collection(rec, submit)
	require.Equal(t, http.StatusOK, rec.Code)

	// GET it back.
	rec = httptest.NewRecorder()
	handler.Item(rec, httptest.NewRequest(http.MethodGet, "/api/equivalences/1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// DELETE without X-User attributes the action to "sistema".
	rec = httptest.NewRecorder()
	handler.Item(rec, httptest.NewRequest(http.MethodDelete, "/api/equivalences/1", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "sistema", store.lastActor)

	// DELETE again: the row is no longer active.
	rec = httptest.NewRecorder()
	handler.Item(rec, httptest.NewRequest(http.MethodDelete, "/api/equivalences/1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestItemEndpointBadID(t *testing.T) {
	handler := newEquivalenceHandler(newStubStore())

	rec := httptest.NewRecorder()
	handler.Item(rec, httptest.NewRequest(http.MethodGet, "/api/equivalences/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
