// backend/services/dataset_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dir-tecno/capacita/backend/config"
	"github.com/dir-tecno/capacita/backend/models"
	"github.com/dir-tecno/capacita/backend/storage"
)

// ErrDatasetUnavailable is returned while no dataset snapshot has been
// loaded (startup refresh failed and no admin refresh succeeded since).
// The dashboard pages degrade to an error message instead of crashing.
var ErrDatasetUnavailable = errors.New("datasets not loaded")

// DatasetSnapshot is one consistent in-memory copy of the three remote
// datasets. Snapshots are replaced whole; they are never mutated in place.
type DatasetSnapshot struct {
	Students  []models.StudentRecord
	Offerings []models.CourseOffering
	Teachers  []models.TeacherAssignment
	LoadedAt  time.Time
}

type objectDownloader interface {
	Download(bucket, key string) ([]byte, error)
}

type hubDownloader interface {
	Download(repoID, filename string) (string, error)
}

// DatasetService downloads and caches the remote datasets: the student
// extract from the object-storage bucket, plus the course offering and
// teacher assignment CSVs from the dataset hub.
type DatasetService struct {
	bucket objectDownloader
	hub    hubDownloader

	mu       sync.RWMutex
	snapshot *DatasetSnapshot
}

func NewDatasetService(bucket objectDownloader, hub hubDownloader) *DatasetService {
	return &DatasetService{bucket: bucket, hub: hub}
}

// Refresh re-downloads all three datasets and swaps in a new snapshot.
// On any failure the previous snapshot (if one exists) stays in place.
func (s *DatasetService) Refresh() error {
	cfg := config.AppConfig
	log.Println("Service: Refreshing remote datasets...")

	studentBytes, err := s.bucket.Download(cfg.Storage.Bucket, cfg.Storage.StudentsFile)
	if err != nil {
		return fmt.Errorf("failed to download student extract: %w", err)
	}
	students, err := storage.ReadStudentRecords(studentBytes)
	if err != nil {
		return fmt.Errorf("failed to decode student extract: %w", err)
	}

	offerings, err := s.downloadAndParseOfferings(cfg.DatasetHub)
	if err != nil {
		return err
	}
	teachers, err := s.downloadAndParseTeachers(cfg.DatasetHub)
	if err != nil {
		return err
	}

	snapshot := &DatasetSnapshot{
		Students:  students,
		Offerings: offerings,
		Teachers:  teachers,
		LoadedAt:  time.Now(),
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()

	log.Printf("Service: Dataset snapshot loaded: %d students, %d offerings, %d teacher assignments.\n",
		len(students), len(offerings), len(teachers))
	return nil
}

func (s *DatasetService) downloadAndParseOfferings(cfg config.DatasetHubConfig) ([]models.CourseOffering, error) {
	path, err := s.hub.Download(cfg.RepoID, cfg.OfferingsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to download course offerings: %w", err)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open downloaded offerings file %s: %w", path, err)
	}
	defer file.Close()

	offerings, err := storage.ParseOfferingsCsv(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse course offerings: %w", err)
	}
	return offerings, nil
}

func (s *DatasetService) downloadAndParseTeachers(cfg config.DatasetHubConfig) ([]models.TeacherAssignment, error) {
	path, err := s.hub.Download(cfg.RepoID, cfg.TeachersFile)
	if err != nil {
		return nil, fmt.Errorf("failed to download teacher assignments: %w", err)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open downloaded teachers file %s: %w", path, err)
	}
	defer file.Close()

	assignments, err := storage.ParseTeacherAssignmentsCsv(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse teacher assignments: %w", err)
	}
	return assignments, nil
}

// Snapshot returns the current dataset snapshot, or ErrDatasetUnavailable if
// none has been loaded yet.
func (s *DatasetService) Snapshot() (*DatasetSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, ErrDatasetUnavailable
	}
	return s.snapshot, nil
}

// NeedsRefresh reports whether the snapshot is missing or older than the
// configured refresh interval.
func (s *DatasetService) NeedsRefresh(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return true
	}
	return now.Sub(s.snapshot.LoadedAt) > config.AppConfig.DataFreshness.DatasetRefreshInterval
}

// FilterStudents applies case-insensitive substring filters over the student
// snapshot. Empty filter fields impose no restriction.
func FilterStudents(students []models.StudentRecord, f models.StudentFilter) []models.StudentRecord {
	var out []models.StudentRecord
	for _, st := range students {
		if !containsFold(st.Curso, f.Curso) {
			continue
		}
		if !containsFold(st.Sector, f.Sector) {
			continue
		}
		if !containsFold(st.Institucion, f.Institucion) {
			continue
		}
		if !containsFold(st.Localidad, f.Localidad) {
			continue
		}
		out = append(out, st)
	}
	return out
}

// FilterOfferings applies exact-match filters over the course offering
// snapshot. Empty filter fields impose no restriction.
func FilterOfferings(offerings []models.CourseOffering, f models.OfferingFilter) []models.CourseOffering {
	var out []models.CourseOffering
	for _, o := range offerings {
		if f.Sector != "" && o.Sector != f.Sector {
			continue
		}
		if f.Localidad != "" && o.Localidad != f.Localidad {
			continue
		}
		out = append(out, o)
	}
	return out
}

// Pagination bounds mirror the dashboard's rows-per-page control.
const (
	MinPerPage     = 5
	MaxPerPage     = 100
	DefaultPerPage = 20
)

// Page is one window into a filtered table.
type Page[T any] struct {
	Rows       []T
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// Paginate slices rows into the requested page. Page numbers start at 1 and
// out-of-range requests clamp rather than fail: page past the end yields an
// empty window, perPage outside [MinPerPage, MaxPerPage] is adjusted.
func Paginate[T any](rows []T, page, perPage int) Page[T] {
	if perPage == 0 {
		perPage = DefaultPerPage
	}
	if perPage < MinPerPage {
		perPage = MinPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	if page < 1 {
		page = 1
	}

	total := len(rows)
	totalPages := (total + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}

	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	return Page[T]{
		Rows:       rows[start:end],
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

func containsFold(value, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(substr))
}
