// backend/handlers/dataset_handler.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dir-tecno/capacita/backend/export"
	"github.com/dir-tecno/capacita/backend/models"
	"github.com/dir-tecno/capacita/backend/services"
)

// DatasetHandler serves the in-memory dataset snapshot: student records and
// course offerings, with filtering, pagination and export.
type DatasetHandler struct {
	Service *services.DatasetService
}

func studentFilterFromQuery(r *http.Request) models.StudentFilter {
	return models.StudentFilter{
		Curso:       r.URL.Query().Get("curso"),
		Sector:      r.URL.Query().Get("sector"),
		Institucion: r.URL.Query().Get("institucion"),
		Localidad:   r.URL.Query().Get("localidad"),
	}
}

// Students handles GET /api/students with substring filters plus page and
// per_page pagination parameters.
func (h *DatasetHandler) Students(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}

	snapshot, err := h.Service.Snapshot()
	if err != nil {
		respondWithDatasetError(w, err)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	filtered := services.FilterStudents(snapshot.Students, studentFilterFromQuery(r))
	window := services.Paginate(filtered, page, perPage)
	if window.Rows == nil {
		window.Rows = []models.StudentRecord{}
	}

	respondWithJSON(w, http.StatusOK, models.StudentPage{
		Students:   window.Rows,
		Total:      window.Total,
		Page:       window.Page,
		PerPage:    window.PerPage,
		TotalPages: window.TotalPages,
	})
}

// StudentsExport handles GET /api/students/export?format=csv|xlsx|json with
// the same filters as Students. The whole filtered set is exported, not one
// page.
func (h *DatasetHandler) StudentsExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}

	snapshot, err := h.Service.Snapshot()
	if err != nil {
		respondWithDatasetError(w, err)
		return
	}

	filtered := services.FilterStudents(snapshot.Students, studentFilterFromQuery(r))

	format := strings.ToLower(r.URL.Query().Get("format"))
	switch format {
	case "", "csv":
		data, err := export.StudentsCSV(filtered)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to export students: %v", err))
			return
		}
		respondWithDownload(w, export.ContentTypeCSV, "datos_filtrados.csv", data)
	case "xlsx":
		data, err := export.StudentsXLSX(filtered)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to export students: %v", err))
			return
		}
		respondWithDownload(w, export.ContentTypeXLSX, "datos_filtrados.xlsx", data)
	case "json":
		data, err := export.StudentsJSON(filtered)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to export students: %v", err))
			return
		}
		respondWithDownload(w, export.ContentTypeJSON, "datos_filtrados.json", data)
	default:
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid format '%s'. Use 'csv', 'xlsx', or 'json'.", format))
	}
}

// Offerings handles GET /api/offerings with exact-match filters and an
// optional format=csv|json export.
func (h *DatasetHandler) Offerings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}

	snapshot, err := h.Service.Snapshot()
	if err != nil {
		respondWithDatasetError(w, err)
		return
	}

	filtered := services.FilterOfferings(snapshot.Offerings, models.OfferingFilter{
		Sector:    r.URL.Query().Get("sector"),
		Localidad: r.URL.Query().Get("localidad"),
	})
	if filtered == nil {
		filtered = []models.CourseOffering{}
	}

	switch format := strings.ToLower(r.URL.Query().Get("format")); format {
	case "":
		respondWithJSON(w, http.StatusOK, filtered)
	case "csv":
		data, err := export.OfferingsCSV(filtered)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to export offerings: %v", err))
			return
		}
		respondWithDownload(w, export.ContentTypeCSV, "cursos.csv", data)
	case "json":
		data, err := export.OfferingsJSON(filtered)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to export offerings: %v", err))
			return
		}
		respondWithDownload(w, export.ContentTypeJSON, "cursos.json", data)
	default:
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid format '%s'. Use 'csv' or 'json'.", format))
	}
}

// Teachers handles GET /api/teachers, the raw teacher assignment listing.
func (h *DatasetHandler) Teachers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}

	snapshot, err := h.Service.Snapshot()
	if err != nil {
		respondWithDatasetError(w, err)
		return
	}

	teachers := snapshot.Teachers
	if teachers == nil {
		teachers = []models.TeacherAssignment{}
	}
	respondWithJSON(w, http.StatusOK, teachers)
}

func respondWithDatasetError(w http.ResponseWriter, err error) {
	if errors.Is(err, services.ErrDatasetUnavailable) {
		respondWithError(w, http.StatusServiceUnavailable, "Datasets not loaded yet, try again later")
		return
	}
	respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Dataset error: %v", err))
}
