// backend/handlers/catalog_handler.go
package handlers

import (
	"net/http"

	"github.com/dir-tecno/capacita/backend/database"
	"github.com/dir-tecno/capacita/backend/models"
)

// CatalogHandler serves the read-only reference catalogs the equivalence
// screens browse: historical courses and current certifications.
type CatalogHandler struct {
	Store *database.CatalogStore
}

// Courses handles GET /api/courses?q=...&sector=...
func (h *CatalogHandler) Courses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}

	courses, err := h.Store.ListHistoricalCourses(models.CourseCatalogFilter{
		NameContains: r.URL.Query().Get("q"),
		Sector:       r.URL.Query().Get("sector"),
	})
	if err != nil {
		respondWithStoreError(w, err, "Failed to list historical courses")
		return
	}
	if courses == nil {
		courses = []models.HistoricalCourse{}
	}
	respondWithJSON(w, http.StatusOK, courses)
}

// Certifications handles GET /api/certifications?q=...&place=...
func (h *CatalogHandler) Certifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}

	certifications, err := h.Store.ListCertifications(models.CertificationCatalogFilter{
		NameContains: r.URL.Query().Get("q"),
		Place:        r.URL.Query().Get("place"),
	})
	if err != nil {
		respondWithStoreError(w, err, "Failed to list certifications")
		return
	}
	if certifications == nil {
		certifications = []models.Certification{}
	}
	respondWithJSON(w, http.StatusOK, certifications)
}
