// backend/handlers/equivalence_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dir-tecno/capacita/backend/database"
	"github.com/dir-tecno/capacita/backend/export"
	"github.com/dir-tecno/capacita/backend/models"
	"github.com/dir-tecno/capacita/backend/services"
)

// actingUser reads the staff user from the X-User header. Authentication
// itself happens upstream; "sistema" is the fallback attribution.
func actingUser(r *http.Request) string {
	if user := strings.TrimSpace(r.Header.Get("X-User")); user != "" {
		return user
	}
	return "sistema"
}

// EquivalenceHandler exposes the equivalence workflow over HTTP.
type EquivalenceHandler struct {
	Service *services.EquivalenceService
}

// Collection handles /api/equivalences:
//   - GET lists ACTIVO equivalences (query: course, certification, sector,
//     from, until as YYYY-MM-DD; format=csv for a download)
//   - POST submits a batch creation request
func (h *EquivalenceHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.submit(w, r)
	default:
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET and POST methods are allowed")
	}
}

func (h *EquivalenceHandler) list(w http.ResponseWriter, r *http.Request) {
	filter := models.EquivalenceFilter{
		CourseContains:        r.URL.Query().Get("course"),
		CertificationContains: r.URL.Query().Get("certification"),
		Sector:                r.URL.Query().Get("sector"),
	}

	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid date format for 'from'. Use YYYY-MM-DD. Error: "+err.Error())
			return
		}
		filter.CreatedFrom = &t
	}
	if until := r.URL.Query().Get("until"); until != "" {
		t, err := time.Parse("2006-01-02", until)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid date format for 'until'. Use YYYY-MM-DD. Error: "+err.Error())
			return
		}
		// Make the range inclusive of the whole day.
		t = t.Add(24*time.Hour - time.Second)
		filter.CreatedUntil = &t
	}

	equivalences, err := h.Service.ListActive(filter)
	if err != nil {
		respondWithStoreError(w, err, "Failed to list equivalences")
		return
	}
	if equivalences == nil { // Ensure we always return an array for JSON, even if empty
		equivalences = []models.Equivalence{}
	}

	if strings.EqualFold(r.URL.Query().Get("format"), "csv") {
		data, err := export.EquivalencesCSV(equivalences)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to export equivalences: %v", err))
			return
		}
		respondWithDownload(w, export.ContentTypeCSV, "equivalencias.csv", data)
		return
	}

	respondWithJSON(w, http.StatusOK, equivalences)
}

func (h *EquivalenceHandler) submit(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitEquivalencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	log.Printf("Handler: Received equivalence submission: %d courses -> %q\n", len(req.Courses), req.Certification)

	report, err := h.Service.Submit(req, actingUser(r))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRequest):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, database.ErrNotFound):
			respondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, database.ErrStorageUnavailable):
			respondWithError(w, http.StatusServiceUnavailable, "Database unavailable, try again later")
		default:
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to submit equivalences: %v", err))
		}
		return
	}

	respondWithJSON(w, http.StatusOK, report)
}

// Item handles /api/equivalences/{id}:
//   - GET returns one equivalence in any estado
//   - DELETE deactivates it (audited soft-delete; the row survives)
func (h *EquivalenceHandler) Item(w http.ResponseWriter, r *http.Request) {
	pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	// Expected path: api/equivalences/{id}
	if len(pathParts) < 3 {
		respondWithError(w, http.StatusBadRequest, "Invalid path. Expected /api/equivalences/{id}")
		return
	}
	id, err := strconv.ParseInt(pathParts[2], 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid equivalence id: "+pathParts[2])
		return
	}

	switch r.Method {
	case http.MethodGet:
		eq, err := h.Service.Get(id)
		if err != nil {
			respondWithStoreError(w, err, "Failed to get equivalence")
			return
		}
		respondWithJSON(w, http.StatusOK, eq)
	case http.MethodDelete:
		if err := h.Service.Deactivate(id, actingUser(r)); err != nil {
			if errors.Is(err, services.ErrInvalidRequest) {
				respondWithError(w, http.StatusBadRequest, err.Error())
				return
			}
			respondWithStoreError(w, err, "Failed to deactivate equivalence")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET and DELETE methods are allowed")
	}
}

// respondWithStoreError maps store errors onto the API's status codes.
func respondWithStoreError(w http.ResponseWriter, err error, context string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrStorageUnavailable):
		respondWithError(w, http.StatusServiceUnavailable, "Database unavailable, try again later")
	default:
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("%s: %v", context, err))
	}
}
