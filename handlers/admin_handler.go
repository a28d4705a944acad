// backend/handlers/admin_handler.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/dir-tecno/capacita/backend/config"
	"github.com/dir-tecno/capacita/backend/services"
	"github.com/dir-tecno/capacita/backend/storage"
)

// AdminHandler exposes the maintenance endpoints.
type AdminHandler struct {
	Datasets *services.DatasetService
	Bucket   *storage.BucketClient
}

// RefreshDatasets handles POST /api/admin/refresh-datasets: re-downloads the
// student extract and the hub CSVs, replacing the in-memory snapshot.
func (h *AdminHandler) RefreshDatasets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	if err := h.Datasets.Refresh(); err != nil {
		respondWithError(w, http.StatusBadGateway, fmt.Sprintf("Failed to refresh datasets: %v", err))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Dataset refresh completed successfully."})
}

// ListBucket handles GET /api/admin/bucket: lists the objects currently
// published in the storage bucket, for troubleshooting stale extracts.
func (h *AdminHandler) ListBucket(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}

	objects, err := h.Bucket.ListObjects(config.AppConfig.Storage.Bucket)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, fmt.Sprintf("Failed to list bucket: %v", err))
		return
	}
	if objects == nil {
		objects = []storage.ObjectInfo{}
	}
	respondWithJSON(w, http.StatusOK, objects)
}
