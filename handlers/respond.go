// backend/handlers/respond.go
package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

// Shared JSON/download helpers for all handlers.

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Handler ERROR: Marshalling JSON response: %v", err)
		http.Error(w, `{"error":"Failed to marshal JSON response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	log.Printf("Handler API Error %d: %s", code, message)
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithDownload serves a byte payload as a file attachment.
func respondWithDownload(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
