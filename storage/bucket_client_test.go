// backend/storage/bucket_client_test.go
package storage

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dir-tecno/capacita/backend/config"
)

func TestBucketClientDownload(t *testing.T) {
	payload := []byte("parquet-bytes")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/object/CBAMECAPACITA/ALUMNOS_X_LOCALIDAD.parquet", r.URL.Path)
		assert.Equal(t, "Bearer secret-key", r.Header.Get("Authorization"))
		w.Write(payload)
	}))
	defer server.Close()

	client := NewBucketClient(config.StorageConfig{
		BaseURL:    server.URL,
		ServiceKey: "secret-key",
	})

	data, err := client.Download("CBAMECAPACITA", "ALUMNOS_X_LOCALIDAD.parquet")
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestBucketClientDownloadNonOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewBucketClient(config.StorageConfig{BaseURL: server.URL})

	_, err := client.Download("CBAMECAPACITA", "missing.parquet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestBucketClientListObjects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/object/list/CBAMECAPACITA", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name": "ALUMNOS_X_LOCALIDAD.parquet", "updated_at": "2025-08-20T12:00:00Z"}]`))
	}))
	defer server.Close()

	client := NewBucketClient(config.StorageConfig{BaseURL: server.URL, ServiceKey: "secret-key"})

	objects, err := client.ListObjects("CBAMECAPACITA")
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "ALUMNOS_X_LOCALIDAD.parquet", objects[0].Name)
	require.NotNil(t, objects[0].UpdatedAt)
}
