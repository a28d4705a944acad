// backend/storage/hub_client_test.go
package storage

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dir-tecno/capacita/backend/config"
)

func TestHubClientDownload(t *testing.T) {
	content := "N_CURSO,N_CERTIFICACION\nSoldadura,Oficios\n"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/datasets/Dir-Tecno/CBAMECAPACITA/resolve/main/VT_CURSOS_X_LOCALIDAD.csv", r.URL.Path)
		assert.Equal(t, "Bearer hub-token", r.Header.Get("Authorization"))
		w.Write([]byte(content))
	}))
	defer server.Close()

	cacheDir := t.TempDir()
	client := NewHubClient(config.DatasetHubConfig{
		BaseURL:  server.URL,
		Token:    "hub-token",
		CacheDir: cacheDir,
	})

	path, err := client.Download("Dir-Tecno/CBAMECAPACITA", "VT_CURSOS_X_LOCALIDAD.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cacheDir, "VT_CURSOS_X_LOCALIDAD.csv"), path)

	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(saved))
}

func TestHubClientDownloadAnonymous(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Public dataset repos need no Authorization header.
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte("data"))
	}))
	defer server.Close()

	client := NewHubClient(config.DatasetHubConfig{
		BaseURL:  server.URL,
		CacheDir: t.TempDir(),
	})

	_, err := client.Download("Dir-Tecno/CBAMECAPACITA", "VT_DOCENTES_X_CURSO.csv")
	require.NoError(t, err)
}

func TestHubClientDownloadNonOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewHubClient(config.DatasetHubConfig{
		BaseURL:  server.URL,
		CacheDir: t.TempDir(),
	})

	_, err := client.Download("Dir-Tecno/CBAMECAPACITA", "missing.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
