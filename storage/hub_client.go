// backend/storage/hub_client.go
package storage

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dir-tecno/capacita/backend/config"
)

// HubClient downloads dataset files from the dataset-hub repository
// (https://<hub>/datasets/<repo>/resolve/main/<filename>) into a local cache
// directory, returning the local path.
type HubClient struct {
	baseURL    string
	token      string
	cacheDir   string
	httpClient *http.Client
}

func NewHubClient(cfg config.DatasetHubConfig) *HubClient {
	return &HubClient{
		baseURL:  cfg.BaseURL,
		token:    cfg.Token,
		cacheDir: cfg.CacheDir,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Download fetches one dataset file and saves it under the cache directory.
// It returns the local path of the downloaded file or an error.
func (c *HubClient) Download(repoID, filename string) (string, error) {
	url := fmt.Sprintf("%s/datasets/%s/resolve/main/%s", c.baseURL, repoID, filename)
	localSavePath := filepath.Join(c.cacheDir, filename)
	log.Printf("Storage: Downloading dataset file %s from %s to %s...\n", filename, repoID, localSavePath)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make GET request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download %s from %s: received status code %d", filename, repoID, resp.StatusCode)
	}

	// Ensure the directory for the local save path exists
	if err := os.MkdirAll(filepath.Dir(localSavePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", filepath.Dir(localSavePath), err)
	}

	outFile, err := os.Create(localSavePath)
	if err != nil {
		return "", fmt.Errorf("failed to create local file %s: %w", localSavePath, err)
	}
	defer outFile.Close()

	if _, err := io.Copy(outFile, resp.Body); err != nil {
		return "", fmt.Errorf("failed to copy downloaded content to %s: %w", localSavePath, err)
	}

	log.Printf("Storage: Successfully downloaded %s to %s\n", filename, localSavePath)
	return localSavePath, nil
}
