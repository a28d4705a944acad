// backend/storage/bucket_client.go
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/dir-tecno/capacita/backend/config"
)

// BucketClient downloads objects from the object-storage service that hosts
// the student extract. Authentication is a bearer service key on every
// request.
type BucketClient struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

func NewBucketClient(cfg config.StorageConfig) *BucketClient {
	return &BucketClient{
		baseURL:    cfg.BaseURL,
		serviceKey: cfg.ServiceKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second, // Sensible timeout for a file download
		},
	}
}

// Download fetches one object and returns its raw bytes.
func (c *BucketClient) Download(bucket, key string) ([]byte, error) {
	url := fmt.Sprintf("%s/object/%s/%s", c.baseURL, bucket, key)
	log.Printf("Storage: Downloading object %s/%s...\n", bucket, key)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download object %s/%s: %w", bucket, key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download object %s/%s: received status code %d", bucket, key, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body for %s/%s: %w", bucket, key, err)
	}

	log.Printf("Storage: Downloaded %s/%s (%d bytes).\n", bucket, key, len(data))
	return data, nil
}

// ObjectInfo is one entry from a bucket listing.
type ObjectInfo struct {
	Name      string     `json:"name"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// ListObjects lists the objects in a bucket. The storage API expects a POST
// with a JSON search body; an empty prefix lists everything.
func (c *BucketClient) ListObjects(bucket string) ([]ObjectInfo, error) {
	url := fmt.Sprintf("%s/object/list/%s", c.baseURL, bucket)

	body, err := json.Marshal(map[string]string{"prefix": ""})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal list request body: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build list request for bucket %s: %w", bucket, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list bucket %s: %w", bucket, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to list bucket %s: received status code %d", bucket, resp.StatusCode)
	}

	var objects []ObjectInfo
	if err := json.NewDecoder(resp.Body).Decode(&objects); err != nil {
		return nil, fmt.Errorf("failed to decode bucket listing for %s: %w", bucket, err)
	}

	log.Printf("Storage: Bucket %s contains %d objects.\n", bucket, len(objects))
	return objects, nil
}
