package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SupabaseClient is a minimal Supabase Storage REST client covering the
// object upload surface this API needs.
type SupabaseClient struct {
	projectURL string
	serviceKey string
	httpClient *http.Client
}

// NewSupabaseClient builds a client for the given project. projectURL is the
// project root, e.g. https://xyz.supabase.co.
func NewSupabaseClient(projectURL, serviceKey string) *SupabaseClient {
	return &SupabaseClient{
		projectURL: projectURL,
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload writes an object into a bucket, overwriting any existing object at
// the same path, and returns its public URL.
func (c *SupabaseClient) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error) {
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.projectURL, bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	return c.PublicURL(bucket, path), nil
}

// PublicURL returns the public download URL for an object. Buckets used by
// this API are public.
func (c *SupabaseClient) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.projectURL, bucket, path)
}
