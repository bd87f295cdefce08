package firebase

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"resultscrawler/internal/ports"
)

const storageEndpoint = "https://firebasestorage.googleapis.com/v0/b"

// BlobStore uploads objects into a Firebase storage bucket.
type BlobStore struct {
	http     *resty.Client
	endpoint string
	bucket   string
	token    string
}

var _ ports.BlobStore = (*BlobStore)(nil)

func NewBlobStore(client *resty.Client, bucket, token string) *BlobStore {
	if client == nil {
		client = resty.New().SetTimeout(60 * time.Second)
	}
	return &BlobStore{http: client, endpoint: storageEndpoint, bucket: bucket, token: token}
}

// Upload writes data at the object path with the given content type. Quota
// exhaustion surfaces as an error response here; the caller's upload stage
// decides the batch-stopping policy.
func (b *BlobStore) Upload(ctx context.Context, path, contentType string, data []byte) error {
	uploadURL := fmt.Sprintf("%s/%s/o?uploadType=media&name=%s",
		b.endpoint, b.bucket, url.QueryEscape(path))

	req := b.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(data)
	if b.token != "" {
		req.SetAuthToken(b.token)
	}

	resp, err := req.Post(uploadURL)
	if err != nil {
		return fmt.Errorf("upload %s: %w", path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("upload %s: storage returned %s", path, resp.Status())
	}
	return nil
}
