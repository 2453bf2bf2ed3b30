package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Kariqs/amexan-portal/submission"
	"github.com/go-resty/resty/v2"
)

var _ submission.ObjectStore = (*HTTPGateway)(nil)

// HTTPGateway posts each file to a remote upload endpoint that answers with
// {"location": "..."}.
type HTTPGateway struct {
	client *resty.Client
	path   string
}

// NewHTTPGateway creates a gateway for the upload endpoint at baseURL+path.
func NewHTTPGateway(baseURL, path, token string, timeout time.Duration) *HTTPGateway {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if token != "" {
		client.SetAuthToken(token)
	}
	return &HTTPGateway{client: client, path: path}
}

// Upload sends one file as multipart field "image". Any non-success status
// is an error.
func (g *HTTPGateway) Upload(ctx context.Context, file submission.RawFile) (submission.UploadResult, error) {
	var result submission.UploadResult
	resp, err := g.client.R().
		SetContext(ctx).
		SetMultipartField("image", file.Name, ContentType(file), bytes.NewReader(file.Data)).
		SetResult(&result).
		Post(g.path)
	if err != nil {
		return submission.UploadResult{}, fmt.Errorf("upload request failed: %w", err)
	}
	if resp.IsError() {
		return submission.UploadResult{}, fmt.Errorf("upload failed with status %d: %s", resp.StatusCode(), resp.String())
	}
	if result.Location == "" {
		return submission.UploadResult{}, errors.New("upload response has no location")
	}
	return result, nil
}
