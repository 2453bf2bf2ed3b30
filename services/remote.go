package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Kariqs/amexan-portal/submission"
	"github.com/go-resty/resty/v2"
)

var (
	_ submission.ProductService = (*RemoteProducts)(nil)
	_ submission.Catalog        = (*RemoteCatalog)(nil)
)

func newRestClient(baseURL, token string, timeout time.Duration) *resty.Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if token != "" {
		client.SetAuthToken(token)
	}
	return client
}

// RemoteProducts talks to a product API exposing /product and /product/:id.
type RemoteProducts struct {
	client *resty.Client
}

func NewRemoteProducts(baseURL, token string, timeout time.Duration) *RemoteProducts {
	return &RemoteProducts{client: newRestClient(baseURL, token, timeout)}
}

func (r *RemoteProducts) Get(ctx context.Context, id string) (*submission.Product, error) {
	var product submission.Product
	resp, err := r.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(&product).
		Get("/product/{id}")
	if err != nil {
		return nil, fmt.Errorf("product request failed: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, ErrProductNotFound
	}
	if resp.IsError() {
		return nil, fmt.Errorf("product request failed with status %d: %s", resp.StatusCode(), resp.String())
	}
	return &product, nil
}

func (r *RemoteProducts) Create(ctx context.Context, payload submission.Payload) (*submission.Product, error) {
	return r.send(ctx, http.MethodPost, "/product", payload)
}

func (r *RemoteProducts) Update(ctx context.Context, id string, payload submission.Payload) (*submission.Product, error) {
	return r.send(ctx, http.MethodPut, "/product/"+id, payload)
}

func (r *RemoteProducts) send(ctx context.Context, method, path string, payload submission.Payload) (*submission.Product, error) {
	var product submission.Product
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&product).
		Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("product request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("product service returned status %d: %s", resp.StatusCode(), resp.String())
	}
	return &product, nil
}

// RemoteCatalog reads categories from GET /categories of a remote API.
type RemoteCatalog struct {
	client *resty.Client
}

func NewRemoteCatalog(baseURL, token string, timeout time.Duration) *RemoteCatalog {
	return &RemoteCatalog{client: newRestClient(baseURL, token, timeout)}
}

func (r *RemoteCatalog) List(ctx context.Context) ([]submission.Category, error) {
	var body struct {
		Categories []submission.Category `json:"categories"`
	}
	resp, err := r.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get("/categories")
	if err != nil {
		return nil, fmt.Errorf("category request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("category request failed with status %d: %s", resp.StatusCode(), resp.String())
	}
	return body.Categories, nil
}
