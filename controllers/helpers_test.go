package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/Kariqs/amexan-portal/services"
	"github.com/Kariqs/amexan-portal/submission"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 0x49, 0x48, 0x44, 0x52}

var testCategories = []submission.Category{
	{ID: "1", Name: "Apparel", Subcategories: []submission.Subcategory{{ID: "10", Name: "Shirts"}, {ID: "11", Name: "Shoes"}}},
	{ID: "2", Name: "Electronics", Subcategories: []submission.Subcategory{{ID: "20", Name: "Phones"}}},
}

type staticCatalog []submission.Category

func (c staticCatalog) List(context.Context) ([]submission.Category, error) {
	return c, nil
}

// instantStore uploads immediately unless a gate is set, in which case every
// upload waits for the gate to close.
type instantStore struct {
	gate chan struct{}
	fail bool
}

func (s *instantStore) Upload(ctx context.Context, f submission.RawFile) (submission.UploadResult, error) {
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return submission.UploadResult{}, ctx.Err()
		}
	}
	if s.fail {
		return submission.UploadResult{}, errors.New("bucket unavailable")
	}
	return submission.UploadResult{Location: "https://cdn.test/" + f.Name}, nil
}

// memoryProducts is an in-memory product repository.
type memoryProducts struct {
	mu       sync.Mutex
	next     int
	products map[string]submission.Product
	failWith error
	delay    time.Duration
	creates  int
}

func newMemoryProducts() *memoryProducts {
	return &memoryProducts{products: make(map[string]submission.Product)}
}

func (m *memoryProducts) List(_ context.Context, page, limit int, _ string) (*services.ProductPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := &services.ProductPage{Total: int64(len(m.products)), Page: page, Limit: limit}
	for i := 1; i <= m.next; i++ {
		if p, ok := m.products[strconv.Itoa(i)]; ok {
			out.Products = append(out.Products, p)
		}
	}
	return out, nil
}

func (m *memoryProducts) Get(_ context.Context, id string) (*submission.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, services.ErrProductNotFound
	}
	return &p, nil
}

func (m *memoryProducts) Create(_ context.Context, payload submission.Payload) (*submission.Product, error) {
	time.Sleep(m.delay)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.next++
	m.creates++
	p := submission.Product{ID: strconv.Itoa(m.next), Payload: payload}
	m.products[p.ID] = p
	return &p, nil
}

func (m *memoryProducts) Update(_ context.Context, id string, payload submission.Payload) (*submission.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	if _, ok := m.products[id]; !ok {
		return nil, services.ErrProductNotFound
	}
	p := submission.Product{ID: id, Payload: payload}
	m.products[id] = p
	return &p, nil
}

type draftEnv struct {
	router   *gin.Engine
	registry *submission.Registry
	products *memoryProducts
}

func newDraftEnv(t *testing.T, store submission.ObjectStore) *draftEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	products := newMemoryProducts()
	registry := submission.NewRegistry(submission.RegistryConfig{
		PreviewRoot: t.TempDir(),
		IdleTimeout: time.Hour,
	}, store, staticCatalog(testCategories), products, nil)
	t.Cleanup(registry.Close)

	router := gin.New()
	c := NewDraftController(registry, 1<<20, nil)
	drafts := router.Group("/drafts")
	drafts.POST("", c.OpenDraft)
	drafts.POST("/edit/:productId", c.EditProduct)
	drafts.GET("/:id", c.GetDraft)
	drafts.PATCH("/:id", c.UpdateFields)
	drafts.DELETE("/:id", c.DiscardDraft)
	drafts.PUT("/:id/category", c.SelectCategory)
	drafts.PUT("/:id/subcategory", c.SelectSubcategory)
	drafts.POST("/:id/images", c.AddImages)
	drafts.DELETE("/:id/images/:localId", c.RemoveImage)
	drafts.GET("/:id/previews/:handle", c.GetPreview)
	drafts.POST("/:id/submit", c.SubmitDraft)

	return &draftEnv{router: router, registry: registry, products: products}
}

func (e *draftEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *draftEnv) upload(t *testing.T, path string, files map[string][]byte, order ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := multipartRequest(t, path, "images", files, order...)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func multipartRequest(t *testing.T, path, field string, files map[string][]byte, order ...string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, name := range order {
		part, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write(files[name])
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

type itemView struct {
	LocalID        string `json:"localId"`
	Status         string `json:"status"`
	RemoteIdentity string `json:"remoteIdentity"`
	Preview        struct {
		ID     string `json:"id"`
		Remote bool   `json:"remote"`
	} `json:"preview"`
}

type draftView struct {
	Draft struct {
		ID            string                   `json:"id"`
		ProductID     string                   `json:"productId"`
		Name          string                   `json:"name"`
		CategoryID    string                   `json:"categoryId"`
		SubcategoryID string                   `json:"subcategoryId"`
		Subcategories []submission.Subcategory `json:"subcategories"`
		Items         []itemView               `json:"items"`
	} `json:"draft"`
	Categories []submission.Category `json:"categories"`
	Notices    []submission.Notice   `json:"notices"`
}

func decodeDraft(t *testing.T, w *httptest.ResponseRecorder) draftView {
	t.Helper()
	var v draftView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func validFields() gin.H {
	return gin.H{
		"name":          "Linen shirt",
		"description":   "Breathable",
		"originalPrice": 100,
		"discountPrice": 90,
		"stock":         5,
		"brand":         "Amexan",
		"colors":        []string{"white", "navy"},
	}
}

func (m *memoryProducts) Creates() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creates
}
