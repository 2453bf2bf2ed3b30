package submission

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// scriptedStore uploads instantly, or blocks each call until gate yields
// when gate is set. Names listed in fail are rejected.
type scriptedStore struct {
	mu        sync.Mutex
	active    int
	maxActive int
	calls     []string
	fail      map[string]bool
	gate      chan struct{}
}

func (s *scriptedStore) Upload(ctx context.Context, f RawFile) (UploadResult, error) {
	s.mu.Lock()
	s.active++
	if s.active > s.maxActive {
		s.maxActive = s.active
	}
	s.calls = append(s.calls, f.Name)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.active--
		s.mu.Unlock()
	}()

	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return UploadResult{}, ctx.Err()
		}
	}
	if s.fail[f.Name] {
		return UploadResult{}, errors.New("gateway returned 500")
	}
	return UploadResult{Location: "https://cdn.test/" + f.Name}, nil
}

func (s *scriptedStore) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *scriptedStore) MaxActive() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxActive
}

func (s *scriptedStore) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

type recorder struct {
	mu     sync.Mutex
	events []Transition
}

func (r *recorder) observe(t Transition) {
	r.mu.Lock()
	r.events = append(r.events, t)
	r.mu.Unlock()
}

func (r *recorder) Events() []Transition {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Transition(nil), r.events...)
}

type mockProductService struct {
	mock.Mock
}

func (m *mockProductService) Get(ctx context.Context, id string) (*Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *mockProductService) Create(ctx context.Context, payload Payload) (*Product, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *mockProductService) Update(ctx context.Context, id string, payload Payload) (*Product, error) {
	args := m.Called(ctx, id, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

type staticCatalog []Category

func (c staticCatalog) List(ctx context.Context) ([]Category, error) {
	return c, nil
}

func testCategories() []Category {
	return []Category{
		{ID: "cat-apparel", Name: "Apparel", Subcategories: []Subcategory{
			{ID: "sub-shirts", Name: "Shirts"},
			{ID: "sub-shoes", Name: "Shoes"},
		}},
		{ID: "cat-electronics", Name: "Electronics", Subcategories: []Subcategory{
			{ID: "sub-phones", Name: "Phones"},
		}},
	}
}

func newTestDraft(t *testing.T, store ObjectStore, opts ...Option) *Draft {
	t.Helper()
	previews, err := NewPreviewManager(t.TempDir(), nil)
	require.NoError(t, err)
	d := NewDraft(store, previews, testCategories(), opts...)
	t.Cleanup(d.Close)
	return d
}

func files(names ...string) []RawFile {
	out := make([]RawFile, 0, len(names))
	for _, n := range names {
		out = append(out, RawFile{Name: n, ContentType: "image/jpeg", Data: []byte("data-" + n)})
	}
	return out
}

func statuses(d *Draft) []ItemStatus {
	snap := d.Snapshot()
	out := make([]ItemStatus, 0, len(snap.Items))
	for _, it := range snap.Items {
		out = append(out, it.Status)
	}
	return out
}

func validFields(d *Draft) {
	name, desc, brand := "Linen shirt", "Breathable summer shirt", "Amexan"
	orig, disc, stock := 100.0, 90.0, 12
	_ = d.SetFields(FieldsPatch{
		Name:          &name,
		Description:   &desc,
		Brand:         &brand,
		OriginalPrice: &orig,
		DiscountPrice: &disc,
		Stock:         &stock,
	})
	_ = d.SelectCategory("cat-apparel")
	_ = d.SelectSubcategory("sub-shirts")
}
