package submission

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func waitTerminal(t *testing.T, d *Draft) {
	t.Helper()
	require.Eventually(t, func() bool {
		for _, s := range statuses(d) {
			if !s.IsTerminal() {
				return false
			}
		}
		return true
	}, waitFor, tick)
}

func TestSubmitRefusedWhileUploading(t *testing.T) {
	store := &scriptedStore{gate: make(chan struct{})}
	d := newTestDraft(t, store)
	validFields(d)
	products := new(mockProductService)

	_, err := d.Admit(files("a.jpg", "b.jpg"))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return store.Active() == 1 }, waitFor, tick)

	_, err = Submit(context.Background(), d, products)
	assert.ErrorIs(t, err, ErrUploadsInProgress)

	store.gate <- struct{}{}
	require.Eventually(t, func() bool { return statuses(d)[0] == StatusUploaded }, waitFor, tick)

	_, err = Submit(context.Background(), d, products)
	assert.ErrorIs(t, err, ErrUploadsInProgress, "one uploaded image is not enough while another is pending")

	store.gate <- struct{}{}
	products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmitRefusedWhenAllImagesFailed(t *testing.T) {
	store := &scriptedStore{fail: map[string]bool{"1.jpg": true, "2.jpg": true, "3.jpg": true, "4.jpg": true, "5.jpg": true}}
	d := newTestDraft(t, store)
	validFields(d)
	products := new(mockProductService)

	_, err := d.Admit(files("1.jpg", "2.jpg", "3.jpg", "4.jpg", "5.jpg"))
	require.NoError(t, err)
	waitTerminal(t, d)

	_, err = Submit(context.Background(), d, products)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, ImagesKey)
	assert.Len(t, verr.Fields, 1)
}

func TestSubmitSkipsFailedImages(t *testing.T) {
	store := &scriptedStore{fail: map[string]bool{"2.jpg": true}}
	d := newTestDraft(t, store)
	validFields(d)
	products := new(mockProductService)

	_, err := d.Admit(files("1.jpg", "2.jpg", "3.jpg"))
	require.NoError(t, err)
	waitTerminal(t, d)

	products.On("Create", mock.Anything, mock.MatchedBy(func(p Payload) bool {
		return assert.ObjectsAreEqual([]string{"https://cdn.test/1.jpg", "https://cdn.test/3.jpg"}, p.Images) &&
			p.Category == "Apparel" && p.Subcategory == "Shirts" && p.DiscountPercent == 10
	})).Return(&Product{ID: "42"}, nil)

	product, err := Submit(context.Background(), d, products)
	require.NoError(t, err)
	assert.Equal(t, "42", product.ID)
	products.AssertExpectations(t)
}

func TestSubmitUpdatesExistingProduct(t *testing.T) {
	d := newTestDraft(t, &scriptedStore{})
	d.load(&Product{ID: "7", Payload: Payload{
		Name: "Desk lamp", Description: "Warm light", Brand: "Glow",
		OriginalPrice: 40, DiscountPrice: 30, Stock: 9,
		Category: "Electronics", Images: []string{"https://cdn.test/lamp.jpg"},
	}})
	products := new(mockProductService)
	products.On("Update", mock.Anything, "7", mock.MatchedBy(func(p Payload) bool {
		return p.Category == "Electronics" && p.DiscountPercent == 25 && len(p.Images) == 1
	})).Return(&Product{ID: "7"}, nil)

	_, err := Submit(context.Background(), d, products)
	require.NoError(t, err)
	products.AssertExpectations(t)
	products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmitFailureLeavesDraftUntouched(t *testing.T) {
	d := newTestDraft(t, &scriptedStore{})
	validFields(d)
	_, err := d.Admit(files("1.jpg"))
	require.NoError(t, err)
	waitTerminal(t, d)
	before := d.Snapshot()

	products := new(mockProductService)
	products.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("503 service unavailable")).Once()

	_, err = Submit(context.Background(), d, products)
	var serr *SubmissionError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "create", serr.Op)
	assert.Equal(t, before, d.Snapshot())

	products.On("Create", mock.Anything, mock.Anything).Return(&Product{ID: "1"}, nil).Once()
	_, err = Submit(context.Background(), d, products)
	assert.NoError(t, err)
}

func TestSubmitReportsFieldErrors(t *testing.T) {
	d := newTestDraft(t, &scriptedStore{})
	_, err := d.Admit(files("1.jpg"))
	require.NoError(t, err)
	waitTerminal(t, d)

	_, err = Submit(context.Background(), d, new(mockProductService))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.NotContains(t, verr.Fields, ImagesKey)
}

func TestSubmitSucceedsOnce(t *testing.T) {
	d := newTestDraft(t, &scriptedStore{})
	validFields(d)
	products := new(mockProductService)
	products.On("Create", mock.Anything, mock.Anything).Return(&Product{ID: "7"}, nil)

	_, err := d.Admit(files("a.jpg"))
	require.NoError(t, err)
	waitTerminal(t, d)

	_, err = Submit(context.Background(), d, products)
	require.NoError(t, err)
	_, err = Submit(context.Background(), d, products)
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	products.AssertNumberOfCalls(t, "Create", 1)
}
