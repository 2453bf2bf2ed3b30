package submission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T {
	return &v
}

func validSnapshot() Snapshot {
	return Snapshot{
		Fields: Fields{
			Name:          "Linen shirt",
			Description:   "Breathable",
			OriginalPrice: ptr(100.0),
			DiscountPrice: ptr(90.0),
			Stock:         ptr(3),
			Brand:         "Amexan",
			CategoryID:    "cat-apparel",
		},
		Items: []ImageItem{{LocalID: "1", Status: StatusUploaded, RemoteIdentity: "https://cdn.test/1.jpg"}},
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid draft has no errors", func(t *testing.T) {
		assert.True(t, Validate(validSnapshot()).Valid())
	})

	t.Run("reports every missing field at once", func(t *testing.T) {
		result := Validate(Snapshot{})
		for _, key := range []string{"name", "description", "originalPrice", "discountPrice", "stock", "brand", "categoryId", ImagesKey} {
			assert.Contains(t, result, key)
		}
		assert.Equal(t, "Product name is required", result["name"])
		assert.NotContains(t, result, "subcategoryId")
	})

	t.Run("blank strings are missing", func(t *testing.T) {
		s := validSnapshot()
		s.Name = "   "
		s.Brand = "\t"
		result := Validate(s)
		assert.Equal(t, "Product name is required", result["name"])
		assert.Equal(t, "Brand is required", result["brand"])
		assert.Len(t, result, 2)
	})

	t.Run("discount above original attaches to discount price", func(t *testing.T) {
		s := validSnapshot()
		s.DiscountPrice = ptr(120.0)
		result := Validate(s)
		assert.Len(t, result, 1)
		assert.Contains(t, result["discountPrice"], "cannot be higher")
	})

	t.Run("discount equal to original is allowed", func(t *testing.T) {
		s := validSnapshot()
		s.DiscountPrice = ptr(100.0)
		assert.True(t, Validate(s).Valid())
	})

	t.Run("negative numbers are rejected", func(t *testing.T) {
		s := validSnapshot()
		s.Stock = ptr(-1)
		assert.Equal(t, "Stock cannot be negative", Validate(s)["stock"])
	})

	t.Run("needs an uploaded image even with five failed ones", func(t *testing.T) {
		s := validSnapshot()
		s.Items = nil
		for i := 0; i < MaxImages; i++ {
			s.Items = append(s.Items, ImageItem{Status: StatusError})
		}
		result := Validate(s)
		assert.Len(t, result, 1)
		assert.Contains(t, result, ImagesKey)
	})
}
