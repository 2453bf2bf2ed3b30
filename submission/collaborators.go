package submission

import "context"

// UploadResult is what the object store returns for a stored file.
type UploadResult struct {
	Location string `json:"location"`
}

// ObjectStore accepts one file per call. Any failure is an upload error for
// that item, whatever the cause.
type ObjectStore interface {
	Upload(ctx context.Context, file RawFile) (UploadResult, error)
}

// Subcategory is one entry of a category's subcategory list.
type Subcategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Category is one catalog entry.
type Category struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Subcategories []Subcategory `json:"subcategories"`
}

// Catalog lists the categories a product can be filed under.
type Catalog interface {
	List(ctx context.Context) ([]Category, error)
}

// SizeEntry is one row of a product's size chart.
type SizeEntry struct {
	Label string `json:"label"`
	Stock int    `json:"stock"`
}

// Payload is the product record sent to the product service.
type Payload struct {
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	OriginalPrice   float64     `json:"originalPrice"`
	DiscountPrice   float64     `json:"discountPrice"`
	DiscountPercent int64       `json:"discountPercent"`
	Stock           int         `json:"stock"`
	Brand           string      `json:"brand"`
	Category        string      `json:"category"`
	Subcategory     string      `json:"subcategory"`
	Colors          []string    `json:"colors"`
	SizeChart       []SizeEntry `json:"sizeChart"`
	Images          []string    `json:"images"`
}

// Product is a stored product as the product service returns it.
type Product struct {
	ID string `json:"id"`
	Payload
}

// ProductService persists product records.
type ProductService interface {
	Get(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, payload Payload) (*Product, error)
	Update(ctx context.Context, id string, payload Payload) (*Product, error)
}
