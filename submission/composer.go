package submission

import "github.com/shopspring/decimal"

// Compose builds the product payload from a validated snapshot. Unknown
// category or subcategory ids resolve to empty names. Only uploaded images
// are included, in draft order.
func Compose(s Snapshot, categories []Category) Payload {
	var original, discount float64
	if s.OriginalPrice != nil {
		original = *s.OriginalPrice
	}
	if s.DiscountPrice != nil {
		discount = *s.DiscountPrice
	}
	var stock int
	if s.Stock != nil {
		stock = *s.Stock
	}

	var categoryName, subcategoryName string
	if cat, ok := findCategory(categories, s.CategoryID); ok {
		categoryName = cat.Name
		if sub, ok := findSubcategory(cat.Subcategories, s.SubcategoryID); ok {
			subcategoryName = sub.Name
		}
	}

	images := make([]string, 0, len(s.Items))
	for _, it := range s.Items {
		if it.Status == StatusUploaded {
			images = append(images, it.RemoteIdentity)
		}
	}

	colors := s.Colors
	if colors == nil {
		colors = []string{}
	}
	sizes := s.SizeChart
	if sizes == nil {
		sizes = []SizeEntry{}
	}

	return Payload{
		Name:            s.Name,
		Description:     s.Description,
		OriginalPrice:   original,
		DiscountPrice:   discount,
		DiscountPercent: DiscountPercent(original, discount),
		Stock:           stock,
		Brand:           s.Brand,
		Category:        categoryName,
		Subcategory:     subcategoryName,
		Colors:          colors,
		SizeChart:       sizes,
		Images:          images,
	}
}

// DiscountPercent returns round((original-discount)/original*100), or 0 when
// there is no discount or the original price is not positive.
func DiscountPercent(original, discount float64) int64 {
	o := decimal.NewFromFloat(original)
	d := decimal.NewFromFloat(discount)
	if !o.IsPositive() || d.GreaterThanOrEqual(o) {
		return 0
	}
	return o.Sub(d).Div(o).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
