package submission

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ImagesKey is the ValidationResult key for the image-readiness rule.
const ImagesKey = "images"

// ValidationResult maps a field name to its error message. An empty result
// means the draft is valid.
type ValidationResult map[string]string

// Valid reports whether no rule failed.
func (r ValidationResult) Valid() bool {
	return len(r) == 0
}

var fieldLabels = map[string]string{
	"name":          "Product name",
	"description":   "Description",
	"originalPrice": "Original price",
	"discountPrice": "Discount price",
	"stock":         "Stock",
	"brand":         "Brand",
	"categoryId":    "Category",
}

var (
	validateOnce sync.Once
	fieldRules   *validator.Validate
)

func rules() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		fieldRules = v
	})
	return fieldRules
}

// Validate checks every rule and returns all failures at once.
func Validate(s Snapshot) ValidationResult {
	result := ValidationResult{}

	if err := rules().Struct(s.Fields); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			result["form"] = err.Error()
		}
		for _, fe := range fieldErrs {
			result[fe.Field()] = fieldMessage(fe)
		}
	}

	if s.OriginalPrice != nil && s.DiscountPrice != nil {
		if _, taken := result["discountPrice"]; !taken &&
			decimal.NewFromFloat(*s.DiscountPrice).GreaterThan(decimal.NewFromFloat(*s.OriginalPrice)) {
			result["discountPrice"] = "Discount price cannot be higher than the original price"
		}
	}

	if !hasUploaded(s.Items) {
		result[ImagesKey] = "At least one image must finish uploading"
	}

	return result
}

func fieldMessage(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required", "notblank":
		return label + " is required"
	case "gte":
		return label + " cannot be negative"
	default:
		return label + " is invalid"
	}
}

func hasUploaded(items []ImageItem) bool {
	for _, it := range items {
		if it.Status == StatusUploaded {
			return true
		}
	}
	return false
}

func hasInFlight(items []ImageItem) bool {
	for _, it := range items {
		if it.Status.InFlight() {
			return true
		}
	}
	return false
}
