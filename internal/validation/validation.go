// Package validation checks product payloads before they reach the store.
package validation

import (
	"reflect"
	"strings"

	v10 "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"catalog/internal/models"
)

const (
	maxPriceIntegerDigits  = 10
	maxPriceFractionDigits = 2
)

// Violation describes why one field of a candidate was rejected.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Violations is the result of a validation run. Empty means acceptable.
type Violations []Violation

// Fields returns the violations keyed by field name.
func (vs Violations) Fields() map[string]string {
	out := make(map[string]string, len(vs))
	for _, v := range vs {
		out[v.Field] = v.Message
	}
	return out
}

// Has reports whether field has a violation.
func (vs Violations) Has(field string) bool {
	for _, v := range vs {
		if v.Field == field {
			return true
		}
	}
	return false
}

// messages maps "<field>.<tag>" to the text returned to clients.
var messages = map[string]string{
	"name.required":   "Product name is required",
	"name.notblank":   "Product name is required",
	"name.max":        "Product name must be at most 100 characters",
	"description.max": "Description must be at most 255 characters",
	"price.required":  "Price is required",
	"price.positive":  "Price must be greater than 0",
	"price.monetary":  "Price must be a valid monetary amount",
	"stock.required":  "Stock is required",
	"stock.min":       "Stock cannot be negative",
}

var validate = newValidator()

func newValidator() *v10.Validate {
	v := v10.New()
	v.RegisterTagNameFunc(jsonName)
	_ = v.RegisterValidation("notblank", notBlank)
	v.RegisterStructValidation(productPrice, models.ProductRequest{})
	return v
}

// Validator returns the shared validator, configured with the catalog's
// custom tags. Handlers use it for the auth payloads too.
func Validator() *v10.Validate {
	return validate
}

// ValidateProduct checks every field of candidate and collects all
// violations, at most one per field.
func ValidateProduct(candidate models.ProductRequest) Violations {
	err := validate.Struct(candidate)
	if err == nil {
		return nil
	}
	ve, ok := err.(v10.ValidationErrors)
	if !ok {
		return Violations{{Field: "", Message: err.Error()}}
	}

	out := make(Violations, 0, len(ve))
	for _, fe := range ve {
		field := fe.Field()
		if out.Has(field) {
			continue
		}
		msg, ok := messages[field+"."+fe.Tag()]
		if !ok {
			msg = fe.Error()
		}
		out = append(out, Violation{Field: field, Message: msg})
	}
	return out
}

func productPrice(sl v10.StructLevel) {
	req := sl.Current().Interface().(models.ProductRequest)
	switch {
	case req.Price == nil:
		sl.ReportError(req.Price, "price", "Price", "required", "")
	case req.Price.Sign() <= 0:
		sl.ReportError(req.Price, "price", "Price", "positive", "")
	case !IsMonetary(*req.Price):
		sl.ReportError(req.Price, "price", "Price", "monetary", "")
	}
}

// IsMonetary reports whether d fits in 10 integer and 2 fractional digits.
// Trailing fractional zeros are not significant.
func IsMonetary(d decimal.Decimal) bool {
	integer, fraction := digits(d)
	return integer <= maxPriceIntegerDigits && fraction <= maxPriceFractionDigits
}

func digits(d decimal.Decimal) (integer, fraction int) {
	// String drops trailing zeros and never uses exponent notation.
	intPart, fracPart, _ := strings.Cut(d.Abs().String(), ".")
	if intPart != "0" {
		integer = len(intPart)
	}
	return integer, len(fracPart)
}

func notBlank(fl v10.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return strings.ToLower(fld.Name)
	}
	return name
}
