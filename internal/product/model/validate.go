package model

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	perrors "github.com/abgdnv/cloudshop/internal/product/errors"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Field messages reported for an invalid import record.
const (
	MsgTitleRequired       = "title is required"
	MsgDescriptionRequired = "description is required"
	MsgPriceInvalid        = "price must be a positive number"
	MsgCountInvalid        = "count must be a non-negative number"
)

var fieldMessages = map[string]string{
	"title":       MsgTitleRequired,
	"description": MsgDescriptionRequired,
	"price":       MsgPriceInvalid,
	"count":       MsgCountInvalid,
}

// importPayload keeps every field optional so a missing field can be told apart from a zero value.
type importPayload struct {
	Title       *string  `json:"title"       validate:"required,notblank"`
	Description *string  `json:"description" validate:"required,notblank"`
	Price       *float64 `json:"price"       validate:"required,gt=0"`
	Count       *int64   `json:"count"       validate:"required,gte=0"`
}

// NewValidator returns a validator that reports json field names and knows the notblank tag.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var recordValidator = NewValidator()

// DecodeImportRecord parses and validates one queue message body.
// The returned error is a *errors.ValidationError naming the first offending field.
func DecodeImportRecord(body []byte) (ImportRecord, error) {
	var p importPayload
	if err := json.Unmarshal(body, &p); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			if msg, ok := fieldMessages[typeErr.Field]; ok {
				return ImportRecord{}, perrors.NewValidationError(msg)
			}
		}
		return ImportRecord{}, perrors.NewValidationError("invalid record: " + err.Error())
	}
	if err := recordValidator.Struct(p); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			return ImportRecord{}, perrors.NewValidationError(fieldMessages[validationErrors[0].Field()])
		}
		return ImportRecord{}, perrors.NewValidationError("invalid record: " + err.Error())
	}
	return ImportRecord{
		Title:       *p.Title,
		Description: *p.Description,
		Price:       *p.Price,
		Count:       *p.Count,
	}, nil
}
