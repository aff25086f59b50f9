package scope

import (
	"github.com/go-playground/validator/v10"
)

// Validator tags registered by RegisterValidators.
const (
	TagResourceID = "gcp_id"
	TagScope      = "gcp_scope"
	TagLocation   = "gcp_location"
	TagAssetType  = "gcp_asset_type"
	TagEventName  = "gcp_event"
)

// RegisterValidators installs the identifier allow-lists as validator tags so
// tool inputs can be checked with struct tags.
func RegisterValidators(v *validator.Validate) error {
	fns := map[string]validator.Func{
		TagResourceID: func(fl validator.FieldLevel) bool { return ValidID(fl.Field().String()) },
		TagScope: func(fl validator.FieldLevel) bool {
			_, err := Parse(fl.Field().String())
			return err == nil
		},
		TagLocation:  func(fl validator.FieldLevel) bool { return ValidLocation(fl.Field().String()) },
		TagAssetType: func(fl validator.FieldLevel) bool { return ValidAssetType(fl.Field().String()) },
		TagEventName: func(fl validator.FieldLevel) bool {
			_, err := ParseEventName(fl.Field().String())
			return err == nil
		},
	}
	for tag, fn := range fns {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// NewValidator returns a validator with the scope tags installed.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := RegisterValidators(v); err != nil {
		panic(err)
	}
	return v
}
