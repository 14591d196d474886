package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Validation constants
	MaxCountryLength = 100
	MaxRecordsLimit  = 1000
	MaxTopN          = 500

	// Country names are letters in any script plus the punctuation found in
	// official names ("Côte d'Ivoire", "Guinea-Bissau", "St. Lucia").
	countryPattern = regexp.MustCompile(`^[\p{L}\p{M}][\p{L}\p{M}0-9 .,'()&-]*$`)
)

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("country", func(fl validator.FieldLevel) bool {
		return ValidateCountry(fl.Field().String()) == nil
	})
}

// CountryRequest names a single country
type CountryRequest struct {
	Country string `json:"country" validate:"required,country"`
}

// CompareRequest names the two countries of a bilateral comparison
type CompareRequest struct {
	A string `json:"a" validate:"required,country"`
	B string `json:"b" validate:"required,country,nefield=A"`
}

// RecordsRequest bounds a raw record listing
type RecordsRequest struct {
	Limit int `json:"limit" validate:"min=1,max=1000"`
}

// NetworkRequest carries the tunable parameters of a network analysis
type NetworkRequest struct {
	TopN          int     `json:"top_n" validate:"min=1,max=500"`
	MaxIterations int     `json:"max_iterations" validate:"min=1,max=100000"`
	Tolerance     float64 `json:"tolerance" validate:"gt=0,lt=1"`
	WeightPolicy  string  `json:"weight_policy" validate:"oneof=distance inverse"`
	MaxPasses     int     `json:"max_passes" validate:"min=1,max=10000"`
}

// Struct validates any value carrying validate tags
func Struct(v any) error {
	if v == nil {
		return errors.New("request cannot be nil")
	}
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateCountryRequest validates a country lookup
func ValidateCountryRequest(req *CountryRequest) error {
	if req == nil {
		return errors.New("country request cannot be nil")
	}
	req.Country = strings.TrimSpace(req.Country)
	return Struct(req)
}

// ValidateCompareRequest validates a bilateral comparison
func ValidateCompareRequest(req *CompareRequest) error {
	if req == nil {
		return errors.New("compare request cannot be nil")
	}
	req.A, req.B = strings.TrimSpace(req.A), strings.TrimSpace(req.B)
	return Struct(req)
}

// ValidateNetworkRequest validates analysis parameters
func ValidateNetworkRequest(req *NetworkRequest) error {
	if req == nil {
		return errors.New("network request cannot be nil")
	}
	return Struct(req)
}

// ValidateCountry validates a country identifier
func ValidateCountry(country string) error {
	if country == "" {
		return errors.New("country cannot be empty")
	}
	if len(country) > MaxCountryLength {
		return fmt.Errorf("country exceeds maximum length of %d characters", MaxCountryLength)
	}
	if !countryPattern.MatchString(country) {
		return fmt.Errorf("country '%s' contains invalid characters", country)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		param := e.Param()

		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "gt":
			return fmt.Errorf("%s: must be greater than %s", field, param)
		case "lt":
			return fmt.Errorf("%s: must be less than %s", field, param)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s]", field, param)
		case "nefield":
			return fmt.Errorf("%s: must differ from %s", field, param)
		case "country":
			return fmt.Errorf("%s: invalid country name", field)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}

	return err
}
