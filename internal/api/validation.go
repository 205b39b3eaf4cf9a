package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// report json names, not Go field names
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// ValidateStruct runs the validate tags of v and converts failures into *types.ValidationError.
func ValidateStruct(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	out := &types.ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, types.FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
		})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "min":
		return "must contain at least " + fe.Param() + " item(s)"
	case "gtefield":
		return "must not be before " + fe.Param()
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// ParseTripRequest converts the wizard payload into a TripRequest. Only the date format is
// checked here; the remaining invariants are enforced by ValidateStruct.
func ParseTripRequest(p types.TripRequestPayload) (types.TripRequest, error) {
	var fields []types.FieldError
	parse := func(name, value string) time.Time {
		if value == "" {
			return time.Time{}
		}
		d, err := time.Parse(types.DateLayout, value)
		if err != nil {
			fields = append(fields, types.FieldError{Field: name, Message: "must be a date formatted YYYY-MM-DD"})
		}
		return d
	}
	start := parse("startDate", p.StartDate)
	end := parse("endDate", p.EndDate)
	if len(fields) > 0 {
		return types.TripRequest{}, &types.ValidationError{Fields: fields}
	}

	interests := make([]string, 0, len(p.Interests))
	for _, i := range p.Interests {
		interests = append(interests, strings.TrimSpace(i))
	}
	return types.TripRequest{
		Country:   strings.TrimSpace(p.Country),
		City:      strings.TrimSpace(p.City),
		StartDate: start,
		EndDate:   end,
		Budget:    p.Budget,
		Persons:   p.Persons,
		Interests: interests,
	}, nil
}
