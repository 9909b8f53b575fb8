package config

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// ErrInvalid marks configuration that fails validation
var ErrInvalid = errors.New("invalid configuration")

// team identifiers are URL path segments such as "leinster" or "stade-toulousain"
var teamSlugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("teamslug", func(fl validator.FieldLevel) bool {
			return teamSlugRe.MatchString(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// Validate checks the merged config. All problems are reported together.
func (c *Config) Validate() error {
	err := validatorInstance().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "validating config")
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, describe(fe))
	}
	return errors.Mark(errors.Newf("%s", strings.Join(problems, "; ")), ErrInvalid)
}

func describe(fe validator.FieldError) string {
	// drop the leading "Config." namespace
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must not be empty"
	case "gte":
		return field + " must be at least " + fe.Param()
	case "lte":
		return field + " must be at most " + fe.Param()
	case "gt":
		return field + " must be greater than " + fe.Param()
	case "contains":
		return field + " must contain " + fe.Param()
	case "timezone":
		return field + " is not a known time zone"
	case "teamslug":
		return field + " is not a valid team identifier"
	default:
		return field + " failed " + fe.Tag()
	}
}
