// Package val validates use case inputs with go-playground/validator.
package val

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

//nolint:gochecknoglobals // validator caches struct metadata and is safe for concurrent use
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(getTagName)
		_ = validate.RegisterValidation("bucket_name", isBucketName)
	})
	return validate
}

// getTagName reports fields by their json, then query name, falling back to the Go name.
func getTagName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "query"} {
		name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return fld.Name
}

// isBucketName accepts 3-63 lowercase letters, digits, dots, hyphens and
// underscores, starting and ending with a letter or digit. Underscores are
// valid for GCS buckets.
func isBucketName(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) < 3 || len(s) > 63 {
		return false
	}
	for i, r := range s {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if (i == 0 || i == len(s)-1) && !alnum {
			return false
		}
		if !alnum && r != '-' && r != '.' && r != '_' {
			return false
		}
	}
	return true
}
