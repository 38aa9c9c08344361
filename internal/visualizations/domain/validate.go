package domain

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// TagPattern is the shape of a single tag: name, name:value or
// dotted.name:value.
const TagPattern = `^([^\s.:])+(\.[^\s.:]+)*(:\S+)?$`

var (
	tagRegexp = regexp.MustCompile(TagPattern)
	validate  = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("tagitem", func(fl validator.FieldLevel) bool {
		return tagRegexp.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// checkConstraints runs the struct's validate tags and appends violations
// for fields that did not already fail coercion.
func (r *fieldReader) checkConstraints(v any) {
	err := validate.Struct(v)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		r.fail("__root__", "invalid", err.Error(), nil)
		return
	}
	for _, fe := range verrs {
		field := fe.Field()
		if r.failed[baseField(field)] {
			continue
		}
		typ, msg := describeConstraint(fe)
		r.errs = append(r.errs, FieldError{Field: field, Type: typ, Message: msg, Input: fe.Value()})
	}
}

func describeConstraint(fe validator.FieldError) (string, string) {
	switch fe.Tag() {
	case "oneof":
		opts := strings.Fields(fe.Param())
		quoted := make([]string, len(opts))
		for i, o := range opts {
			quoted[i] = "'" + o + "'"
		}
		return "enum", "Input should be " + joinOr(quoted)
	case "lt":
		return "less_than", fmt.Sprintf("Input should be less than %s", fe.Param())
	case "eq":
		return "literal_error", fmt.Sprintf("Input should be '%s'", fe.Param())
	case "tagitem":
		return "string_pattern_mismatch", fmt.Sprintf("String should match pattern '%s'", TagPattern)
	}
	return fe.Tag(), fe.Error()
}

func joinOr(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " or " + items[len(items)-1]
}

// result finalizes a construction: it reports unknown fields for strict
// schemas and orders the collected errors.
func (r *fieldReader) result(spec SchemaSpec) error {
	if !spec.AllowUnknownFields {
		for _, k := range spec.unknownKeys(r.raw) {
			r.fail(k, "extra_forbidden", "Extra inputs are not permitted", r.raw[k])
		}
	}
	if len(r.errs) == 0 {
		return nil
	}
	spec.sortErrors(r.errs)
	return &ValidationError{Schema: spec.Name, Errors: r.errs}
}
