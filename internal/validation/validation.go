// Package validation registers the tags shared by API request bodies and imported framework files.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Enum is implemented by the string enums in models.
type Enum interface {
	Valid() bool
}

// embedded prefixes the name of an embedded struct so fieldPath can leave it out.
const embedded = "~"

// Register installs the "enum" tag on v and reports fields by their json, form or yaml
// name. Fields tagged enum must implement Enum.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(fieldName)
	return v.RegisterValidation("enum", validateEnum)
}

func fieldName(fld reflect.StructField) string {
	if fld.Anonymous {
		return embedded + fld.Name
	}
	for _, key := range []string{"json", "form", "yaml"} {
		name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return "-"
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

func validateEnum(fl validator.FieldLevel) bool {
	field := fl.Field()
	if !field.CanInterface() {
		return false
	}
	if e, ok := field.Interface().(Enum); ok {
		return e.Valid()
	}
	return false
}

// New returns a validator reading `binding` tags, the same tags gin validates.
func New() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	if err := Register(v); err != nil {
		panic(err)
	}
	return v
}

// Messages flattens validator errors into one readable line per field.
// Errors of any other kind yield their own message.
func Messages(err error) []string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "enum":
		return fmt.Sprintf("%s has invalid value %q", field, fmt.Sprint(fe.Value()))
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "ltefield":
		return fmt.Sprintf("%s must not exceed %s", field, lowerFirst(fe.Param()))
	case "url":
		return field + " must be a valid URL"
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}

// fieldPath drops the root struct name: "riskRequest.Likelihood" -> "likelihood".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	parts := make([]string, 0, strings.Count(ns, ".")+1)
	for _, p := range strings.Split(ns, ".") {
		if strings.HasPrefix(p, embedded) {
			continue
		}
		parts = append(parts, lowerFirst(p))
	}
	return strings.Join(parts, ".")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
