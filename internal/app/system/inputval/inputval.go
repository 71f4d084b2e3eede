// Package inputval validates decoded request bodies with struct tags.
//
// Field names in messages come from the label tag, falling back to the
// json name and then the Go field name:
//
//	Username string `json:"username" validate:"required,max=50" label:"Username"`
package inputval

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/dalemusser/campushub/internal/app/system/apierr"
	"github.com/dalemusser/campushub/internal/app/system/authutil"
	"github.com/dalemusser/campushub/internal/app/system/normalize"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldError is one failed rule, already rendered for display.
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

// Result collects the failures from Validate.
type Result struct {
	Errors []FieldError
}

func (r *Result) HasErrors() bool { return r != nil && len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if !r.HasErrors() {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	if !r.HasErrors() {
		return ""
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Err returns the first failure as a validation error, or nil.
func (r *Result) Err() error {
	if !r.HasErrors() {
		return nil
	}
	return apierr.Validation("%s", r.First())
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
			if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name != "" && name != "-" {
				return name
			}
			return f.Name
		})
		mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		mustRegister(v, "password", func(fl validator.FieldLevel) bool {
			return authutil.ValidatePassword(fl.Field().String()) == nil
		})
		mustRegister(v, "assignablerole", func(fl validator.FieldLevel) bool {
			return IsAssignableRole(fl.Field().String())
		})
		mustRegister(v, "httpurl", func(fl validator.FieldLevel) bool {
			return IsValidHTTPURL(fl.Field().String())
		})
		mustRegister(v, "objectid", func(fl validator.FieldLevel) bool {
			return IsValidObjectID(fl.Field().String())
		})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("inputval: register %s: %v", tag, err))
	}
}

// Validate runs the validate tags on s, which must be a struct or pointer to one.
func Validate(s any) *Result {
	err := instance().Struct(s)
	if err == nil {
		return &Result{}
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &Result{Errors: []FieldError{{Message: "Invalid input."}}}
	}
	out := &Result{Errors: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Errors = append(out.Errors, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return label + " is required."
	case "email":
		return "A valid email address is required."
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at most %s entries.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at least %s entries.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "password":
		if s, ok := fe.Value().(string); ok {
			if err := authutil.ValidatePassword(s); err != nil {
				return capitalize(err.Error()) + "."
			}
		}
		return authutil.PasswordRules() + "."
	case "assignablerole":
		return label + " must be User or Moderator."
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "httpurl":
		return label + " must be a valid http(s) URL."
	case "objectid":
		return label + " is not a valid ID."
	}
	return label + " is invalid."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// IsValidEmail reports whether s is a bare addr-spec (no display name) with
// well-formed dot-separated local and domain parts.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	a, err := mail.ParseAddress(s)
	if err != nil || a.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	for _, part := range []string{s[:at], s[at+1:]} {
		if part == "" || strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") || strings.Contains(part, "..") {
			return false
		}
	}
	return true
}

// IsAssignableRole reports whether role may be granted through the role
// change endpoint. Admin is reserved for the admins collection.
func IsAssignableRole(role string) bool {
	switch normalize.Role(role) {
	case "User", "Moderator":
		return true
	}
	return false
}

// IsValidHTTPURL reports whether s is an absolute http or https URL.
func IsValidHTTPURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsValidObjectID reports whether s is a 24-character hex ObjectID.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	return err == nil
}
