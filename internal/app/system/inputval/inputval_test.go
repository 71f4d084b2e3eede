package inputval

import (
	"errors"
	"net/http"
	"testing"

	"github.com/dalemusser/campushub/internal/app/system/apierr"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"user.name@imail.sunway.edu.my", true},
		{"user+tag@example.com", true},
		{"a@b.co", true},
		{"user@localhost", true},

		{"", false},
		{"   ", false},
		{"user", false},
		{"user@", false},
		{"@example.com", false},
		{".user@example.com", false},
		{"user.@example.com", false},
		{"user..name@example.com", false},
		{"user@.example.com", false},
		{"user@example..com", false},
		{"User Name <user@example.com>", false},
		{"user @example.com", false},
		{"user@exam ple.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestIsValidHTTPURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"http://example.com", true},
		{"https://example.com/path?query=1", true},
		{"  https://example.com  ", true},
		{"", false},
		{"ftp://example.com", false},
		{"example.com", false},
		{"//example.com", false},
		{"not a url", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := IsValidHTTPURL(tt.url); got != tt.want {
				t.Errorf("IsValidHTTPURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestIsValidObjectID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"507f1f77bcf86cd799439011", true},
		{"  507f1f77bcf86cd799439011  ", true},
		{"", false},
		{"507f1f77bcf86cd79943901", false},
		{"507f1f77bcf86cd79943901g", false},
		{"event-1", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := IsValidObjectID(tt.id); got != tt.want {
				t.Errorf("IsValidObjectID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestIsAssignableRole(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{"User", true},
		{"moderator", true},
		{"Admin", false},
		{"", false},
		{"owner", false},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			if got := IsAssignableRole(tt.role); got != tt.want {
				t.Errorf("IsAssignableRole(%q) = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	type TestInput struct {
		Name     string `json:"name" validate:"required,max=10" label:"Full name"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"omitempty,password"`
	}

	tests := []struct {
		name      string
		input     TestInput
		wantFirst string
	}{
		{"valid input", TestInput{Name: "John", Email: "john@example.com"}, ""},
		{"missing name", TestInput{Email: "john@example.com"}, "Full name is required."},
		{"name too long", TestInput{Name: "VeryLongNameThatExceedsLimit", Email: "john@example.com"}, "Full name must be at most 10 characters."},
		{"invalid email", TestInput{Name: "John", Email: "not-an-email"}, "A valid email address is required."},
		{"json name fallback", TestInput{Name: "John"}, "email is required."},
		{"weak password", TestInput{Name: "John", Email: "john@example.com", Password: "weakpass1"}, "Password must contain at least one uppercase letter."},
		{"missing both", TestInput{}, "Full name is required."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input)

			if result.HasErrors() != (tt.wantFirst != "") {
				t.Fatalf("HasErrors = %v, errors: %v", result.HasErrors(), result.Errors)
			}
			if result.First() != tt.wantFirst {
				t.Errorf("First() = %q, want %q", result.First(), tt.wantFirst)
			}
		})
	}
}

func TestValidate_CustomRules(t *testing.T) {
	type Input struct {
		Title string `validate:"notblank" label:"Title"`
		Role  string `validate:"assignablerole" label:"Role"`
		Image string `validate:"omitempty,httpurl" label:"Image"`
	}

	tests := []struct {
		name    string
		input   Input
		wantTag string
	}{
		{"valid", Input{Title: "x", Role: "Moderator", Image: "https://cdn.example/x.png"}, ""},
		{"blank title", Input{Title: "   ", Role: "User"}, "notblank"},
		{"admin role", Input{Title: "x", Role: "Admin"}, "assignablerole"},
		{"bad image", Input{Title: "x", Role: "User", Image: "x.png"}, "httpurl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Validate(tt.input)
			if tt.wantTag == "" {
				if r.HasErrors() {
					t.Errorf("unexpected errors: %v", r.Errors)
				}
				return
			}
			if !r.HasErrors() || r.Errors[0].Tag != tt.wantTag {
				t.Errorf("errors = %v, want first tag %q", r.Errors, tt.wantTag)
			}
		})
	}
}

func TestResult_AllAndErr(t *testing.T) {
	empty := &Result{}
	if empty.All() != "" || empty.First() != "" || empty.Err() != nil {
		t.Error("expected empty result to report nothing")
	}

	r := &Result{Errors: []FieldError{{Message: "Error 1"}, {Message: "Error 2"}}}
	if r.All() != "Error 1; Error 2" {
		t.Errorf("All() = %q", r.All())
	}

	var ae *apierr.Error
	if err := r.Err(); !errors.As(err, &ae) || ae.Status() != http.StatusBadRequest || ae.Message != "Error 1" {
		t.Errorf("Err() = %v, want 400 validation error with first message", err)
	}
}
