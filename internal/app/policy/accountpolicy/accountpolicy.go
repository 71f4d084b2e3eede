// Package accountpolicy holds the single rule set for account input.
//
// Rules:
//   - username, studentId, email, password and dob are required on registration
//   - the email must be a bare address in the configured campus domain
//   - the password needs 8+ characters, an uppercase letter and one of !@#$%^&*
package accountpolicy

import (
	"github.com/dalemusser/campushub/internal/app/system/apierr"
	"github.com/dalemusser/campushub/internal/app/system/authutil"
	"github.com/dalemusser/campushub/internal/app/system/inputval"
	"github.com/dalemusser/campushub/internal/app/system/normalize"
)

// Registration is the registration request body.
type Registration struct {
	Username  string `json:"username" validate:"notblank,max=50" label:"Username"`
	StudentID string `json:"studentId" validate:"notblank,max=32" label:"Student ID"`
	Email     string `json:"email" validate:"required,email" label:"Email"`
	Password  string `json:"password" validate:"required,password" label:"Password"`
	DOB       string `json:"dob" validate:"notblank" label:"Date of birth"`
}

// Policy carries the deployment-specific part of the rules.
type Policy struct {
	EmailDomain string // blank accepts any domain
}

// CheckRegistration normalizes in place and returns a validation error
// describing the first broken rule.
func (p Policy) CheckRegistration(in *Registration) error {
	in.Username = normalize.Name(in.Username)
	in.StudentID = normalize.Name(in.StudentID)
	in.Email = normalize.Email(in.Email)
	in.DOB = normalize.Name(in.DOB)

	if err := inputval.Validate(in).Err(); err != nil {
		return err
	}
	if !authutil.InDomain(in.Email, p.EmailDomain) {
		return apierr.Validation("Email must end with @%s", p.EmailDomain)
	}
	return nil
}

// ProfilePatch is the whitelist of fields a user may change on their own
// profile. Nil means "leave unchanged".
type ProfilePatch struct {
	Username    *string `json:"username" validate:"omitempty,notblank,max=50" label:"Username"`
	StudentID   *string `json:"studentId" validate:"omitempty,max=32" label:"Student ID"`
	DOB         *string `json:"dob"`
	Gender      *string `json:"gender" validate:"omitempty,max=32" label:"Gender"`
	Nationality *string `json:"nationality" validate:"omitempty,max=64" label:"Nationality"`
	Program     *string `json:"program" validate:"omitempty,max=128" label:"Program"`
	Intake      *string `json:"intake" validate:"omitempty,max=32" label:"Intake"`
}

// CheckProfile validates a profile patch.
func CheckProfile(p *ProfilePatch) error {
	return inputval.Validate(p).Err()
}

// RoleChange is the role change request body.
type RoleChange struct {
	Role string `json:"role" validate:"required,assignablerole" label:"Role"`
}

// CheckRoleChange validates the requested role and returns its canonical form.
func CheckRoleChange(in RoleChange) (string, error) {
	if err := inputval.Validate(in).Err(); err != nil {
		return "", err
	}
	return normalize.Role(in.Role), nil
}
