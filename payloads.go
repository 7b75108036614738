package memberhub

import (
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/nyaruka/phonenumbers"
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	namePattern     = regexp.MustCompile(`^[^0-9]*$`)
	phonePattern    = regexp.MustCompile(`^[6-9]\d{9}$`)
)

// phoneRegion is the region used for carrier-aware phone validation.
const phoneRegion = "IN"

// LoginRequest payload
type LoginRequest struct {
	Username string `json:"userName"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// SignupRequest is the create-member payload.
type SignupRequest struct {
	Username    string   `json:"userName"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	PhoneNumber string   `json:"phoneNumber"`
	Role        UserRole `json:"role"`
}

// Validate will validate the payload
func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Username,
			validation.Required,
			validation.Length(3, 20),
			validation.Match(usernamePattern),
		),
		validation.Field(
			&r.Name,
			validation.Required,
			validation.Length(3, 25),
			validation.Match(namePattern),
		),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(
			&r.PhoneNumber,
			validation.Required,
			validation.Match(phonePattern),
			validation.By(ValidateMobileNumber),
		),
		validation.Field(
			&r.Role,
			validation.Required,
			validation.In(RoleUser, RoleAdmin),
		),
	)
}

// MemberUpdateRequest is the editable subset of a member record.
type MemberUpdateRequest struct {
	Name        string   `json:"name,omitempty"`
	Email       string   `json:"email,omitempty"`
	PhoneNumber string   `json:"phoneNumber,omitempty"`
	Role        UserRole `json:"role,omitempty"`
}

// Validate will validate the payload
func (r MemberUpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Name,
			validation.Required,
			validation.Length(3, 25),
			validation.Match(namePattern),
		),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(
			&r.PhoneNumber,
			validation.Required,
			validation.Match(phonePattern),
			validation.By(ValidateMobileNumber),
		),
		validation.Field(
			&r.Role,
			validation.Required,
			validation.In(RoleUser, RoleAdmin),
		),
	)
}

// ChangePasswordRequest carries a voluntary or forced password change.
type ChangePasswordRequest struct {
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"-"`
}

// Validate enforces the form-level invariant that the new password and
// its confirmation match; the rule blocks submission, it never reaches
// the network.
func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OldPassword, validation.Required),
		validation.Field(
			&r.NewPassword,
			validation.Required,
			validation.Length(6, 100),
		),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.NewPassword)),
		),
	)
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("values must match")
		}
		return nil
	}
}

// ValidateMobileNumber checks the value against the carrier metadata for
// the configured region on top of the plain pattern match.
func ValidateMobileNumber(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	num, err := phonenumbers.Parse(s, phoneRegion)
	if err != nil {
		return errors.New("must be a valid mobile number")
	}

	if !phonenumbers.IsValidNumber(num) {
		return errors.New("must be a valid mobile number")
	}

	return nil
}

// FormatValidationErrorToMap flattens a validation error into a keyed
// field -> message map for form rendering.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for field, ferr := range verrs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}

	out["form"] = err.Error()
	return out
}
