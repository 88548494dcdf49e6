package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Role names known to the portal.
const (
	RoleUser      = "user"
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

type Role struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// User is the login entity. Its password hash is always derived from the
// student number at registration time.
type User struct {
	ID            int64           `json:"id"`
	StudentNumber string          `json:"student_number"`
	PasswordHash  string          `json:"-"`
	Role          string          `json:"role"`
	IsActive      bool            `json:"is_active"`
	Profile       *StudentProfile `json:"profile,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// StudentProfile holds the registrant's identity details. HasAuthenticated
// is the single-use flag: it flips false→true exactly once, on the first
// login that completes the token-issuing flow, and is never reset.
type StudentProfile struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	NationalCode     string    `json:"national_code"`
	StudentNumber    string    `json:"student_number"`
	PhoneNumber      string    `json:"phone_number"`
	Gender           Gender    `json:"gender"`
	Address          string    `json:"address,omitempty"`
	HasAuthenticated bool      `json:"has_authenticated"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type RegisterRequest struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	StudentNumber string `json:"student_number"`
	NationalCode  string `json:"national_code"`
	PhoneNumber   string `json:"phone_number"`
	Gender        string `json:"gender"`
	Address       string `json:"address,omitempty"`
}

// Normalize trims free-text fields. Digit fields are normalized inside
// Validate because their normalization is part of validation.
func (r *RegisterRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Address = strings.TrimSpace(r.Address)
}

// Validate checks every field and rewrites the digit fields and gender
// with their canonical forms.
func (r *RegisterRequest) Validate() error {
	if err := validateName("first_name", r.FirstName); err != nil {
		return err
	}
	if err := validateName("last_name", r.LastName); err != nil {
		return err
	}

	studentNumber, err := ValidateStudentNumber(r.StudentNumber)
	if err != nil {
		return err
	}
	nationalCode, err := ValidateNationalCode(r.NationalCode)
	if err != nil {
		return err
	}
	phoneNumber, err := ValidatePhoneNumber(r.PhoneNumber)
	if err != nil {
		return err
	}
	gender, err := ParseGender(r.Gender)
	if err != nil {
		return err
	}

	r.StudentNumber = studentNumber
	r.NationalCode = nationalCode
	r.PhoneNumber = phoneNumber
	r.Gender = string(gender)
	return nil
}

func validateName(field, value string) error {
	n := utf8.RuneCountInString(value)
	if n < 2 || n > 50 {
		return NewValidationError(field, field+" must be between 2 and 50 characters")
	}
	return nil
}

type LoginRequest struct {
	NationalCode string `json:"national_code"`
	Password     string `json:"password"`
}

type AdminLoginRequest struct {
	Password string `json:"password"`
}

// Token is the success payload for every token-issuing flow.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type RegisterResponse struct {
	Message       string `json:"message"`
	UserID        int64  `json:"user_id"`
	StudentNumber string `json:"student_number"`
	Role          string `json:"role"`
}

// UserInfo is the public projection of a User.
type UserInfo struct {
	ID            int64  `json:"id"`
	StudentNumber string `json:"student_number"`
	Role          string `json:"role"`
	IsActive      bool   `json:"is_active"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	NationalCode  string `json:"national_code,omitempty"`
	PhoneNumber   string `json:"phone_number,omitempty"`
	Gender        string `json:"gender,omitempty"`
}

// ToUserInfo strips the password hash and internal fields.
func (u *User) ToUserInfo() *UserInfo {
	info := &UserInfo{
		ID:            u.ID,
		StudentNumber: u.StudentNumber,
		Role:          u.Role,
		IsActive:      u.IsActive,
	}
	if u.Profile != nil {
		info.FirstName = u.Profile.FirstName
		info.LastName = u.Profile.LastName
		info.NationalCode = u.Profile.NationalCode
		info.PhoneNumber = u.Profile.PhoneNumber
		info.Gender = string(u.Profile.Gender)
	}
	return info
}
