package domain

import (
	"strconv"
	"strings"

	"github.com/arashmdn/student-portal/pkg/digits"
)

// Fixed digit lengths for the portal's credential classes.
const (
	StudentNumberLength = 9
	NationalCodeLength  = 10
	PhoneNumberLength   = 11
)

// Field names as they appear in user-facing validation messages.
const (
	fieldStudentNumber = "شماره دانشجویی"
	fieldNationalCode  = "کد ملی"
	fieldPhoneNumber   = "شماره تماس"
)

const msgNationalCodeInvalid = "کد ملی معتبر نیست"

// validateFixedDigits normalizes value and requires exactly length ASCII
// digits. Messages render the expected digit count in Persian glyphs.
// When invalidMessage is set, non-digit content after normalization gets
// that message instead of the length one.
func validateFixedDigits(value string, length int, field, fieldName, invalidMessage string) (string, error) {
	normalized := digits.Normalize(value)
	if normalized == "" {
		return "", NewValidationError(field, fieldName+" الزامی است")
	}

	lengthMsg := fieldName + " باید " + digits.ToPersian(strconv.Itoa(length)) + " رقم باشد"

	if !digits.IsASCIIDigits(normalized) {
		if invalidMessage != "" {
			return "", NewValidationError(field, invalidMessage)
		}
		return "", NewValidationError(field, lengthMsg)
	}
	if len(normalized) != length {
		return "", NewValidationError(field, lengthMsg)
	}
	return normalized, nil
}

// ValidateStudentNumber normalizes and validates a 9-digit student number.
func ValidateStudentNumber(value string) (string, error) {
	return validateFixedDigits(value, StudentNumberLength, "student_number", fieldStudentNumber, "")
}

// ValidateNationalCode normalizes and validates a 10-digit national code.
func ValidateNationalCode(value string) (string, error) {
	return validateFixedDigits(value, NationalCodeLength, "national_code", fieldNationalCode, msgNationalCodeInvalid)
}

// ValidatePhoneNumber normalizes and validates an 11-digit phone number.
func ValidatePhoneNumber(value string) (string, error) {
	return validateFixedDigits(value, PhoneNumberLength, "phone_number", fieldPhoneNumber, "")
}

// Gender is the closed enum stored on a profile.
type Gender string

const (
	GenderBrother Gender = "brother"
	GenderSister  Gender = "sister"
)

var genderVocabulary = map[string]Gender{
	"brother": GenderBrother,
	"برادر":   GenderBrother,
	"sister":  GenderSister,
	"خواهر":   GenderSister,
}

// ParseGender matches value case-insensitively against the bilingual
// gender vocabulary.
func ParseGender(value string) (Gender, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if g, ok := genderVocabulary[normalized]; ok {
		return g, nil
	}
	return "", NewValidationError("gender", "gender must be 'sister' or 'brother'")
}
