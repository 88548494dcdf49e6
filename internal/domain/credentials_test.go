package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStudentNumber(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantMsg string
	}{
		{"valid ascii", "123456789", "123456789", ""},
		{"valid persian", "۱۲۳۴۵۶۷۸۹", "123456789", ""},
		{"valid with separators", "123-456 789", "123456789", ""},
		{"too short", "12345678", "", "شماره دانشجویی باید ۹ رقم باشد"},
		{"too long", "1234567890", "", "شماره دانشجویی باید ۹ رقم باشد"},
		{"non digit", "12345678x", "", "شماره دانشجویی باید ۹ رقم باشد"},
		{"empty", "", "", "شماره دانشجویی الزامی است"},
		{"only separators", " -_()", "", "شماره دانشجویی الزامی است"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateStudentNumber(tt.in)
			if tt.wantMsg != "" {
				require.Error(t, err)
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "student_number", verr.Field)
				assert.Equal(t, tt.wantMsg, verr.Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateNationalCode(t *testing.T) {
	got, err := ValidateNationalCode("۰۱۲۳۴۵۶۷۸۹")
	require.NoError(t, err)
	assert.Equal(t, "0123456789", got)

	_, err = ValidateNationalCode("012345678")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "کد ملی باید ۱۰ رقم باشد", verr.Message)

	// non-digit content gets the dedicated invalid message, not the
	// length one
	_, err = ValidateNationalCode("01234x6789")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "کد ملی معتبر نیست", verr.Message)

	_, err = ValidateNationalCode("")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "کد ملی الزامی است", verr.Message)
}

func TestValidatePhoneNumber(t *testing.T) {
	got, err := ValidatePhoneNumber("0912-345 6789")
	require.NoError(t, err)
	assert.Equal(t, "09123456789", got)

	_, err = ValidatePhoneNumber("0912345678")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "شماره تماس باید ۱۱ رقم باشد", verr.Message)
}

func TestParseGender(t *testing.T) {
	for in, want := range map[string]Gender{
		"sister":  GenderSister,
		"SISTER":  GenderSister,
		"خواهر":   GenderSister,
		"brother": GenderBrother,
		" برادر ": GenderBrother,
		"Brother": GenderBrother,
	} {
		got, err := ParseGender(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got)
	}

	_, err := ParseGender("other")
	require.Error(t, err)
	_, err = ParseGender("")
	require.Error(t, err)
}

func TestRegisterRequestValidate(t *testing.T) {
	req := RegisterRequest{
		FirstName:     "  علی ",
		LastName:      "رضایی",
		StudentNumber: "۴۰۴۳۷۰۰۴۴",
		NationalCode:  "3200261196",
		PhoneNumber:   "0912 345 6789",
		Gender:        "برادر",
	}
	req.Normalize()
	require.NoError(t, req.Validate())
	assert.Equal(t, "علی", req.FirstName)
	assert.Equal(t, "404370044", req.StudentNumber)
	assert.Equal(t, "3200261196", req.NationalCode)
	assert.Equal(t, "09123456789", req.PhoneNumber)
	assert.Equal(t, "brother", req.Gender)
}

func TestRegisterRequestValidateNameLength(t *testing.T) {
	req := RegisterRequest{
		FirstName:     "ع",
		LastName:      "رضایی",
		StudentNumber: "404370044",
		NationalCode:  "3200261196",
		PhoneNumber:   "09123456789",
		Gender:        "sister",
	}
	err := req.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "first_name", verr.Field)
}
