package validation

import (
	"regexp"
	"slices"
	"testing"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		fields      []Field
		wantOK      bool
		wantInvalid []string
	}{
		{
			name:   "valid registration",
			fields: RegisterFields("asha", "9876543210"),
			wantOK: true,
		},
		{
			name:        "whitespace username",
			fields:      RegisterFields("   ", "9876543210"),
			wantInvalid: []string{"username"},
		},
		{
			name:        "short phone",
			fields:      RegisterFields("asha", "98765"),
			wantInvalid: []string{"phone_number"},
		},
		{
			name:        "all empty flags every field",
			fields:      RegisterFields("", ""),
			wantInvalid: []string{"username", "phone_number"},
		},
		{
			name: "optional empty field passes",
			fields: []Field{
				{Name: "note", Value: "", Pattern: regexp.MustCompile(`^x$`)},
			},
			wantOK: true,
		},
		{
			name: "optional field still checks pattern when filled",
			fields: []Field{
				{Name: "note", Value: "y", Pattern: regexp.MustCompile(`^x$`)},
			},
			wantInvalid: []string{"note"},
		},
		{
			name:        "family relationship required",
			fields:      FamilyFields("Ravi", "9876543210", ""),
			wantInvalid: []string{"relationship"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Validate(tt.fields)
			if got.OK != tt.wantOK {
				t.Errorf("OK = %v, want %v", got.OK, tt.wantOK)
			}
			if !slices.Equal(got.Invalid, tt.wantInvalid) {
				t.Errorf("Invalid = %v, want %v", got.Invalid, tt.wantInvalid)
			}
		})
	}
}

func TestField_PatternSeesRawValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		want  bool
	}{
		{"9876543210", true},
		{" 9876543210", false},
		{"9876543210 ", false},
		{"   ", false},
	}
	for _, tt := range tests {
		f := Field{Name: "phone_number", Value: tt.value, Required: true, Pattern: PhonePattern}
		if got := f.Check(); got != tt.want {
			t.Errorf("Check(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
