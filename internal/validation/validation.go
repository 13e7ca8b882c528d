// Package validation implements the form gate used before forward navigation.
package validation

import (
	"regexp"
	"strings"
)

// PhonePattern matches a 10-digit phone number.
var PhonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// Field describes one form input.
type Field struct {
	Name     string
	Value    string
	Required bool
	Pattern  *regexp.Regexp
}

// Result is the outcome of a gate evaluation. Invalid lists failing field
// names in input order.
type Result struct {
	OK      bool
	Invalid []string
}

// Check reports whether a single field passes. Emptiness ignores
// surrounding whitespace; the pattern sees the value as typed.
func (f Field) Check() bool {
	if strings.TrimSpace(f.Value) == "" {
		return !f.Required
	}
	if f.Pattern != nil && !f.Pattern.MatchString(f.Value) {
		return false
	}
	return true
}

// Validate evaluates every field; it never stops at the first failure so all
// failing inputs can be flagged at once.
func Validate(fields []Field) Result {
	res := Result{OK: true}
	for _, f := range fields {
		if !f.Check() {
			res.OK = false
			res.Invalid = append(res.Invalid, f.Name)
		}
	}
	return res
}

// RegisterFields builds the registration form descriptor.
func RegisterFields(username, phone string) []Field {
	return []Field{
		{Name: "username", Value: username, Required: true},
		{Name: "phone_number", Value: phone, Required: true, Pattern: PhonePattern},
	}
}

// FamilyFields builds the add-family-member form descriptor.
func FamilyFields(name, phone, relationship string) []Field {
	return []Field{
		{Name: "name", Value: name, Required: true},
		{Name: "phone_number", Value: phone, Required: true, Pattern: PhonePattern},
		{Name: "relationship", Value: relationship, Required: true},
	}
}
