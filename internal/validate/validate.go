// Package validate holds the structural policy for account fields. Every check
// is pure: nothing here touches storage.
package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	NameMin     = 2
	NameMax     = 50
	PasswordMin = 8
	// PasswordMaxBytes is bcrypt's input limit; longer inputs would be truncated.
	PasswordMaxBytes = 72

	// PasswordSpecials is the set a password must draw at least one character from.
	PasswordSpecials = "@$!%*?&#^()_+-="
)

var emailRe = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z]{2,})+$")

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string { // error interface
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

// Messages returns the user-facing messages in field order.
func (e Errs) Messages() []string {
	out := make([]string, 0, len(e))
	for _, ef := range e {
		out = append(out, ef.Msg)
	}
	return out
}

func Required(field, label, value string) *ErrField {
	if strings.TrimSpace(value) == "" {
		return &ErrField{Field: field, Msg: label + " is required."}
	}
	return nil
}

// NormalizeEmail trims and lowercases an address before comparison or storage.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func Name(s string) Errs {
	if ef := Required("name", "Name", s); ef != nil {
		return Errs{*ef}
	}
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	switch {
	case n < NameMin:
		return Errs{{Field: "name", Msg: "Name must be at least 2 characters."}}
	case n > NameMax:
		return Errs{{Field: "name", Msg: "Name cannot exceed 50 characters."}}
	}
	return nil
}

// Email checks the normalized form of s.
func Email(s string) Errs {
	if ef := Required("email", "Email", s); ef != nil {
		return Errs{*ef}
	}
	norm := NormalizeEmail(s)
	if !emailRe.MatchString(norm) {
		return Errs{{Field: "email", Msg: `"` + norm + `" is not a valid email address.`}}
	}
	return nil
}

// Password applies to a plaintext that is being set or changed, never to a stored hash.
func Password(s string) Errs {
	if s == "" {
		return Errs{{Field: "password", Msg: "Password is required."}}
	}
	var errs Errs
	if utf8.RuneCountInString(s) < PasswordMin {
		errs = append(errs, ErrField{Field: "password", Msg: "Password must be at least 8 characters."})
	}
	if len(s) > PasswordMaxBytes {
		errs = append(errs, ErrField{Field: "password", Msg: "Password cannot exceed 72 bytes."})
	}
	if !strongEnough(s) {
		errs = append(errs, ErrField{
			Field: "password",
			Msg:   "Password must contain at least one uppercase letter, one lowercase letter, one digit, and one special character.",
		})
	}
	return errs
}

// strongEnough reports whether s has every required character class and nothing
// outside letters, digits and PasswordSpecials.
func strongEnough(s string) bool {
	var lower, upper, digit, special bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSpecials, r):
			special = true
		default:
			return false
		}
	}
	return lower && upper && digit && special
}

// Registration runs every field check and returns all violations together.
func Registration(name, email, password string) Errs {
	var errs Errs
	errs = append(errs, Name(name)...)
	errs = append(errs, Email(email)...)
	errs = append(errs, Password(password)...)
	return errs
}
