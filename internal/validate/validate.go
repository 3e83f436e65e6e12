// Package validate performs client-side input validation. Violations are
// surfaced like server errors and never reach the network.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Error is a pre-network validation failure.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Message }

// Required fails when s is blank.
func Required(field, s string) error {
	if strings.TrimSpace(s) == "" {
		return &Error{Field: field, Message: fmt.Sprintf("Completá el campo %s", field)}
	}
	return nil
}

// Email fails when s is not a plausible email address.
func Email(s string) error {
	if err := Required("email", s); err != nil {
		return err
	}
	if !emailPattern.MatchString(strings.TrimSpace(s)) {
		return &Error{Field: "email", Message: "Ingresá un email válido"}
	}
	return nil
}

// Password enforces the account password policy: at least 8 characters, one
// uppercase letter and one digit.
func Password(s string) error {
	if len(s) < 8 {
		return &Error{Field: "contraseña", Message: "La contraseña debe tener al menos 8 caracteres"}
	}
	var upper, digit bool
	for _, r := range s {
		if unicode.IsUpper(r) {
			upper = true
		}
		if unicode.IsDigit(r) {
			digit = true
		}
	}
	if !upper || !digit {
		return &Error{Field: "contraseña", Message: "La contraseña debe incluir una mayúscula y un número"}
	}
	return nil
}

// PasswordConfirmation fails when the confirmation does not match.
func PasswordConfirmation(password, confirmation string) error {
	if password != confirmation {
		return &Error{Field: "confirmación", Message: "Las contraseñas no coinciden"}
	}
	return nil
}

// NotesLength bounds free-text notes to max runes.
func NotesLength(s string, max int) error {
	if utf8.RuneCountInString(s) > max {
		return &Error{Field: "notas", Message: fmt.Sprintf("Las notas no pueden superar %d caracteres", max)}
	}
	return nil
}

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool {
	_, ok := err.(*Error)
	return ok
}
