package service

import (
	"errors"
	"strings"

	"github.com/99minutos/library-catalog/internal/core/domain"
	"github.com/99minutos/library-catalog/internal/core/ports"
)

// Describe maps an operation error to the text shown to the user. Unknown
// errors get a generic message so internal details never leak into toasts.
func Describe(err error) string {
	return describe(err, "An unknown error occurred")
}

func describe(err error, fallback string) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, domain.ErrEmailAlreadyInUse):
		return "Email already in use"
	case errors.Is(err, domain.ErrBookNotFound):
		return "Book not found"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "Authentication required"
	case errors.Is(err, domain.ErrAlreadyBorrowed):
		return "Book is not available for borrowing"
	case errors.Is(err, domain.ErrNotBorrowed):
		return "This book is not currently borrowed"
	case errors.Is(err, domain.ErrNotBorrower):
		return "You can only return books that you have borrowed"
	case errors.Is(err, domain.ErrInvalidInput):
		prefix := domain.ErrInvalidInput.Error() + ": "
		if i := strings.Index(err.Error(), prefix); i >= 0 {
			return "Invalid input: " + err.Error()[i+len(prefix):]
		}
		return "Invalid input"
	}
	return fallback
}

func info(title, description string) ports.Notification {
	return ports.Notification{Title: title, Description: description, Severity: ports.SeverityInfo}
}

func failure(title string, err error, fallback string) ports.Notification {
	return ports.Notification{Title: title, Description: describe(err, fallback), Severity: ports.SeverityDestructive}
}
