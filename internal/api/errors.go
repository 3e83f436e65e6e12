package api

import (
	"errors"
	"fmt"
	"net/http"
)

// AuthError signals an expired or invalid session. It is produced only by a
// 401 response, after the session has already been cleared.
type AuthError struct{}

func (e *AuthError) Error() string { return "api: sesión expirada" }

// NetworkError is a transport failure with no usable response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("api: network error: %v", e.Err) }

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response carrying the server-provided message, or a
// generic fallback keyed by status code.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// IsAuth reports whether err is a session-expiry failure.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsNetwork reports whether err is a transport failure. Only these are
// eligible for read retries at the cache layer.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// UserMessage converts any gateway error into the text shown in a transient
// notification.
func UserMessage(err error) string {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Message
	}
	if IsAuth(err) {
		return "Sesión expirada"
	}
	if IsNetwork(err) {
		return "Error de conexión"
	}
	return err.Error()
}

func fallbackMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Solicitud inválida"
	case http.StatusForbidden:
		return "No tenés permiso para esta acción"
	case http.StatusNotFound:
		return "Recurso no encontrado"
	case http.StatusConflict:
		return "El horario ya no está disponible"
	default:
		return fmt.Sprintf("Error %d", status)
	}
}
