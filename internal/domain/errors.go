package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrUserNotFound        = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists  = errors.New("el email ya está registrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrInvalidDocument     = errors.New("documento (CPF/CNPJ) inválido")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrInvalidCredentials  = errors.New("credenciales inválidas")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInvalidTransition   = errors.New("transición de estado no permitida")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrRateLimited         = errors.New("demasiadas solicitudes")
	ErrProviderUnavailable = errors.New("proveedor externo no disponible")
	ErrNotConfigured       = errors.New("integración no configurada")
)

// UserError agrega a un error de dominio un detalle en portugués visible para el cliente.
// Solo este detalle llega a la respuesta HTTP; el texto de otras capas queda en el log.
type UserError struct {
	Err    error
	Detail string
}

func (e *UserError) Error() string { return e.Err.Error() + ": " + e.Detail }

func (e *UserError) Unwrap() error { return e.Err }

// Detail envuelve err con un mensaje para el usuario.
func Detail(err error, format string, args ...any) error {
	return &UserError{Err: err, Detail: fmt.Sprintf(format, args...)}
}
