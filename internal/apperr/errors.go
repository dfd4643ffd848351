// Package apperr define la taxonomia cerrada de errores del servicio y su
// traduccion a codigos HTTP.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Kind identifica la variante de un Error.
type Kind int

const (
	KindAuthentication Kind = iota + 1
	KindBadID
	KindDuplicateValue
	KindGeneric
	KindNotFound
	KindProcess
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "AuthenticationError"
	case KindBadID:
		return "BadId"
	case KindDuplicateValue:
		return "DuplicateValue"
	case KindGeneric:
		return "GenericError"
	case KindNotFound:
		return "NotFound"
	case KindProcess:
		return "ProcessFailed"
	default:
		return "Unknown"
	}
}

// Error es el unico tipo de error que cruza la frontera HTTP.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Kind == KindBadID {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is compara por Kind, asi errors.Is(err, apperr.BadID()) funciona.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Status devuelve el codigo HTTP asociado al Kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindBadID, KindDuplicateValue, KindGeneric:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage es el cuerpo que se expone al cliente.
func (e *Error) PublicMessage() string {
	if e.Kind == KindBadID {
		return "Invalid ID"
	}
	return e.Message
}

func Authentication(msg string) *Error {
	return &Error{Kind: KindAuthentication, Message: msg}
}

func BadID() *Error {
	return &Error{Kind: KindBadID}
}

func DuplicateValue(msg string) *Error {
	return &Error{Kind: KindDuplicateValue, Message: msg}
}

func Generic(msg string) *Error {
	return &Error{Kind: KindGeneric, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Process(msg string) *Error {
	return &Error{Kind: KindProcess, Message: msg}
}

// Wrap conserva la causa original para logging sin exponerla al cliente.
func Wrap(e *Error, cause error) *Error {
	e.cause = cause
	return e
}

// As extrae un *Error de la cadena; ok es false si no hay ninguno.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// FromDB traduce errores de pgx a la taxonomia. Solo las violaciones de
// unicidad tienen tratamiento propio.
func FromDB(err error) error {
	if err == nil {
		return nil
	}
	if e, ok := As(err); ok {
		return e
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return Wrap(NotFound("Record not found"), err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		msg := pgErr.Detail
		if msg == "" {
			msg = pgErr.Message
		}
		if pgErr.Code == pgerrcode.UniqueViolation {
			return Wrap(DuplicateValue(msg), err)
		}
		return Wrap(Generic(msg), err)
	}
	return Wrap(Generic("Some database error occurred"), err)
}

// FromUUID traduce un error de parseo de identificador.
func FromUUID(err error) error {
	if err == nil {
		return nil
	}
	return Wrap(BadID(), err)
}
