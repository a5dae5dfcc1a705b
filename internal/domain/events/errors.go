package events

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrFutureTimestamp = errors.New("timestamp cannot be in the future")
	ErrBadFormat       = errors.New("unrecognized import format")
)

// RowError describe por qué una fila del import masivo fue rechazada.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// BatchError agrupa las filas inválidas de un import masivo. Las filas
// válidas igual se importan: el import no es todo-o-nada.
type BatchError struct {
	Rows []RowError `json:"rows"`
}

func (e *BatchError) Error() string {
	parts := make([]string, 0, len(e.Rows))
	for _, r := range e.Rows {
		parts = append(parts, r.Error())
	}
	return fmt.Sprintf("%d invalid row(s): %s", len(e.Rows), strings.Join(parts, "; "))
}

// PersistError indica que el store primario falló. El cambio ya quedó
// aplicado en memoria; si hubo fallback exitoso FallbackSaved es true.
// Nunca se traga en silencio: el handler lo reporta al usuario.
type PersistError struct {
	Primary       error
	Fallback      error
	FallbackSaved bool
}

func (e *PersistError) Error() string {
	if e.FallbackSaved {
		return fmt.Sprintf("primary store failed (saved to fallback): %v", e.Primary)
	}
	if e.Fallback != nil {
		return fmt.Sprintf("primary store failed: %v (fallback also failed: %v)", e.Primary, e.Fallback)
	}
	return fmt.Sprintf("primary store failed: %v", e.Primary)
}

func (e *PersistError) Unwrap() error { return e.Primary }
