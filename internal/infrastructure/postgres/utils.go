package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/stock-engine/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return hasCode(err, "23505")
}

// isCheckViolation verifica si un error es una violación de CHECK (23514), p. ej. quantity >= 0.
func isCheckViolation(err error) bool {
	return hasCode(err, "23514")
}

// isForeignKeyViolation verifica si un error es una violación de FK (23503).
func isForeignKeyViolation(err error) bool {
	return hasCode(err, "23503")
}

// isInvalidText entrada que Postgres no pudo convertir al tipo de la columna (22P02), p. ej. un uuid mal formado.
func isInvalidText(err error) bool {
	return hasCode(err, "22P02")
}

// isLockTimeout la espera por un bloqueo superó lock_timeout (55P03).
func isLockTimeout(err error) bool {
	return hasCode(err, "55P03")
}

func hasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return strings.Contains(err.Error(), code)
}

// persistErr envuelve un fallo del driver como error de persistencia de dominio.
// Un lock_timeout se reporta como conflicto: el cliente puede reintentar.
func persistErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *domain.PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	if isInvalidText(err) {
		return domain.NewValidationError("", "valor con formato inválido")
	}
	if isLockTimeout(err) {
		return fmt.Errorf("%w: %s: fila bloqueada por otra transacción", domain.ErrConflict, op)
	}
	return &domain.PersistenceError{Op: op, Err: err}
}

// checkIDs recibe pares campo, valor y rechaza los valores no vacíos que no sean un UUID
// en forma canónica (36 caracteres) o compacta (32), los mismos que acepta el codec de pgx.
func checkIDs(fieldValues ...string) error {
	for i := 0; i+1 < len(fieldValues); i += 2 {
		v := fieldValues[i+1]
		if v == "" {
			continue
		}
		if len(v) != 36 && len(v) != 32 {
			return domain.NewValidationError(fieldValues[i], "no es un UUID válido")
		}
		if _, err := uuid.Parse(v); err != nil {
			return domain.NewValidationError(fieldValues[i], "no es un UUID válido")
		}
	}
	return nil
}

// nullableID convierte "" en NULL para columnas uuid opcionales (bodega agregada).
func nullableID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func fromNullable(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
