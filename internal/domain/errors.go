package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
// Los errores tipados de abajo hacen match con estos centinelas vía errors.Is.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrAlreadyResolved   = errors.New("la alerta ya está resuelta")
	ErrPersistence       = errors.New("fallo de persistencia")
)

// ValidationError entrada mal formada; la operación no se intenta.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError construye un ValidationError.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidInput, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// InsufficientStockError violación de regla de negocio con el detalle del faltante.
// WarehouseID vacío significa stock agregado (todas las bodegas).
type InsufficientStockError struct {
	ProductID   string
	WarehouseID string
	Requested   int
	Available   int
	Shortage    int
}

// NewInsufficientStockError calcula el faltante a partir de lo solicitado y lo disponible.
func NewInsufficientStockError(productID, warehouseID string, requested, available int) *InsufficientStockError {
	shortage := requested - available
	if shortage < 0 {
		shortage = 0
	}
	return &InsufficientStockError{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Requested:   requested,
		Available:   available,
		Shortage:    shortage,
	}
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s: producto %s bodega %q solicitado=%d disponible=%d faltante=%d",
		ErrInsufficientStock, e.ProductID, e.WarehouseID, e.Requested, e.Available, e.Shortage)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// NotFoundError id desconocido de producto, bodega, alerta, traslado, orden, etc.
type NotFoundError struct {
	Resource string
	ID       string
}

// NewNotFoundError construye un NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrNotFound, e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// PersistenceError fallo de transacción o conexión; la operación completa se revierte.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPersistence, e.Op, e.Err)
}

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func (e *PersistenceError) Unwrap() error { return e.Err }
