package postgres

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-engine/internal/domain"
)

func TestCheckIDs(t *testing.T) {
	id := uuid.NewString()
	assert.NoError(t, checkIDs("product_id", id, "warehouse_id", ""))
	assert.NoError(t, checkIDs("product_id", strings.ReplaceAll(id, "-", "")), "forma compacta")

	err := checkIDs("product_id", id, "warehouse_id", "abc")
	var ve *domain.ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "warehouse_id", ve.Field)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.ErrorIs(t, checkIDs("alert_id", "{"+id+"}"), domain.ErrInvalidInput)
	assert.ErrorIs(t, checkIDs("alert_id", "zzzzzzzz-zzzz-zzzz-zzzz-zzzzzzzzzzzz"), domain.ErrInvalidInput)
}

func TestPersistErr_Clasifica(t *testing.T) {
	err := persistErr("get product", &pgconn.PgError{Code: "22P02"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = persistErr("lock stock", &pgconn.PgError{Code: "55P03"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	err = persistErr("get product", errors.New("conexión cerrada"))
	assert.ErrorIs(t, err, domain.ErrPersistence)
}
