package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var orderColumns = []string{
	"id", "session_id", "items", "total", "delivery_address", "payment_method", "status", "created_at",
}

func TestPostgresRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	order := testOrder()

	itemsJSON, _ := json.Marshal(order.Items)
	addressJSON, _ := json.Marshal(order.DeliveryAddress)
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(order.ID, order.SessionID, itemsJSON, 965, addressJSON, "cod", "confirmed", fixedTime).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewPostgresRepository(db).Create(context.Background(), order))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_CreateError(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectExec("INSERT INTO orders").WillReturnError(errors.New("duplicate key"))

	err := NewPostgresRepository(db).Create(context.Background(), testOrder())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert order")
}

func TestPostgresRepository_Get(t *testing.T) {
	db, mock := setupMockDB(t)
	want := testOrder()

	itemsJSON, _ := json.Marshal(want.Items)
	addressJSON, _ := json.Marshal(want.DeliveryAddress)
	mock.ExpectQuery("SELECT id, session_id, items").
		WithArgs(want.ID).
		WillReturnRows(sqlmock.NewRows(orderColumns).
			AddRow(want.ID, want.SessionID, itemsJSON, 965, addressJSON, "cod", "confirmed", fixedTime))

	got, err := NewPostgresRepository(db).Get(context.Background(), want.ID)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_GetErrors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		wantErr error
		wantMsg string
	}{
		{
			name: "not found",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id, session_id, items").WillReturnError(sql.ErrNoRows)
			},
			wantErr: ErrOrderNotFound,
		},
		{
			name: "query error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id, session_id, items").WillReturnError(errors.New("timeout"))
			},
			wantMsg: "select order",
		},
		{
			name: "corrupt items",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id, session_id, items").WillReturnRows(sqlmock.NewRows(orderColumns).
					AddRow("o1", nil, []byte("not json"), 10, []byte("{}"), "cod", "confirmed", fixedTime))
			},
			wantMsg: "decode items",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			tt.setup(mock)

			_, err := NewPostgresRepository(db).Get(context.Background(), "o1")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestMemoryRepository(t *testing.T) {
	repo := NewMemoryRepository()
	order := testOrder()

	require.NoError(t, repo.Create(context.Background(), order))
	assert.Error(t, repo.Create(context.Background(), order))

	got, err := repo.Get(context.Background(), order.ID)
	require.NoError(t, err)
	got.Status = "delivered"

	again, _ := repo.Get(context.Background(), order.ID)
	assert.Equal(t, order.Status, again.Status)
}
