package repository

import (
	"database/sql"
	"masterdata-web/internal/models"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_FindByUsername(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()
	repo := NewUserRepository(sqlx.NewDb(raw, "mysql"))

	now := time.Now()
	cols := []string{"id", "name", "username", "email", "password_hash", "role", "is_active", "created_at", "updated_at"}
	mock.ExpectQuery(`SELECT \* FROM users WHERE username = \?`).
		WithArgs("operator").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(3, "Operator", "operator", "op@example.com", "", "operator", true, now, now))

	user, err := repo.FindByUsername("operator")
	require.NoError(t, err)
	assert.Equal(t, 3, user.ID)
	assert.True(t, user.IsActive)

	mock.ExpectQuery(`SELECT \* FROM users WHERE username = \?`).WithArgs("ghost").WillReturnError(sql.ErrNoRows)
	_, err = repo.FindByUsername("ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserRepository_Create(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()
	repo := NewUserRepository(sqlx.NewDb(raw, "mysql"))

	mock.ExpectExec("INSERT INTO users").
		WithArgs("Admin", "admin", "", "hash", "admin", true).
		WillReturnResult(sqlmock.NewResult(9, 1))

	user := &models.User{Name: "Admin", Username: "admin", PasswordHash: "hash", Role: "admin", IsActive: true}
	require.NoError(t, repo.Create(user))
	assert.Equal(t, 9, user.ID)
}
