package repository_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/CodeForFun2004/The-Chill-Cup-API/repository"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, repository.IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, repository.IsUniqueViolation(fmt.Errorf("insert order: %w", &pgconn.PgError{Code: "23505"})))
	assert.True(t, repository.IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.False(t, repository.IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, repository.IsUniqueViolation(errors.New("boom")))
	assert.False(t, repository.IsUniqueViolation(nil))
}

func TestIsForeignKeyViolation(t *testing.T) {
	assert.True(t, repository.IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, repository.IsForeignKeyViolation(gorm.ErrForeignKeyViolated))
	assert.False(t, repository.IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, repository.IsForeignKeyViolation(nil))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, repository.IsNotFound(gorm.ErrRecordNotFound))
	assert.True(t, repository.IsNotFound(fmt.Errorf("find: %w", repository.ErrNotFound)))
	assert.False(t, repository.IsNotFound(errors.New("other")))
}
