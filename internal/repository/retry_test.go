package repository

import (
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestRetryCodeCollisionRecovers(t *testing.T) {
	collision := &pgconn.PgError{Code: pgerrcode.UniqueViolation}

	calls := 0
	err := retryCodeCollision(func() error {
		calls++
		if calls < 3 {
			return collision
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls, "each collision gets a fresh attempt")
}

func TestRetryCodeCollisionGivesUp(t *testing.T) {
	collision := &pgconn.PgError{Code: pgerrcode.UniqueViolation}

	calls := 0
	err := retryCodeCollision(func() error {
		calls++
		return collision
	})
	assert.ErrorIs(t, err, collision)
	assert.Equal(t, 3, calls)
}

func TestRetryCodeCollisionOtherErrorsPassThrough(t *testing.T) {
	boom := errors.New("connection reset")

	calls := 0
	err := retryCodeCollision(func() error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls, "only unique violations are worth a retry")
}
