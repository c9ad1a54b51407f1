package postgres

import (
	"errors"

	"github.com/lib/pq"
)

const (
	duplicateKeyCode  = "23505"
	duplicateDatabase = "42P04"
)

func IsDuplicateKeyErr(err error) bool {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return pgErr.Code == pq.ErrorCode(duplicateKeyCode)
	}
	return false
}

func IsDuplicateDatabaseErr(err error) bool {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return pgErr.Code == pq.ErrorCode(duplicateDatabase)
	}
	return false
}
