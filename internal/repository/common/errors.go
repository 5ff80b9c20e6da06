package common

import (
	"errors"

	"github.com/lib/pq"
)

// Коды ошибок PostgreSQL, которые переводятся в доменные ошибки.
const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

// UniqueViolation возвращает имя нарушенного ограничения уникальности.
func UniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
		return pqErr.Constraint, true
	}
	return "", false
}

// IsUniqueViolation сообщает, нарушено ли конкретное ограничение уникальности.
func IsUniqueViolation(err error, constraint string) bool {
	name, ok := UniqueViolation(err)
	return ok && name == constraint
}

// IsCheckViolation сообщает о нарушении CHECK-ограничения.
func IsCheckViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgCheckViolation
}
