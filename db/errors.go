package db

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"

	mysqlDuplicateEntry        = 1062
	mysqlNoReferencedRow       = 1452
	mysqlNoReferencedRowLegacy = 1216
)

// IsUniqueViolation reports whether err was caused by a unique index.
// gorm translates errors for its own drivers; the postgres branch runs on
// lib/pq which gorm does not know, so its codes are checked here too.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}

	return false
}

// IsForeignKeyViolation reports whether err was caused by a foreign key.
func IsForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqForeignKeyViolation
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlNoReferencedRow || myErr.Number == mysqlNoReferencedRowLegacy
	}

	return false
}
