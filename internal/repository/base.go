// Package repository provides data access layer implementations for the application.
package repository

import (
	"errors"
	"strings"

	"github.com/mitronepal/JobMandu/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

const (
	dbSystemSQL   = "sql"
	dbSystemMongo = "mongodb"
)

// gormError maps a gorm error to the application error taxonomy.
func gormError(err error, resource string, id any) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
		return models.NewConflictError(models.CodeConflict, resource+" already exists")
	}
	return models.NewInternalError(err)
}

// mongoError maps a mongo driver error to the application error taxonomy.
func mongoError(err error, resource string, id any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.NewNotFoundError(resource, id)
	}
	if mongo.IsDuplicateKeyError(err) {
		return models.NewConflictError(models.CodeConflict, resource+" already exists")
	}
	return models.NewInternalError(err)
}

// pgUniqueViolation is the SQLSTATE postgres reports for a duplicate key.
const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	// sqlite has no typed error through gorm.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
