package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/allode/property-backend/internal/domain/repositories"
	"github.com/allode/property-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/allode/property-backend/pkg/errors"
)

// MetadataAdapter implements MetadataRepository over the app_metadata table
type MetadataAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewMetadataAdapter creates a new metadata adapter
func NewMetadataAdapter(client *postgres.Client) repositories.MetadataRepository {
	return &MetadataAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Get returns the value stored under key
func (a *MetadataAdapter) Get(ctx context.Context, key string) (string, error) {
	query, args, err := a.db.Select("value").
		From("app_metadata").
		Where(goqu.Ex{"key": key}).
		ToSQL()
	if err != nil {
		return "", apperrors.NewInternalError("failed to build metadata query", err)
	}

	var value string
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(&value)
	if err == sql.ErrNoRows {
		return "", apperrors.NewNotFoundError(fmt.Sprintf("metadata key %s not found", key))
	}
	if err != nil {
		return "", apperrors.NewInternalError("failed to get metadata", err)
	}

	return value, nil
}

// Set stores value under key, overwriting any previous value
func (a *MetadataAdapter) Set(ctx context.Context, key, value string) error {
	query, args, err := a.db.Insert("app_metadata").
		Rows(goqu.Record{
			"key":        key,
			"value":      value,
			"updated_at": time.Now().UTC(),
		}).
		OnConflict(goqu.DoUpdate("key", goqu.Record{
			"value":      goqu.L("EXCLUDED.value"),
			"updated_at": goqu.L("EXCLUDED.updated_at"),
		})).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build metadata upsert", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to set metadata", err)
	}

	return nil
}
