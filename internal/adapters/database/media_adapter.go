package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/allode/property-backend/internal/domain/entities"
	"github.com/allode/property-backend/internal/domain/repositories"
	"github.com/allode/property-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/allode/property-backend/pkg/errors"
)

// MediaAdapter implements MediaRepository
type MediaAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewMediaAdapter creates a new media adapter
func NewMediaAdapter(client *postgres.Client) repositories.MediaRepository {
	return &MediaAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ListByListing returns the listing's gallery ordered by display order
func (a *MediaAdapter) ListByListing(ctx context.Context, listingID string) ([]*entities.ListingMedia, error) {
	query, args, err := a.db.Select(
		"id", "listing_id", "media_key", "media_url", "display_order", "preferred",
		"width", "height", "category", "r2_key", "r2_url", "stored_at", "created_at",
	).From("listing_media").
		Where(goqu.Ex{"listing_id": listingID}).
		Order(goqu.C("display_order").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build media query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list media", err)
	}
	defer rows.Close()

	var media []*entities.ListingMedia
	for rows.Next() {
		m := &entities.ListingMedia{}
		var mediaKey, category, r2Key, r2URL sql.NullString
		var width, height sql.NullInt64
		var storedAt sql.NullTime

		err := rows.Scan(
			&m.ID,
			&m.ListingID,
			&mediaKey,
			&m.MediaURL,
			&m.Order,
			&m.Preferred,
			&width,
			&height,
			&category,
			&r2Key,
			&r2URL,
			&storedAt,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan media", err)
		}

		if mediaKey.Valid {
			m.MediaKey = mediaKey.String
		}
		if category.Valid {
			m.Category = category.String
		}
		m.Width = intPtr(width)
		m.Height = intPtr(height)
		m.R2Key = stringPtr(r2Key)
		m.R2URL = stringPtr(r2URL)
		m.StoredAt = timePtr(storedAt)

		media = append(media, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate media", err)
	}

	return media, nil
}

// ReplaceForListing swaps the listing's gallery for the given rows inside a
// transaction so readers never observe a half-replaced gallery.
func (a *MediaAdapter) ReplaceForListing(ctx context.Context, listingID string, media []*entities.ListingMedia) error {
	tx, err := a.client.DB().BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	deleteQuery, deleteArgs, err := a.db.Delete("listing_media").
		Where(goqu.Ex{"listing_id": listingID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return apperrors.NewInternalError("failed to delete old media", err)
	}

	if len(media) > 0 {
		now := time.Now().UTC()
		records := make([]interface{}, 0, len(media))
		for _, m := range media {
			records = append(records, goqu.Record{
				"id":            m.ID,
				"listing_id":    listingID,
				"media_key":     sql.NullString{String: m.MediaKey, Valid: m.MediaKey != ""},
				"media_url":     m.MediaURL,
				"display_order": m.Order,
				"preferred":     m.Preferred,
				"width":         nullInt(m.Width),
				"height":        nullInt(m.Height),
				"category":      sql.NullString{String: m.Category, Valid: m.Category != ""},
				"created_at":    now,
			})
		}

		insertQuery, insertArgs, err := a.db.Insert("listing_media").Rows(records...).ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build insert query", err)
		}
		if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
			return apperrors.NewInternalError("failed to insert media", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit media replacement", err)
	}

	return nil
}

// SetMirror records the object-storage location of one mirrored photo
func (a *MediaAdapter) SetMirror(ctx context.Context, mediaID, r2Key, r2URL string) error {
	query, args, err := a.db.Update("listing_media").
		Set(goqu.Record{
			"r2_key":    r2Key,
			"r2_url":    r2URL,
			"stored_at": time.Now().UTC(),
		}).
		Where(goqu.Ex{"id": mediaID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	res, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to set media mirror", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to read rows affected", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("media row not found")
	}

	return nil
}

// DeleteAll removes every media row and returns the number deleted
func (a *MediaAdapter) DeleteAll(ctx context.Context) (int64, error) {
	query, args, err := a.db.Delete("listing_media").ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build delete query", err)
	}

	res, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to delete media", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to read rows affected", err)
	}

	return deleted, nil
}

// Count returns the number of media rows
func (a *MediaAdapter) Count(ctx context.Context) (int, error) {
	query, args, err := a.db.Select(goqu.COUNT("*")).From("listing_media").ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.NewInternalError("failed to count media", err)
	}

	return count, nil
}
