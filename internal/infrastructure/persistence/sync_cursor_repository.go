package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chonibe/coa-service/internal/domain/edition"
	"github.com/chonibe/coa-service/internal/domain/upstream"
	"github.com/chonibe/coa-service/internal/infrastructure/persistence/models"
)

// GormSyncCursorRepository implements SyncCursorRepository using GORM
type GormSyncCursorRepository struct {
	db *gorm.DB
}

// NewGormSyncCursorRepository creates a new GormSyncCursorRepository
func NewGormSyncCursorRepository(db *gorm.DB) *GormSyncCursorRepository {
	return &GormSyncCursorRepository{db: db}
}

// Get returns the stored cursor for a source, or "" when none exists
func (r *GormSyncCursorRepository) Get(ctx context.Context, source upstream.Source) (string, error) {
	var model models.SyncCursorModel
	if err := r.db.WithContext(ctx).First(&model, "source = ?", source.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return model.Cursor, nil
}

// Set stores the cursor for a source
func (r *GormSyncCursorRepository) Set(ctx context.Context, source upstream.Source, cursor string) error {
	model := &models.SyncCursorModel{
		Source: source.String(),
		Cursor: cursor,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "source"}},
			DoUpdates: clause.AssignmentColumns([]string{"cursor", "updated_at"}),
		}).
		Create(model).Error
}

// Ensure GormSyncCursorRepository implements SyncCursorRepository
var _ edition.SyncCursorRepository = (*GormSyncCursorRepository)(nil)
