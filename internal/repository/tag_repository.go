package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/task-tracker-api/internal/metrics"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTagRepository is a GORM implementation of TagRepository
type GormTagRepository struct {
	db *gorm.DB
	// inTx is set when db is a caller's transaction
	inTx bool
}

// NewTagRepository creates a new TagRepository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &GormTagRepository{db: db}
}

// Resolve returns the tag named name, creating it on first reference
func (r *GormTagRepository) Resolve(ctx context.Context, name string) (*models.Tag, error) {
	return resolveTag(r.db.WithContext(ctx), name)
}

// WithTx returns a repository that runs on tx instead of its own connection
func (r *GormTagRepository) WithTx(tx *gorm.DB) TagRepository {
	return &GormTagRepository{db: tx, inTx: true}
}

// ResolveAll resolves names inside a single transaction, joining the
// caller's one when bound with WithTx
func (r *GormTagRepository) ResolveAll(ctx context.Context, names []string) ([]models.Tag, error) {
	if r.inTx {
		return resolveTags(r.db.WithContext(ctx), names)
	}

	var tags []models.Tag
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		tags, err = resolveTags(tx, names)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// FindByName finds a tag by its normalized name
func (r *GormTagRepository) FindByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).Where("name = ?", name).Take(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// resolveTags resolves names on db, which may be a transaction. A name that
// appears twice resolves to the same tag.
func resolveTags(db *gorm.DB, names []string) ([]models.Tag, error) {
	resolved := make(map[string]models.Tag, len(names))
	tags := make([]models.Tag, 0, len(names))

	for _, name := range names {
		if tag, ok := resolved[name]; ok {
			tags = append(tags, tag)
			continue
		}
		tag, err := resolveTag(db, name)
		if err != nil {
			return nil, err
		}
		resolved[name] = *tag
		tags = append(tags, *tag)
	}

	return tags, nil
}

// resolveTag is a race-safe get-or-create. The unique index on tags.name is
// the arbiter: a concurrent insert of the same name makes ours a no-op (or a
// duplicate key error on dialects without ON CONFLICT), and we read the
// winner's row instead. That read locks so it sees the latest committed row
// under REPEATABLE READ, where a plain SELECT would reuse the stale snapshot.
func resolveTag(db *gorm.DB, name string) (*models.Tag, error) {
	var tag models.Tag
	err := db.Where("name = ?", name).Take(&tag).Error
	if err == nil {
		return &tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up tag %q: %w", name, err)
	}

	tag = models.Tag{Name: name}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&tag)

	switch {
	case result.Error == nil && result.RowsAffected == 1 && tag.ID != 0:
		metrics.TagsCreated.Inc()
		return &tag, nil
	case result.Error != nil && !errors.Is(result.Error, gorm.ErrDuplicatedKey):
		return nil, fmt.Errorf("failed to create tag %q: %w", name, result.Error)
	}

	var existing models.Tag
	if err := db.Clauses(clause.Locking{Strength: "SHARE"}).
		Where("name = ?", name).
		Take(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to reload tag %q after conflict: %w", name, err)
	}
	return &existing, nil
}
