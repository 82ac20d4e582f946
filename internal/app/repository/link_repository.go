package repository

import (
	"context"
	"errors"
	"time"

	"github.com/exploitz3r0/xq/internal/app/model"
	"gorm.io/gorm"
)

var (
	// ErrLinkNotFound signals that the requested short link does not exist.
	ErrLinkNotFound = errors.New("link not found")

	// ErrCodeTaken signals that the short code is already in use.
	ErrCodeTaken = errors.New("short code already exists")
)

// LinkRepository defines the data access contract for short links.
type LinkRepository interface {
	Create(ctx context.Context, link *model.Link) error
	GetByCode(ctx context.Context, code string) (*model.Link, error)
	IncrementClicks(ctx context.Context, code string) error
	Delete(ctx context.Context, code string) error
	ListRecent(ctx context.Context, limit int) ([]model.Link, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	AllCodes(ctx context.Context) ([]string, error)
}

type linkRepository struct {
	db *gorm.DB
}

// NewLinkRepository returns a GORM-backed LinkRepository.
func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) Create(ctx context.Context, link *model.Link) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		// Uniqueness is enforced by the index on short_code, never by a
		// pre-check; two racing inserts can only ever produce one row.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrCodeTaken
		}
		return err
	}
	return nil
}

func (r *linkRepository) GetByCode(ctx context.Context, code string) (*model.Link, error) {
	var link model.Link
	if err := r.db.WithContext(ctx).Where("short_code = ?", code).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return &link, nil
}

// IncrementClicks bumps the click counter in a single UPDATE so concurrent
// redirects never lose updates. A missing code is a no-op.
func (r *linkRepository) IncrementClicks(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).
		Model(&model.Link{}).
		Where("short_code = ?", code).
		UpdateColumn("clicks", gorm.Expr("clicks + ?", 1)).Error
}

func (r *linkRepository) Delete(ctx context.Context, code string) error {
	// Idempotent: deleting an absent code is not an error.
	return r.db.WithContext(ctx).
		Where("short_code = ?", code).
		Delete(&model.Link{}).Error
}

func (r *linkRepository) ListRecent(ctx context.Context, limit int) ([]model.Link, error) {
	if limit <= 0 {
		limit = 10
	}

	var result []model.Link
	if err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *linkRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Delete(&model.Link{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *linkRepository) AllCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Pluck("short_code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}
