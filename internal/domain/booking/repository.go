package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, b *Booking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var b Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetForUpdate locks the booking row for the duration of tx. Every
// settlement transition goes through this lock, so concurrent operations
// on one booking serialize and observe each other's state.
func (r *Repository) GetForUpdate(tx *gorm.DB, id uuid.UUID) (*Booking, error) {
	var b Booking
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []Booking
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("check_in desc").
		Limit(limit).Offset(offset).
		Find(&out).Error
	return out, err
}

// ListOverdueActive returns checked-in bookings whose check-out time has
// passed. Used by the sweeper.
func (r *Repository) ListOverdueActive(ctx context.Context, cutoff time.Time, limit int) ([]Booking, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []Booking
	err := r.db.WithContext(ctx).
		Where("status = ? AND is_checked_in = ? AND is_checked_out = ? AND check_out < ?", StatusActive, true, false, cutoff).
		Order("check_out asc").
		Limit(limit).
		Find(&out).Error
	return out, err
}
