package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opdexport/quotation-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DocumentSequenceRepository handles the daily counter backing quotation
// numbers. One counter row exists per calendar day, shared by all companies.
type DocumentSequenceRepository struct {
	db *gorm.DB
}

func NewDocumentSequenceRepository(db *gorm.DB) *DocumentSequenceRepository {
	return &DocumentSequenceRepository{db: db}
}

// NextForDay atomically retrieves and increments the sequence for a day
// (YYYYMMDD). The row is read under SELECT FOR UPDATE so concurrent
// allocations serialize and never observe the same value. If no row exists
// for the day, one is created starting at 1.
func (r *DocumentSequenceRepository) NextForDay(ctx context.Context, day string) (int, error) {
	next, err := r.allocate(ctx, day)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// A day with no counter row yet locks nothing, so two transactions
		// can race to insert it. The loser's transaction aborts on the
		// unique day index; by then the row exists, and a second attempt
		// takes the locked increment path.
		next, err = r.allocate(ctx, day)
	}
	return next, err
}

func (r *DocumentSequenceRepository) allocate(ctx context.Context, day string) (int, error) {
	var seq domain.DocumentSequence
	var next int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("day = ?", day).
			First(&seq)

		if result.Error == gorm.ErrRecordNotFound {
			seq = domain.DocumentSequence{
				Day:          day,
				LastSequence: 1,
				CreatedAt:    time.Now(),
				UpdatedAt:    time.Now(),
			}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create document sequence: %w", err)
			}
			next = 1
		} else if result.Error != nil {
			return fmt.Errorf("failed to get document sequence: %w", result.Error)
		} else {
			next = seq.LastSequence + 1
			if err := tx.Model(&seq).Updates(map[string]interface{}{
				"last_sequence": next,
				"updated_at":    time.Now(),
			}).Error; err != nil {
				return fmt.Errorf("failed to update document sequence: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		return 0, err
	}

	return next, nil
}

// CurrentForDay retrieves the last used sequence without incrementing.
// Returns 0 if no allocation happened on the day.
func (r *DocumentSequenceRepository) CurrentForDay(ctx context.Context, day string) (int, error) {
	var seq domain.DocumentSequence
	result := r.db.WithContext(ctx).
		Where("day = ?", day).
		First(&seq)

	if result.Error == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if result.Error != nil {
		return 0, fmt.Errorf("failed to get document sequence: %w", result.Error)
	}

	return seq.LastSequence, nil
}

// SetForDay forces the counter to a value, used when importing numbered
// quotations. The value only moves forward.
func (r *DocumentSequenceRepository) SetForDay(ctx context.Context, day string, value int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq domain.DocumentSequence
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("day = ?", day).
			First(&seq)

		if result.Error == gorm.ErrRecordNotFound {
			seq = domain.DocumentSequence{
				Day:          day,
				LastSequence: value,
				CreatedAt:    time.Now(),
				UpdatedAt:    time.Now(),
			}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create document sequence: %w", err)
			}
			return nil
		}
		if result.Error != nil {
			return fmt.Errorf("failed to get document sequence: %w", result.Error)
		}

		if value > seq.LastSequence {
			if err := tx.Model(&seq).Updates(map[string]interface{}{
				"last_sequence": value,
				"updated_at":    time.Now(),
			}).Error; err != nil {
				return fmt.Errorf("failed to update document sequence: %w", err)
			}
		}

		return nil
	})
}
