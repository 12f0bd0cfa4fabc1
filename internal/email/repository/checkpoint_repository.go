package repository

import (
	"errors"
	"time"

	emaildomain "jobtrail-backend/internal/email/domain"

	"gorm.io/gorm"
)

// checkpointRepository implements CheckpointRepository interface
type checkpointRepository struct {
	db *gorm.DB
}

// NewCheckpointRepository creates a new instance of checkpointRepository
func NewCheckpointRepository(db *gorm.DB) CheckpointRepository {
	return &checkpointRepository{
		db: db,
	}
}

func (r *checkpointRepository) Get(mailboxID string) (*emaildomain.FetchCheckpoint, error) {
	var cp emaildomain.FetchCheckpoint
	err := r.db.Where("mailbox_id = ?", mailboxID).First(&cp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cp, nil
}

func (r *checkpointRepository) Advance(mailboxID string, ts time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var cp emaildomain.FetchCheckpoint
		err := tx.Where("mailbox_id = ?", mailboxID).First(&cp).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			now := time.Now()
			cp = emaildomain.FetchCheckpoint{
				MailboxID:      mailboxID,
				LastFetchedAt:  ts,
				CursorStrategy: emaildomain.CursorSinceDate,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			return tx.Create(&cp).Error
		}
		if err != nil {
			return err
		}

		if ts.Before(cp.LastFetchedAt) {
			return emaildomain.ErrCheckpointRegressed
		}
		cp.LastFetchedAt = ts
		cp.UpdatedAt = time.Now()
		return tx.Save(&cp).Error
	})
}

func (r *checkpointRepository) Reset(mailboxID string, ts time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var cp emaildomain.FetchCheckpoint
		err := tx.Where("mailbox_id = ?", mailboxID).First(&cp).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			now := time.Now()
			cp = emaildomain.FetchCheckpoint{
				MailboxID:      mailboxID,
				LastFetchedAt:  ts,
				CursorStrategy: emaildomain.CursorSinceDate,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			return tx.Create(&cp).Error
		}
		if err != nil {
			return err
		}

		cp.LastFetchedAt = ts
		cp.UpdatedAt = time.Now()
		return tx.Save(&cp).Error
	})
}
