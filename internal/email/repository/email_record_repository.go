package repository

import (
	"time"

	emaildomain "jobtrail-backend/internal/email/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// emailRecordRepository implements EmailRecordRepository interface
type emailRecordRepository struct {
	db *gorm.DB
}

// NewEmailRecordRepository creates a new instance of emailRecordRepository
func NewEmailRecordRepository(db *gorm.DB) EmailRecordRepository {
	return &emailRecordRepository{
		db: db,
	}
}

func (r *emailRecordRepository) Insert(record *emaildomain.EmailRecord) (bool, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	record.CreatedAt = time.Now()

	// Records without a received timestamp are outside the unique index
	// (NULLs compare distinct), so deduplicate those in a query first.
	if record.ReceivedAt == nil {
		var count int64
		err := r.db.Model(&emaildomain.EmailRecord{}).
			Where("mailbox_id = ? AND sender = ? AND subject = ? AND received_at IS NULL",
				record.MailboxID, record.Sender, record.Subject).
			Count(&count).Error
		if err != nil {
			return false, err
		}
		if count > 0 {
			return false, nil
		}
	}

	// The unique index resolves concurrent duplicate inserts; DoNothing
	// turns the conflict into RowsAffected == 0 instead of an error.
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(record)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *emailRecordRepository) ListByMailbox(mailboxID string) ([]*emaildomain.EmailRecord, error) {
	var records []*emaildomain.EmailRecord
	err := r.db.Where("mailbox_id = ?", mailboxID).
		Order("received_at IS NULL, received_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *emailRecordRepository) CountByMailbox(mailboxID string) (int64, error) {
	var count int64
	err := r.db.Model(&emaildomain.EmailRecord{}).Where("mailbox_id = ?", mailboxID).Count(&count).Error
	return count, err
}
