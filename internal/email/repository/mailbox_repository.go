package repository

import (
	"errors"
	"time"

	emaildomain "jobtrail-backend/internal/email/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// mailboxRepository implements MailboxRepository interface
type mailboxRepository struct {
	db *gorm.DB
}

// NewMailboxRepository creates a new instance of mailboxRepository
func NewMailboxRepository(db *gorm.DB) MailboxRepository {
	return &mailboxRepository{
		db: db,
	}
}

func (r *mailboxRepository) Create(mailbox *emaildomain.TrackedMailbox) error {
	if mailbox.ID == "" {
		mailbox.ID = uuid.New().String()
	}
	mailbox.CreatedAt = time.Now()
	mailbox.UpdatedAt = time.Now()
	return r.db.Create(mailbox).Error
}

func (r *mailboxRepository) FindByID(id string) (*emaildomain.TrackedMailbox, error) {
	return r.findOne("id = ?", id)
}

func (r *mailboxRepository) FindByUserID(userID string) (*emaildomain.TrackedMailbox, error) {
	return r.findOne("user_id = ?", userID)
}

func (r *mailboxRepository) FindByTrackingAddress(address string) (*emaildomain.TrackedMailbox, error) {
	return r.findOne("tracking_address = ?", address)
}

func (r *mailboxRepository) findOne(query string, arg interface{}) (*emaildomain.TrackedMailbox, error) {
	var mailbox emaildomain.TrackedMailbox
	err := r.db.Where(query, arg).First(&mailbox).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &mailbox, nil
}

func (r *mailboxRepository) Update(mailbox *emaildomain.TrackedMailbox) error {
	mailbox.UpdatedAt = time.Now()
	return r.db.Save(mailbox).Error
}

func (r *mailboxRepository) UpdateForwardingStatus(id string, status emaildomain.ForwardingStatus) error {
	return r.db.Model(&emaildomain.TrackedMailbox{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"forwarding_status": status,
			"updated_at":        time.Now(),
		}).Error
}
