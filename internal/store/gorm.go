// Durable Store implementation backed by GORM over SQLite (pure Go driver).
package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/Roshan-b-tech/WHATSAAPWEB/internal/domain"
)

// GormStore persists messages and contacts in SQLite through GORM. It relies
// on the database's atomic upsert (INSERT ... ON CONFLICT DO UPDATE) to keep
// concurrent webhook deliveries from duplicating rows.
type GormStore struct {
	db *gorm.DB
}

// OpenGorm opens (or creates) the SQLite database at path, applies PRAGMAs,
// configures the pool, and migrates the schema.
func OpenGorm(path string) (*GormStore, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// PRAGMAs
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")

	// Pool
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := db.AutoMigrate(&domain.Message{}, &domain.Contact{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

// NewGormStore wraps an already-opened, migrated GORM handle. Used by tests.
func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

// UpsertMessage implements Store.
func (s *GormStore) UpsertMessage(ctx context.Context, m *domain.Message) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "wa_message_id"}},
			UpdateAll: true,
		}).
		Create(m).Error
}

// ApplyStatus implements Store. The first row matching either identity field
// (ordered by CreatedAt, WAMessageID) is updated; secondary-id collisions
// therefore resolve to the oldest message.
func (s *GormStore) ApplyStatus(ctx context.Context, id string, status domain.MessageStatus, ts int64) (*domain.Message, error) {
	var rows []domain.Message
	err := s.db.WithContext(ctx).
		Where("wa_message_id = ? OR meta_msg_id = ?", id, id).
		Order("created_at ASC, wa_message_id ASC").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	err = s.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("wa_message_id = ?", rows[0].WAMessageID).
		Updates(map[string]any{"status": status, "status_timestamp": ts}).Error
	if err != nil {
		return nil, err
	}
	updated := rows[0]
	updated.Status = status
	updated.StatusTimestamp = ts
	return &updated, nil
}

// UpsertContactName implements Store.
func (s *GormStore) UpsertContactName(ctx context.Context, conversationID, displayName string) error {
	c := domain.Contact{ConversationID: conversationID, DisplayName: displayName}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "conversation_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"display_name"}),
		}).
		Create(&c).Error
}

// TouchContact implements Store. Runs in a transaction so the read-modify-
// write of the unread counter is a single step.
func (s *GormStore) TouchContact(ctx context.Context, conversationID, displayName string, last *domain.Message, incrementUnread bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c domain.Contact
		err := tx.Where("conversation_id = ?", conversationID).First(&c).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c = domain.Contact{
				ConversationID: conversationID,
				DisplayName:    displayName,
				LastMessage:    last,
				LastMessageAt:  last.CreatedAt,
			}
			if incrementUnread {
				c.UnreadCount = 1
			}
			return tx.Create(&c).Error
		case err != nil:
			return err
		}

		c.LastMessage = last
		c.LastMessageAt = last.CreatedAt
		if incrementUnread {
			c.UnreadCount++
		}
		if c.DisplayName == "" {
			c.DisplayName = displayName
		}
		return tx.Save(&c).Error
	})
}

// ResetUnread implements Store.
func (s *GormStore) ResetUnread(ctx context.Context, conversationID string) error {
	return s.db.WithContext(ctx).
		Model(&domain.Contact{}).
		Where("conversation_id = ?", conversationID).
		Update("unread_count", 0).Error
}

// GetMessage implements Store.
func (s *GormStore) GetMessage(ctx context.Context, id string) (*domain.Message, error) {
	var m domain.Message
	err := s.db.WithContext(ctx).Where("wa_message_id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMessages implements Store.
func (s *GormStore) ListMessages(ctx context.Context, conversationID string, limit int) ([]domain.Message, error) {
	out := []domain.Message{}
	q := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, wa_message_id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// ListContacts implements Store.
func (s *GormStore) ListContacts(ctx context.Context) ([]domain.Contact, error) {
	out := []domain.Contact{}
	err := s.db.WithContext(ctx).
		Order("last_message_at DESC, conversation_id ASC").
		Find(&out).Error
	return out, err
}

// Mode implements Store.
func (s *GormStore) Mode() Mode { return ModeConnected }

// Close implements Store.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
