package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agriconnect/whatsapp-backend/internal/models"
)

// DatabaseSessionStore persists sessions in the whatsapp_sessions table
type DatabaseSessionStore struct {
	db *gorm.DB
}

// NewDatabaseSessionStore creates a session store backed by db
func NewDatabaseSessionStore(db *gorm.DB) *DatabaseSessionStore {
	return &DatabaseSessionStore{db: db}
}

var (
	_ SessionStore   = (*DatabaseSessionStore)(nil)
	_ SessionSweeper = (*DatabaseSessionStore)(nil)
	_ SessionCounter = (*DatabaseSessionStore)(nil)
)

func (d *DatabaseSessionStore) Get(ctx context.Context, userID string) (*models.Session, error) {
	var row models.WhatsAppSession
	err := d.db.WithContext(ctx).First(&row, "phone_number = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: failed to load session: %w", err)
	}

	session := &models.Session{
		UserID:    row.PhoneNumber,
		State:     models.ConversationState(row.State),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.Draft != "" {
		var draft models.DraftProduct
		if err := json.Unmarshal([]byte(row.Draft), &draft); err != nil {
			return nil, fmt.Errorf("storage: failed to decode session draft: %w", err)
		}
		session.Draft = &draft
	}
	return session, nil
}

func (d *DatabaseSessionStore) Set(ctx context.Context, session *models.Session) error {
	if session == nil || session.UserID == "" {
		return errors.New("session requires a user id")
	}

	row := models.WhatsAppSession{
		PhoneNumber: session.UserID,
		State:       string(session.State),
		CreatedAt:   session.CreatedAt,
		UpdatedAt:   session.UpdatedAt,
	}
	if session.Draft != nil {
		data, err := json.Marshal(session.Draft)
		if err != nil {
			return fmt.Errorf("storage: failed to encode session draft: %w", err)
		}
		row.Draft = string(data)
	}

	err := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone_number"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "draft", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("storage: failed to persist session: %w", err)
	}
	return nil
}

func (d *DatabaseSessionStore) Sweep(ctx context.Context, idleFor time.Duration) (int, error) {
	res := d.db.WithContext(ctx).
		Where("updated_at < ?", time.Now().Add(-idleFor)).
		Delete(&models.WhatsAppSession{})
	if res.Error != nil {
		return 0, fmt.Errorf("storage: failed to sweep sessions: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

func (d *DatabaseSessionStore) Count(ctx context.Context) (int, error) {
	var count int64
	if err := d.db.WithContext(ctx).Model(&models.WhatsAppSession{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("storage: failed to count sessions: %w", err)
	}
	return int(count), nil
}
