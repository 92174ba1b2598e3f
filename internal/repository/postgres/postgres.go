package postgres

import (
	"LinkBio-Backend/internal/domain"
	"LinkBio-Backend/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PostgresStorage implements the Storage interface for PostgreSQL.
type PostgresStorage struct {
	db  *gorm.DB
	log *zap.Logger
}

// New creates a new PostgreSQL storage instance.
func New(db *gorm.DB, log *zap.Logger) *PostgresStorage {
	return &PostgresStorage{
		db:  db,
		log: log,
	}
}

// --- Profile Methods ---

func (s *PostgresStorage) GetProfileByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	var profile domain.Profile

	err := s.db.WithContext(ctx).Where("username = ?", username).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrProfileNotFound
	}
	if err != nil {
		s.log.Error("failed to get profile by username", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &profile, nil
}

func (s *PostgresStorage) GetProfileByID(ctx context.Context, id string) (*domain.Profile, error) {
	var profile domain.Profile

	err := s.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrProfileNotFound
	}
	if err != nil {
		s.log.Error("failed to get profile by id", zap.String("profile_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &profile, nil
}

func (s *PostgresStorage) CreateProfile(ctx context.Context, id, username string) (*domain.Profile, error) {
	profile := domain.Profile{
		ID:       id,
		Username: username,
		Theme:    "default",
	}

	err := s.db.WithContext(ctx).Create(&profile).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Either the username is taken or the caller already has a profile.
		// A retry of the provisioning path lands here; the caller re-reads.
		return nil, repository.ErrUsernameTaken
	}
	if err != nil {
		s.log.Error("failed to create profile", zap.String("profile_id", id), zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	s.log.Info("created profile", zap.String("profile_id", id), zap.String("username", username))
	return &profile, nil
}

func (s *PostgresStorage) UpdateProfile(ctx context.Context, id string, upd repository.ProfileUpdate) error {
	fields := map[string]interface{}{
		"display_name": upd.DisplayName,
		"bio":          upd.Bio,
		"avatar_url":   upd.AvatarURL,
		"updated_at":   time.Now().UTC(),
	}
	if upd.Theme != nil {
		fields["theme"] = *upd.Theme
	}

	result := s.db.WithContext(ctx).Model(&domain.Profile{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		s.log.Error("failed to update profile", zap.String("profile_id", id), zap.Error(result.Error))
		return fmt.Errorf("failed to update profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrProfileNotFound
	}

	return nil
}

// --- Link Methods ---

// ListVisibleLinks resolves the owner by username so the resolver can fetch
// profile and links concurrently without one depending on the other.
func (s *PostgresStorage) ListVisibleLinks(ctx context.Context, username string) ([]*domain.Link, error) {
	var links []*domain.Link

	err := s.db.WithContext(ctx).
		Joins("JOIN profiles ON profiles.id = links.profile_id").
		Where("profiles.username = ? AND links.is_visible = ?", username, true).
		Order("links.position ASC, links.created_at ASC").
		Find(&links).Error
	if err != nil {
		s.log.Error("failed to list visible links", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("failed to list visible links: %w", err)
	}

	return links, nil
}

func (s *PostgresStorage) ListLinks(ctx context.Context, profileID string) ([]*domain.Link, error) {
	var links []*domain.Link

	err := s.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("position ASC, created_at ASC").
		Find(&links).Error
	if err != nil {
		s.log.Error("failed to list links", zap.String("profile_id", profileID), zap.Error(err))
		return nil, fmt.Errorf("failed to list links: %w", err)
	}

	return links, nil
}

// CreateLink inserts a link with its position assigned inside the INSERT
// itself, so two concurrent inserts for the same owner cannot read the same
// max and collide.
func (s *PostgresStorage) CreateLink(ctx context.Context, link *domain.Link) error {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	link.CreatedAt = now
	link.UpdatedAt = now

	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO links (id, profile_id, title, url, description, icon, position, is_visible, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(l.position), 0) + 1 FROM links l WHERE l.profile_id = ?),
			?, ?, ?)
		RETURNING position`,
		link.ID, link.ProfileID, link.Title, link.URL, link.Description, link.Icon,
		link.ProfileID, link.IsVisible, now, now,
	).Scan(&link.Position).Error
	if err != nil {
		s.log.Error("failed to create link", zap.String("profile_id", link.ProfileID), zap.Error(err))
		return fmt.Errorf("failed to create link: %w", err)
	}

	s.log.Info("created link",
		zap.String("link_id", link.ID),
		zap.String("profile_id", link.ProfileID),
		zap.Int("position", link.Position))
	return nil
}

func (s *PostgresStorage) SetLinkVisibility(ctx context.Context, linkID, ownerID string, visible bool) error {
	result := s.db.WithContext(ctx).Model(&domain.Link{}).
		Where("id = ? AND profile_id = ?", linkID, ownerID).
		Updates(map[string]interface{}{"is_visible": visible, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		s.log.Error("failed to update link visibility", zap.String("link_id", linkID), zap.Error(result.Error))
		return fmt.Errorf("failed to update link visibility: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Wrong owner or nonexistent id. The datastore reports this as a
		// clean no-op; it must surface as a failure.
		return repository.ErrLinkNotFound
	}

	return nil
}

func (s *PostgresStorage) DeleteLink(ctx context.Context, linkID, ownerID string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND profile_id = ?", linkID, ownerID).
		Delete(&domain.Link{})
	if result.Error != nil {
		s.log.Error("failed to delete link", zap.String("link_id", linkID), zap.Error(result.Error))
		return fmt.Errorf("failed to delete link: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrLinkNotFound
	}

	s.log.Info("deleted link", zap.String("link_id", linkID), zap.String("profile_id", ownerID))
	return nil
}

func (s *PostgresStorage) ReorderLinks(ctx context.Context, ownerID string, orderedIDs []string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		for i, linkID := range orderedIDs {
			// Ids the caller does not own match zero rows and are skipped.
			err := tx.Model(&domain.Link{}).
				Where("id = ? AND profile_id = ?", linkID, ownerID).
				Updates(map[string]interface{}{"position": i + 1, "updated_at": now}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error("failed to reorder links", zap.String("profile_id", ownerID), zap.Error(err))
		return fmt.Errorf("failed to reorder links: %w", err)
	}

	return nil
}

// --- Analytics Methods ---

func (s *PostgresStorage) CreatePageView(ctx context.Context, view *domain.PageView) error {
	if err := s.db.WithContext(ctx).Create(view).Error; err != nil {
		s.log.Error("failed to create page view", zap.String("profile_id", view.ProfileID), zap.Error(err))
		return fmt.Errorf("failed to create page view: %w", err)
	}
	return nil
}

func (s *PostgresStorage) CreateLinkClick(ctx context.Context, click *domain.LinkClick) error {
	if err := s.db.WithContext(ctx).Create(click).Error; err != nil {
		s.log.Error("failed to create link click",
			zap.String("link_id", click.LinkID),
			zap.String("profile_id", click.ProfileID),
			zap.Error(err))
		return fmt.Errorf("failed to create link click: %w", err)
	}
	return nil
}

func (s *PostgresStorage) CountPageViews(ctx context.Context, profileID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.PageView{}).Where("profile_id = ?", profileID).Count(&count).Error
	if err != nil {
		s.log.Error("failed to count page views", zap.String("profile_id", profileID), zap.Error(err))
		return 0, fmt.Errorf("failed to count page views: %w", err)
	}
	return count, nil
}

func (s *PostgresStorage) CountLinkClicks(ctx context.Context, profileID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.LinkClick{}).Where("profile_id = ?", profileID).Count(&count).Error
	if err != nil {
		s.log.Error("failed to count link clicks", zap.String("profile_id", profileID), zap.Error(err))
		return 0, fmt.Errorf("failed to count link clicks: %w", err)
	}
	return count, nil
}

// --- Account and Magic-Link Methods ---

func (s *PostgresStorage) FindOrCreateAccount(ctx context.Context, email string) (*domain.Account, error) {
	var account domain.Account
	now := time.Now().UTC()

	err := s.db.WithContext(ctx).Where("email = ?", email).First(&account).Error
	if err == nil {
		if err := s.db.WithContext(ctx).Model(&account).Update("last_login_at", now).Error; err != nil {
			s.log.Warn("failed to update last login time", zap.String("account_id", account.ID), zap.Error(err))
		}
		return &account, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.log.Error("failed to find account", zap.Error(err))
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	account = domain.Account{
		Email:       email,
		LastLoginAt: &now,
	}
	err = s.db.WithContext(ctx).Create(&account).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost a race with a concurrent first login; the row exists now.
		if err := s.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
			return nil, fmt.Errorf("failed to find account after duplicate insert: %w", err)
		}
		return &account, nil
	}
	if err != nil {
		s.log.Error("failed to create account", zap.Error(err))
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.log.Info("created account", zap.String("account_id", account.ID))
	return &account, nil
}

func (s *PostgresStorage) CreateLoginToken(ctx context.Context, token *domain.LoginToken) error {
	if err := s.db.WithContext(ctx).Create(token).Error; err != nil {
		s.log.Error("failed to create login token", zap.Error(err))
		return fmt.Errorf("failed to create login token: %w", err)
	}
	return nil
}

func (s *PostgresStorage) ListActiveLoginTokens(ctx context.Context, email string) ([]*domain.LoginToken, error) {
	var tokens []*domain.LoginToken

	err := s.db.WithContext(ctx).
		Where("email = ? AND consumed_at IS NULL AND expires_at > ?", email, time.Now().UTC()).
		Order("created_at DESC").
		Limit(5).
		Find(&tokens).Error
	if err != nil {
		s.log.Error("failed to list login tokens", zap.Error(err))
		return nil, fmt.Errorf("failed to list login tokens: %w", err)
	}

	return tokens, nil
}

// ConsumeLoginToken marks a token used. The consumed_at IS NULL guard makes
// redemption one-time even under concurrent verification attempts.
func (s *PostgresStorage) ConsumeLoginToken(ctx context.Context, tokenID string) error {
	result := s.db.WithContext(ctx).Model(&domain.LoginToken{}).
		Where("id = ? AND consumed_at IS NULL", tokenID).
		Update("consumed_at", time.Now().UTC())
	if result.Error != nil {
		s.log.Error("failed to consume login token", zap.String("token_id", tokenID), zap.Error(result.Error))
		return fmt.Errorf("failed to consume login token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrTokenNotFound
	}

	return nil
}
