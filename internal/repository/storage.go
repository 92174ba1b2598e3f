package repository

import (
	"LinkBio-Backend/internal/domain"
	"context"
	"errors"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrLinkNotFound    = errors.New("link not found")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrTokenNotFound   = errors.New("login token not found")
)

// ProfileUpdate carries the mutable profile fields. DisplayName, Bio and
// AvatarURL are always written (nil clears the column); Theme is written only
// when set.
type ProfileUpdate struct {
	DisplayName *string
	Bio         *string
	AvatarURL   *string
	Theme       *string
}

type Storage interface {
	// Profile methods
	GetProfileByUsername(ctx context.Context, username string) (*domain.Profile, error)
	GetProfileByID(ctx context.Context, id string) (*domain.Profile, error)
	CreateProfile(ctx context.Context, id, username string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) error

	// Link methods. Every mutation filters by both the link id and the
	// claimed owner in one statement; zero matched rows is ErrLinkNotFound,
	// never silent success.
	ListVisibleLinks(ctx context.Context, username string) ([]*domain.Link, error)
	ListLinks(ctx context.Context, profileID string) ([]*domain.Link, error)
	CreateLink(ctx context.Context, link *domain.Link) error
	SetLinkVisibility(ctx context.Context, linkID, ownerID string, visible bool) error
	DeleteLink(ctx context.Context, linkID, ownerID string) error
	ReorderLinks(ctx context.Context, ownerID string, orderedIDs []string) error

	// Analytics methods (append-only)
	CreatePageView(ctx context.Context, view *domain.PageView) error
	CreateLinkClick(ctx context.Context, click *domain.LinkClick) error
	CountPageViews(ctx context.Context, profileID string) (int64, error)
	CountLinkClicks(ctx context.Context, profileID string) (int64, error)

	// Account and magic-link methods
	// FindOrCreateAccount also records the login time on the found or
	// created row.
	FindOrCreateAccount(ctx context.Context, email string) (*domain.Account, error)
	CreateLoginToken(ctx context.Context, token *domain.LoginToken) error
	ListActiveLoginTokens(ctx context.Context, email string) ([]*domain.LoginToken, error)
	ConsumeLoginToken(ctx context.Context, tokenID string) error
}
