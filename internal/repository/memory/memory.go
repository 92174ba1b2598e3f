package memory

import (
	"LinkBio-Backend/internal/domain"
	"LinkBio-Backend/internal/repository"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStorage is a mutex-guarded in-memory Storage implementation used in
// tests. Semantics mirror the postgres store: ownership-filtered mutations,
// atomic position assignment, deterministic link ordering.
type MemStorage struct {
	mu              sync.RWMutex
	profiles        map[string]*domain.Profile // by id
	links           map[string]*domain.Link    // by id
	pageViews       []*domain.PageView
	linkClicks      []*domain.LinkClick
	accountsByEmail map[string]*domain.Account
	loginTokens     map[string]*domain.LoginToken
}

func New() *MemStorage {
	return &MemStorage{
		profiles:        make(map[string]*domain.Profile),
		links:           make(map[string]*domain.Link),
		accountsByEmail: make(map[string]*domain.Account),
		loginTokens:     make(map[string]*domain.LoginToken),
	}
}

// --- Profile Methods ---

func (s *MemStorage) GetProfileByUsername(_ context.Context, username string) (*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.profiles {
		if p.Username == username {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrProfileNotFound
}

func (s *MemStorage) GetProfileByID(_ context.Context, id string) (*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemStorage) CreateProfile(_ context.Context, id, username string) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.profiles[id]; exists {
		return nil, repository.ErrUsernameTaken
	}
	for _, p := range s.profiles {
		if p.Username == username {
			return nil, repository.ErrUsernameTaken
		}
	}
	now := time.Now().UTC()
	profile := &domain.Profile{
		ID:        id,
		Username:  username,
		Theme:     "default",
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.profiles[id] = profile
	cp := *profile
	return &cp, nil
}

func (s *MemStorage) UpdateProfile(_ context.Context, id string, upd repository.ProfileUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return repository.ErrProfileNotFound
	}
	p.DisplayName = upd.DisplayName
	p.Bio = upd.Bio
	p.AvatarURL = upd.AvatarURL
	if upd.Theme != nil {
		p.Theme = *upd.Theme
	}
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// --- Link Methods ---

func (s *MemStorage) ListVisibleLinks(_ context.Context, username string) ([]*domain.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.profiles {
		if p.Username == username {
			return s.collectLinks(p.ID, true), nil
		}
	}
	return nil, nil
}

func (s *MemStorage) ListLinks(_ context.Context, profileID string) ([]*domain.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectLinks(profileID, false), nil
}

func (s *MemStorage) collectLinks(profileID string, visibleOnly bool) []*domain.Link {
	var links []*domain.Link
	for _, l := range s.links {
		if l.ProfileID != profileID {
			continue
		}
		if visibleOnly && !l.IsVisible {
			continue
		}
		cp := *l
		links = append(links, &cp)
	}
	sort.Slice(links, func(i, j int) bool {
		if links[i].Position != links[j].Position {
			return links[i].Position < links[j].Position
		}
		return links[i].CreatedAt.Before(links[j].CreatedAt)
	})
	return links
}

func (s *MemStorage) CreateLink(_ context.Context, link *domain.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	maxPos := 0
	for _, l := range s.links {
		if l.ProfileID == link.ProfileID && l.Position > maxPos {
			maxPos = l.Position
		}
	}
	now := time.Now().UTC()
	link.Position = maxPos + 1
	link.CreatedAt = now
	link.UpdatedAt = now
	cp := *link
	s.links[link.ID] = &cp
	return nil
}

func (s *MemStorage) SetLinkVisibility(_ context.Context, linkID, ownerID string, visible bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.links[linkID]
	if !ok || l.ProfileID != ownerID {
		return repository.ErrLinkNotFound
	}
	l.IsVisible = visible
	l.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemStorage) DeleteLink(_ context.Context, linkID, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.links[linkID]
	if !ok || l.ProfileID != ownerID {
		return repository.ErrLinkNotFound
	}
	delete(s.links, linkID)
	return nil
}

func (s *MemStorage) ReorderLinks(_ context.Context, ownerID string, orderedIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for i, id := range orderedIDs {
		l, ok := s.links[id]
		if !ok || l.ProfileID != ownerID {
			continue
		}
		l.Position = i + 1
		l.UpdatedAt = now
	}
	return nil
}

// --- Analytics Methods ---

func (s *MemStorage) CreatePageView(_ context.Context, view *domain.PageView) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if view.ID == "" {
		view.ID = uuid.NewString()
	}
	if view.ViewedAt.IsZero() {
		view.ViewedAt = time.Now().UTC()
	}
	cp := *view
	s.pageViews = append(s.pageViews, &cp)
	return nil
}

func (s *MemStorage) CreateLinkClick(_ context.Context, click *domain.LinkClick) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if click.ID == "" {
		click.ID = uuid.NewString()
	}
	if click.ClickedAt.IsZero() {
		click.ClickedAt = time.Now().UTC()
	}
	cp := *click
	s.linkClicks = append(s.linkClicks, &cp)
	return nil
}

func (s *MemStorage) CountPageViews(_ context.Context, profileID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, v := range s.pageViews {
		if v.ProfileID == profileID {
			count++
		}
	}
	return count, nil
}

func (s *MemStorage) CountLinkClicks(_ context.Context, profileID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, c := range s.linkClicks {
		if c.ProfileID == profileID {
			count++
		}
	}
	return count, nil
}

// PageViews returns a copy of all recorded page views, for test assertions.
func (s *MemStorage) PageViews() []*domain.PageView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.PageView, len(s.pageViews))
	copy(out, s.pageViews)
	return out
}

// LinkClicks returns a copy of all recorded link clicks, for test assertions.
func (s *MemStorage) LinkClicks() []*domain.LinkClick {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.LinkClick, len(s.linkClicks))
	copy(out, s.linkClicks)
	return out
}

// --- Account and Magic-Link Methods ---

func (s *MemStorage) FindOrCreateAccount(_ context.Context, email string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	if acc, ok := s.accountsByEmail[email]; ok {
		acc.LastLoginAt = &now
		cp := *acc
		return &cp, nil
	}
	acc := &domain.Account{
		ID:          uuid.NewString(),
		Email:       email,
		LastLoginAt: &now,
		CreatedAt:   now,
	}
	s.accountsByEmail[email] = acc
	cp := *acc
	return &cp, nil
}

func (s *MemStorage) CreateLoginToken(_ context.Context, token *domain.LoginToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	cp := *token
	s.loginTokens[token.ID] = &cp
	return nil
}

func (s *MemStorage) ListActiveLoginTokens(_ context.Context, email string) ([]*domain.LoginToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := time.Now().UTC()
	var tokens []*domain.LoginToken
	for _, t := range s.loginTokens {
		if t.Email == email && t.Usable(now) {
			cp := *t
			tokens = append(tokens, &cp)
		}
	}
	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].CreatedAt.After(tokens[j].CreatedAt)
	})
	return tokens, nil
}

func (s *MemStorage) ConsumeLoginToken(_ context.Context, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.loginTokens[tokenID]
	if !ok || t.ConsumedAt != nil {
		return repository.ErrTokenNotFound
	}
	now := time.Now().UTC()
	t.ConsumedAt = &now
	return nil
}
