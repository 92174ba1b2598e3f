package service

import (
	"LinkBio-Backend/internal/domain"
	"LinkBio-Backend/internal/repository"
	"LinkBio-Backend/internal/repository/memory"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAccountID = "11111111-1111-1111-1111-111111111111"

func newTestService(t *testing.T) (*ProfileService, *memory.MemStorage) {
	t.Helper()
	storage := memory.New()
	return NewProfileService(storage, zap.NewNop()), storage
}

func TestEnsureProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("creates profile from email local part", func(t *testing.T) {
		svc, _ := newTestService(t)

		profile, err := svc.EnsureProfile(ctx, testAccountID, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, testAccountID, profile.ID)
		assert.Equal(t, "alice", profile.Username)
	})

	t.Run("is idempotent", func(t *testing.T) {
		svc, _ := newTestService(t)

		first, err := svc.EnsureProfile(ctx, testAccountID, "alice@example.com")
		require.NoError(t, err)

		second, err := svc.EnsureProfile(ctx, testAccountID, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, first.Username, second.Username)
	})

	t.Run("strips invalid characters from local part", func(t *testing.T) {
		svc, _ := newTestService(t)

		profile, err := svc.EnsureProfile(ctx, testAccountID, "Al.ice+Tag@example.com")
		require.NoError(t, err)
		assert.Equal(t, "alicetag", profile.Username)
	})

	t.Run("falls back to id when local part is too short", func(t *testing.T) {
		svc, _ := newTestService(t)

		profile, err := svc.EnsureProfile(ctx, testAccountID, "a@example.com")
		require.NoError(t, err)
		assert.Equal(t, "user11111111", profile.Username)
	})

	t.Run("suffixes on username collision", func(t *testing.T) {
		svc, storage := newTestService(t)

		_, err := storage.CreateProfile(ctx, "22222222-2222-2222-2222-222222222222", "alice")
		require.NoError(t, err)

		profile, err := svc.EnsureProfile(ctx, testAccountID, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, testAccountID, profile.ID)
		assert.NotEqual(t, "alice", profile.Username)
		assert.Contains(t, profile.Username, "alice-")
		assert.LessOrEqual(t, len(profile.Username), 30)
	})

	t.Run("truncates long local parts", func(t *testing.T) {
		svc, _ := newTestService(t)

		profile, err := svc.EnsureProfile(ctx, testAccountID, "averyveryverylongaddresslocalpart@example.com")
		require.NoError(t, err)
		assert.LessOrEqual(t, len(profile.Username), 30)
	})
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("returns profile with visible links in order", func(t *testing.T) {
		svc, storage := newTestService(t)

		_, err := storage.CreateProfile(ctx, testAccountID, "alice")
		require.NoError(t, err)

		first, err := svc.AddLink(ctx, testAccountID, AddLinkInput{Title: "First", URL: "https://a.example.com"})
		require.NoError(t, err)
		second, err := svc.AddLink(ctx, testAccountID, AddLinkInput{Title: "Second", URL: "https://b.example.com"})
		require.NoError(t, err)
		hidden, err := svc.AddLink(ctx, testAccountID, AddLinkInput{Title: "Hidden", URL: "https://c.example.com"})
		require.NoError(t, err)

		require.NoError(t, svc.SetLinkVisibility(ctx, testAccountID, hidden.ID, false))

		resolved, err := svc.Resolve(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", resolved.Profile.Username)
		require.Len(t, resolved.Links, 2)
		assert.Equal(t, first.ID, resolved.Links[0].ID)
		assert.Equal(t, second.ID, resolved.Links[1].ID)
	})

	t.Run("lowercases the requested username", func(t *testing.T) {
		svc, storage := newTestService(t)

		_, err := storage.CreateProfile(ctx, testAccountID, "alice")
		require.NoError(t, err)

		resolved, err := svc.Resolve(ctx, "ALICE")
		require.NoError(t, err)
		assert.Equal(t, "alice", resolved.Profile.Username)
	})

	t.Run("returns not found for unknown username", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.Resolve(ctx, "nobody")
		assert.ErrorIs(t, err, repository.ErrProfileNotFound)
	})

	t.Run("profile with zero links resolves to empty list", func(t *testing.T) {
		svc, storage := newTestService(t)

		_, err := storage.CreateProfile(ctx, testAccountID, "alice")
		require.NoError(t, err)

		resolved, err := svc.Resolve(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, resolved.Links)
	})
}

func TestAddLink(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*ProfileService, *memory.MemStorage) {
		svc, storage := newTestService(t)
		_, err := storage.CreateProfile(ctx, testAccountID, "alice")
		require.NoError(t, err)
		return svc, storage
	}

	t.Run("assigns sequential positions", func(t *testing.T) {
		svc, _ := setup(t)

		first, err := svc.AddLink(ctx, testAccountID, AddLinkInput{Title: "One", URL: "https://a.example.com"})
		require.NoError(t, err)
		second, err := svc.AddLink(ctx, testAccountID, AddLinkInput{Title: "Two", URL: "https://b.example.com"})
		require.NoError(t, err)

		assert.Equal(t, 1, first.Position)
		assert.Equal(t, 2, second.Position)
	})

	t.Run("new links are visible with a default icon", func(t *testing.T) {
		svc, _ := setup(t)

		link, err := svc.AddLink(ctx, testAccountID, AddLinkInput{Title: "One", URL: "https://a.example.com"})
		require.NoError(t, err)
		assert.True(t, link.IsVisible)
		require.NotNil(t, link.Icon)
		assert.Equal(t, "lucide:link", *link.Icon)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		svc, _ := setup(t)

		_, err := svc.AddLink(ctx, testAccountID, AddLinkInput{Title: "   ", URL: "https://a.example.com"})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("rejects non-http schemes", func(t *testing.T) {
		svc, _ := setup(t)

		for _, bad := range []string{"ftp://files.example.com", "javascript:alert(1)", "not a url", "/relative"} {
			_, err := svc.AddLink(ctx, testAccountID, AddLinkInput{Title: "Bad", URL: bad})
			assert.ErrorIs(t, err, ErrInvalidInput, "url %q should be rejected", bad)
		}
	})

	t.Run("rejects title over 100 characters", func(t *testing.T) {
		svc, _ := setup(t)

		long := make([]byte, 101)
		for i := range long {
			long[i] = 'x'
		}
		_, err := svc.AddLink(ctx, testAccountID, AddLinkInput{Title: string(long), URL: "https://a.example.com"})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestLinkOwnership(t *testing.T) {
	ctx := context.Background()
	otherAccountID := "22222222-2222-2222-2222-222222222222"

	setup := func(t *testing.T) (*ProfileService, *domain.Link) {
		svc, storage := newTestService(t)
		_, err := storage.CreateProfile(ctx, testAccountID, "alice")
		require.NoError(t, err)
		_, err = storage.CreateProfile(ctx, otherAccountID, "bob")
		require.NoError(t, err)

		link, err := svc.AddLink(ctx, testAccountID, AddLinkInput{Title: "Mine", URL: "https://a.example.com"})
		require.NoError(t, err)
		return svc, link
	}

	t.Run("delete by non-owner reports not found and keeps the row", func(t *testing.T) {
		svc, link := setup(t)

		err := svc.DeleteLink(ctx, otherAccountID, link.ID)
		assert.ErrorIs(t, err, repository.ErrLinkNotFound)

		resolved, err := svc.Resolve(ctx, "alice")
		require.NoError(t, err)
		assert.Len(t, resolved.Links, 1)
	})

	t.Run("visibility toggle by non-owner reports not found", func(t *testing.T) {
		svc, link := setup(t)

		err := svc.SetLinkVisibility(ctx, otherAccountID, link.ID, false)
		assert.ErrorIs(t, err, repository.ErrLinkNotFound)

		resolved, err := svc.Resolve(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, resolved.Links, 1)
		assert.True(t, resolved.Links[0].IsVisible)
	})

	t.Run("owner can delete", func(t *testing.T) {
		svc, link := setup(t)

		require.NoError(t, svc.DeleteLink(ctx, testAccountID, link.ID))

		resolved, err := svc.Resolve(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, resolved.Links)
	})
}

func TestReorderLinks(t *testing.T) {
	ctx := context.Background()

	t.Run("rewrites positions to the given order", func(t *testing.T) {
		svc, storage := newTestService(t)
		_, err := storage.CreateProfile(ctx, testAccountID, "alice")
		require.NoError(t, err)

		a, err := svc.AddLink(ctx, testAccountID, AddLinkInput{Title: "A", URL: "https://a.example.com"})
		require.NoError(t, err)
		b, err := svc.AddLink(ctx, testAccountID, AddLinkInput{Title: "B", URL: "https://b.example.com"})
		require.NoError(t, err)
		c, err := svc.AddLink(ctx, testAccountID, AddLinkInput{Title: "C", URL: "https://c.example.com"})
		require.NoError(t, err)

		require.NoError(t, svc.ReorderLinks(ctx, testAccountID, []string{c.ID, a.ID, b.ID}))

		resolved, err := svc.Resolve(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, resolved.Links, 3)
		assert.Equal(t, c.ID, resolved.Links[0].ID)
		assert.Equal(t, a.ID, resolved.Links[1].ID)
		assert.Equal(t, b.ID, resolved.Links[2].ID)
	})

	t.Run("rejects empty id list", func(t *testing.T) {
		svc, _ := newTestService(t)

		err := svc.ReorderLinks(ctx, testAccountID, nil)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*ProfileService, *memory.MemStorage) {
		svc, storage := newTestService(t)
		_, err := storage.CreateProfile(ctx, testAccountID, "alice")
		require.NoError(t, err)
		return svc, storage
	}

	t.Run("sets and clears optional fields", func(t *testing.T) {
		svc, storage := setup(t)

		err := svc.UpdateProfile(ctx, testAccountID, UpdateProfileInput{
			DisplayName: "Alice",
			Bio:         "Hello",
			AvatarURL:   "https://cdn.example.com/a.png",
			Theme:       "dark",
		})
		require.NoError(t, err)

		profile, err := storage.GetProfileByID(ctx, testAccountID)
		require.NoError(t, err)
		require.NotNil(t, profile.DisplayName)
		assert.Equal(t, "Alice", *profile.DisplayName)
		assert.Equal(t, "dark", profile.Theme)

		err = svc.UpdateProfile(ctx, testAccountID, UpdateProfileInput{})
		require.NoError(t, err)

		profile, err = storage.GetProfileByID(ctx, testAccountID)
		require.NoError(t, err)
		assert.Nil(t, profile.DisplayName)
		assert.Nil(t, profile.Bio)
		assert.Equal(t, "dark", profile.Theme)
	})

	t.Run("rejects oversized bio", func(t *testing.T) {
		svc, _ := setup(t)

		long := make([]byte, 201)
		for i := range long {
			long[i] = 'x'
		}
		err := svc.UpdateProfile(ctx, testAccountID, UpdateProfileInput{Bio: string(long)})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("rejects invalid avatar url", func(t *testing.T) {
		svc, _ := setup(t)

		err := svc.UpdateProfile(ctx, testAccountID, UpdateProfileInput{AvatarURL: "not a url"})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestOverview(t *testing.T) {
	ctx := context.Background()

	t.Run("includes hidden links and counters", func(t *testing.T) {
		svc, storage := newTestService(t)

		profile, err := svc.EnsureProfile(ctx, testAccountID, "alice@example.com")
		require.NoError(t, err)

		link, err := svc.AddLink(ctx, testAccountID, AddLinkInput{Title: "One", URL: "https://a.example.com"})
		require.NoError(t, err)
		require.NoError(t, svc.SetLinkVisibility(ctx, testAccountID, link.ID, false))

		require.NoError(t, storage.CreatePageView(ctx, &domain.PageView{ProfileID: profile.ID}))
		require.NoError(t, storage.CreateLinkClick(ctx, &domain.LinkClick{LinkID: link.ID, ProfileID: profile.ID}))

		overview, err := svc.Overview(ctx, testAccountID, "alice@example.com")
		require.NoError(t, err)
		require.Len(t, overview.Links, 1)
		assert.False(t, overview.Links[0].IsVisible)
		assert.Equal(t, int64(1), overview.TotalViews)
		assert.Equal(t, int64(1), overview.TotalClicks)
	})
}
