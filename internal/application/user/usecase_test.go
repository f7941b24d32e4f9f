package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/xiebiao/bookcatalog/internal/domain/user"
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
	"github.com/xiebiao/bookcatalog/pkg/jwt"
)

type memoryRepo struct {
	users []*user.User
}

func (m *memoryRepo) Create(_ context.Context, u *user.User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return apperrors.ErrEmailDuplicate
		}
	}
	u.ID = uint(len(m.users) + 1)
	m.users = append(m.users, u)
	return nil
}

func (m *memoryRepo) FindByID(_ context.Context, id uint) (*user.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *memoryRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

// memorySessions 内存版会话存储
type memorySessions struct {
	sessions  map[uint]map[string]interface{}
	ttls      map[uint]time.Duration
	blacklist map[string]time.Duration
}

func newMemorySessions() *memorySessions {
	return &memorySessions{
		sessions:  make(map[uint]map[string]interface{}),
		ttls:      make(map[uint]time.Duration),
		blacklist: make(map[string]time.Duration),
	}
}

func (m *memorySessions) SaveSession(_ context.Context, userID uint, data map[string]interface{}, ttl time.Duration) error {
	m.sessions[userID] = data
	m.ttls[userID] = ttl
	return nil
}

func (m *memorySessions) GetSession(_ context.Context, userID uint) (map[string]string, error) {
	if _, ok := m.sessions[userID]; !ok {
		return nil, apperrors.ErrUnauthorized
	}
	return map[string]string{}, nil
}

func (m *memorySessions) DeleteSession(_ context.Context, userID uint) error {
	delete(m.sessions, userID)
	return nil
}

func (m *memorySessions) AddToBlacklist(_ context.Context, tokenID string, ttl time.Duration) error {
	m.blacklist[tokenID] = ttl
	return nil
}

type fixture struct {
	service  user.Service
	jwt      *jwt.Manager
	sessions *memorySessions
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{
		service:  user.NewService(&memoryRepo{}, user.WithBcryptCost(bcrypt.MinCost)),
		jwt:      jwt.NewManager("test-secret", time.Hour, 24*time.Hour),
		sessions: newMemorySessions(),
	}
	_, err := NewRegisterUseCase(f.service).Execute(context.Background(), RegisterRequest{
		Email:    "Alice@Example.com",
		Password: "secret123",
		Nickname: "alice",
	})
	require.NoError(t, err)
	return f
}

func TestRegisterUseCase(t *testing.T) {
	f := newFixture(t)

	_, err := NewRegisterUseCase(f.service).Execute(context.Background(), RegisterRequest{
		Email:    "alice@example.com",
		Password: "secret123",
		Nickname: "alice2",
	})
	assert.ErrorIs(t, err, apperrors.ErrEmailDuplicate)

	info, err := NewProfileUseCase(f.service).Execute(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, UserInfo{ID: 1, Email: "alice@example.com", Nickname: "alice"}, *info)
}

func TestLoginUseCase(t *testing.T) {
	f := newFixture(t)
	uc := NewLoginUseCase(f.service, f.jwt, f.sessions)
	ctx := WithClientIP(context.Background(), "10.0.0.1")

	resp, err := uc.Execute(ctx, LoginRequest{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.User.Nickname)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := f.jwt.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(1), claims.UserID)

	require.Contains(t, f.sessions.sessions, uint(1))
	assert.Equal(t, "10.0.0.1", f.sessions.sessions[1]["ip"])
	assert.Equal(t, 24*time.Hour, f.sessions.ttls[1])

	_, err = uc.Execute(ctx, LoginRequest{Email: "alice@example.com", Password: "wrong1234"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)
}

func TestRefreshAndLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	login, err := NewLoginUseCase(f.service, f.jwt, f.sessions).Execute(ctx, LoginRequest{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	refresh := NewRefreshUseCase(f.service, f.jwt, f.sessions)
	refreshed, err := refresh.Execute(ctx, login.RefreshToken)
	require.NoError(t, err)
	claims, err := f.jwt.ParseToken(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Email)

	accessClaims, err := f.jwt.ParseToken(login.AccessToken)
	require.NoError(t, err)
	require.NoError(t, NewLogoutUseCase(f.sessions).Execute(ctx, accessClaims))

	assert.NotContains(t, f.sessions.sessions, uint(1))
	ttl, ok := f.sessions.blacklist[accessClaims.ID]
	require.True(t, ok)
	assert.Greater(t, ttl, 59*time.Minute)

	// 登出后Refresh Token不可再用
	_, err = refresh.Execute(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = refresh.Execute(ctx, "not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
