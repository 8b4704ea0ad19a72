package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"salescore/internal/core/apperror"
	"salescore/internal/core/id"
	"salescore/internal/core/scope"
	"salescore/internal/core/tx"
)

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	users map[id.ID]*User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[id.ID]*User)}
}

func (r *fakeUserRepo) clone(u *User) *User {
	c := *u
	return &c
}

func (r *fakeUserRepo) Create(ctx context.Context, user *User) error {
	r.users[user.ID] = r.clone(user)
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, userID id.ID) (*User, error) {
	u, ok := r.users[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	return r.clone(u), nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return r.clone(u), nil
		}
	}
	return nil, apperror.NewNotFound("user", email)
}

func (r *fakeUserRepo) Update(ctx context.Context, user *User) error {
	if _, ok := r.users[user.ID]; !ok {
		return apperror.NewNotFound("user", user.ID.String())
	}
	r.users[user.ID] = r.clone(user)
	return nil
}

func (r *fakeUserRepo) Exists(ctx context.Context, email string) (bool, error) {
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) List(ctx context.Context, sc scope.Scope, filter UserFilter) ([]User, int, error) {
	var out []User
	for _, u := range r.users {
		if u.CompanyID == sc.CompanyID {
			out = append(out, *u)
		}
	}
	return out, len(out), nil
}

// fakeTokenRepo is an in-memory TokenRepository.
type fakeTokenRepo struct {
	tokens map[string]*RefreshToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*RefreshToken)}
}

func (r *fakeTokenRepo) SaveRefreshToken(ctx context.Context, token *RefreshToken) error {
	c := *token
	r.tokens[token.TokenHash] = &c
	return nil
}

func (r *fakeTokenRepo) GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error) {
	t, ok := r.tokens[tokenHash]
	if !ok {
		return nil, apperror.NewNotFound("refresh token", tokenHash)
	}
	c := *t
	return &c, nil
}

func (r *fakeTokenRepo) RevokeRefreshToken(ctx context.Context, tokenID id.ID, reason string) error {
	now := time.Now().UTC()
	for _, t := range r.tokens {
		if t.ID == tokenID {
			t.RevokedAt = &now
			t.RevokedReason = reason
			return nil
		}
	}
	return apperror.NewNotFound("refresh token", tokenID.String())
}

func (r *fakeTokenRepo) RevokeAllUserTokens(ctx context.Context, userID id.ID, reason string) error {
	now := time.Now().UTC()
	for _, t := range r.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
			t.RevokedReason = reason
		}
	}
	return nil
}

func (r *fakeTokenRepo) CleanupExpiredTokens(ctx context.Context) (int, error) {
	return 0, nil
}

var (
	_ UserRepository  = (*fakeUserRepo)(nil)
	_ TokenRepository = (*fakeTokenRepo)(nil)
)

func newTestService(userRepo UserRepository, tokenRepo TokenRepository) *Service {
	jwtService := NewJWTService(DefaultJWTConfig("test-secret"))
	return NewService(userRepo, tokenRepo, tx.Noop{}, jwtService, DefaultServiceConfig())
}

func seedUser(t *testing.T, repo *fakeUserRepo, companyID id.ID, email, password string) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := NewUser(companyID, email, string(hash))
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	companyID := id.New()

	t.Run("valid credentials return token pair", func(t *testing.T) {
		userRepo := newFakeUserRepo()
		seedUser(t, userRepo, companyID, "alice@example.com", "correct-horse")
		svc := newTestService(userRepo, newFakeTokenRepo())

		tokens, user, err := svc.Login(ctx, Credentials{Email: "alice@example.com", Password: "correct-horse"})
		require.NoError(t, err)
		assert.NotEmpty(t, tokens.AccessToken)
		assert.NotEmpty(t, tokens.RefreshToken)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.NotNil(t, user.LastLoginAt)
	})

	t.Run("access token carries company claim", func(t *testing.T) {
		userRepo := newFakeUserRepo()
		seedUser(t, userRepo, companyID, "alice@example.com", "correct-horse")
		svc := newTestService(userRepo, newFakeTokenRepo())

		tokens, _, err := svc.Login(ctx, Credentials{Email: "alice@example.com", Password: "correct-horse"})
		require.NoError(t, err)

		jwtService := NewJWTService(DefaultJWTConfig("test-secret"))
		userCtx, err := jwtService.ValidateToken(tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, companyID.String(), userCtx.CompanyID)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		userRepo := newFakeUserRepo()
		seedUser(t, userRepo, companyID, "alice@example.com", "correct-horse")
		svc := newTestService(userRepo, newFakeTokenRepo())

		_, _, err := svc.Login(ctx, Credentials{Email: "alice@example.com", Password: "wrong"})
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
	})

	t.Run("unknown email is rejected without detail", func(t *testing.T) {
		svc := newTestService(newFakeUserRepo(), newFakeTokenRepo())

		_, _, err := svc.Login(ctx, Credentials{Email: "nobody@example.com", Password: "x"})
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
	})

	t.Run("account locks after repeated failures", func(t *testing.T) {
		userRepo := newFakeUserRepo()
		user := seedUser(t, userRepo, companyID, "alice@example.com", "correct-horse")
		svc := newTestService(userRepo, newFakeTokenRepo())

		for i := 0; i < 5; i++ {
			_, _, err := svc.Login(ctx, Credentials{Email: "alice@example.com", Password: "wrong"})
			require.Error(t, err)
		}

		stored, err := userRepo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsLocked())

		// correct password no longer helps while locked
		_, _, err = svc.Login(ctx, Credentials{Email: "alice@example.com", Password: "correct-horse"})
		require.Error(t, err)
	})

	t.Run("inactive account cannot login", func(t *testing.T) {
		userRepo := newFakeUserRepo()
		user := seedUser(t, userRepo, companyID, "alice@example.com", "correct-horse")
		user.IsActive = false
		require.NoError(t, userRepo.Update(ctx, user))
		svc := newTestService(userRepo, newFakeTokenRepo())

		_, _, err := svc.Login(ctx, Credentials{Email: "alice@example.com", Password: "correct-horse"})
		require.Error(t, err)
	})
}

func TestRefreshToken(t *testing.T) {
	ctx := context.Background()
	companyID := id.New()

	t.Run("valid refresh rotates the token", func(t *testing.T) {
		userRepo := newFakeUserRepo()
		seedUser(t, userRepo, companyID, "alice@example.com", "correct-horse")
		tokenRepo := newFakeTokenRepo()
		svc := newTestService(userRepo, tokenRepo)

		tokens, _, err := svc.Login(ctx, Credentials{Email: "alice@example.com", Password: "correct-horse"})
		require.NoError(t, err)

		rotated, err := svc.RefreshToken(ctx, tokens.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

		// the old token is revoked and cannot be replayed
		_, err = svc.RefreshToken(ctx, tokens.RefreshToken)
		require.Error(t, err)
	})

	t.Run("unknown refresh token is rejected", func(t *testing.T) {
		svc := newTestService(newFakeUserRepo(), newFakeTokenRepo())

		_, err := svc.RefreshToken(ctx, "not-a-real-token")
		require.Error(t, err)
	})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	companyID := id.New()

	t.Run("creates user with hashed password", func(t *testing.T) {
		userRepo := newFakeUserRepo()
		svc := newTestService(userRepo, newFakeTokenRepo())

		user, err := svc.Register(ctx, RegisterRequest{
			CompanyID: companyID,
			Email:     "bob@example.com",
			Password:  "long-enough-pass",
			FirstName: "Bob",
		})
		require.NoError(t, err)
		assert.Equal(t, companyID, user.CompanyID)
		assert.NotEqual(t, "long-enough-pass", user.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("long-enough-pass")))
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		userRepo := newFakeUserRepo()
		seedUser(t, userRepo, companyID, "bob@example.com", "whatever-pass")
		svc := newTestService(userRepo, newFakeTokenRepo())

		_, err := svc.Register(ctx, RegisterRequest{
			CompanyID: companyID,
			Email:     "bob@example.com",
			Password:  "long-enough-pass",
		})
		require.Error(t, err)
	})

	t.Run("rejects short password", func(t *testing.T) {
		svc := newTestService(newFakeUserRepo(), newFakeTokenRepo())

		_, err := svc.Register(ctx, RegisterRequest{
			CompanyID: companyID,
			Email:     "bob@example.com",
			Password:  "short",
		})
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	})

	t.Run("rejects missing company", func(t *testing.T) {
		svc := newTestService(newFakeUserRepo(), newFakeTokenRepo())

		_, err := svc.Register(ctx, RegisterRequest{
			Email:    "bob@example.com",
			Password: "long-enough-pass",
		})
		require.Error(t, err)
	})
}

func TestGetUserByID(t *testing.T) {
	ctx := context.Background()

	t.Run("cross-company lookup reads as not found", func(t *testing.T) {
		userRepo := newFakeUserRepo()
		user := seedUser(t, userRepo, id.New(), "alice@example.com", "correct-horse")
		svc := newTestService(userRepo, newFakeTokenRepo())

		otherCompany := scope.New(id.New(), id.New())
		_, err := svc.GetUserByID(ctx, otherCompany, user.ID)
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeNotFound, appErr.Code)
	})
}
