package auth_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/teamauth/pkg/auth"
)

// MockUserStorage is a mock implementation of UserStorage.
type MockUserStorage struct {
	mock.Mock
}

func (m *MockUserStorage) CreateUser(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *MockUserStorage) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *MockUserStorage) UpdateUser(ctx context.Context, id uuid.UUID, upd auth.ProfileUpdate) (*auth.User, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

// fakeAdapter is a ProviderAdapter driven by a function.
type fakeAdapter struct {
	resolve func(ctx context.Context, code string) (auth.ProviderProfile, error)
}

func (f *fakeAdapter) ProviderID() auth.AuthProvider { return auth.ProviderGoogle }

func (f *fakeAdapter) AuthURL(state string) (string, error) {
	return "https://accounts.example.com/o/oauth2/auth?state=" + state, nil
}

func (f *fakeAdapter) ResolveProfile(ctx context.Context, code string) (auth.ProviderProfile, error) {
	return f.resolve(ctx, code)
}

func staticProfile(email, name string) *fakeAdapter {
	return &fakeAdapter{resolve: func(context.Context, string) (auth.ProviderProfile, error) {
		return auth.ProviderProfile{
			ProviderUserID: "g-" + email,
			Email:          email,
			EmailVerified:  true,
			Name:           name,
			AvatarURL:      "https://lh3.example.com/a.png",
		}, nil
	}}
}

type failingIssuer struct{ err error }

func (f failingIssuer) Issue(string) (string, error) { return "", f.err }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
