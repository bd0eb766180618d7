package auth_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/materialflow/mrs-management/internal/auth"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Suite")
}

// Mock user repository for testing
type mockAuthRepository struct {
	users map[string]mockCredentials
}

type mockCredentials struct {
	userID       int64
	passwordHash string
	isActive     bool
}

func newMockAuthRepository() *mockAuthRepository {
	return &mockAuthRepository{users: make(map[string]mockCredentials)}
}

func (m *mockAuthRepository) addUser(email, password string, userID int64, isActive bool) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	Expect(err).ToNot(HaveOccurred())
	m.users[email] = mockCredentials{
		userID:       userID,
		passwordHash: string(hash),
		isActive:     isActive,
	}
}

func (m *mockAuthRepository) GetCredentials(email string) (string, int64, bool, error) {
	creds, exists := m.users[email]
	if !exists {
		return "", 0, false, auth.ErrInvalidCredentials
	}
	return creds.passwordHash, creds.userID, creds.isActive, nil
}

func (m *mockAuthRepository) GetIdentity(userID int64) (*auth.User, error) {
	for email, creds := range m.users {
		if creds.userID == userID {
			return &auth.User{ID: userID, Email: email, Role: "STAFF"}, nil
		}
	}
	return nil, auth.ErrInvalidCredentials
}

var _ = Describe("AuthService", func() {
	var (
		service *auth.Service
		repo    *mockAuthRepository
	)

	BeforeEach(func() {
		repo = newMockAuthRepository()
		repo.addUser("jordan.reyes@mail.com", "correct-horse", 1, true)
		repo.addUser("dormant@mail.com", "correct-horse", 2, false)

		tokenGen := auth.NewJWTTokenGenerator("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
		service = auth.NewService(repo, tokenGen)
	})

	Describe("Authenticate", func() {
		It("returns both tokens on valid credentials", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{
				Email:    "jordan.reyes@mail.com",
				Password: "correct-horse",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(tokens.AccessToken).ToNot(BeEmpty())
			Expect(tokens.RefreshToken).ToNot(BeEmpty())
		})

		It("rejects a wrong password", func() {
			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "jordan.reyes@mail.com",
				Password: "battery-staple",
			})
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})

		It("rejects an unknown email", func() {
			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "nobody@mail.com",
				Password: "correct-horse",
			})
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})

		It("rejects an inactive user even with valid credentials", func() {
			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "dormant@mail.com",
				Password: "correct-horse",
			})
			Expect(err).To(MatchError(auth.ErrUserInactive))
		})

		It("requires email and password", func() {
			_, err := service.Authenticate(auth.LoginDTO{Password: "correct-horse"})
			Expect(err).To(HaveOccurred())

			_, err = service.Authenticate(auth.LoginDTO{Email: "jordan.reyes@mail.com"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("token validation", func() {
		It("round-trips claims through an access token", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{
				Email:    "jordan.reyes@mail.com",
				Password: "correct-horse",
			})
			Expect(err).ToNot(HaveOccurred())

			claims, err := service.ValidateAccessToken(tokens.AccessToken)
			Expect(err).ToNot(HaveOccurred())
			Expect(claims.UserID).To(Equal(int64(1)))
			Expect(claims.Email).To(Equal("jordan.reyes@mail.com"))
		})

		It("rejects a token signed with a different secret", func() {
			other := auth.NewJWTTokenGenerator("other-secret", "other-secret", time.Minute, time.Minute)
			forged, err := other.GenerateAccessToken(1, "jordan.reyes@mail.com")
			Expect(err).ToNot(HaveOccurred())

			_, err = service.ValidateAccessToken(forged)
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})

		It("rejects an expired token", func() {
			// built directly because the constructor replaces non-positive TTLs
			expired := &auth.JWTTokenGenerator{
				AccessTokenSecret:  []byte("access-secret"),
				RefreshTokenSecret: []byte("refresh-secret"),
				AccessTokenTTL:     -time.Minute,
				RefreshTokenTTL:    -time.Minute,
			}

			token, err := expired.GenerateAccessToken(1, "jordan.reyes@mail.com")
			Expect(err).ToNot(HaveOccurred())

			_, err = service.ValidateAccessToken(token)
			Expect(err).To(MatchError(auth.ErrTokenExpired))
		})

		It("rejects garbage input", func() {
			_, err := service.ValidateAccessToken("not-a-token")
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})
	})

	Describe("RefreshTokens", func() {
		It("issues a fresh pair from a valid refresh token", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{
				Email:    "jordan.reyes@mail.com",
				Password: "correct-horse",
			})
			Expect(err).ToNot(HaveOccurred())

			refreshed, err := service.RefreshTokens(tokens.RefreshToken)
			Expect(err).ToNot(HaveOccurred())
			Expect(refreshed.AccessToken).ToNot(BeEmpty())
			Expect(refreshed.RefreshToken).ToNot(BeEmpty())

			claims, err := service.ValidateAccessToken(refreshed.AccessToken)
			Expect(err).ToNot(HaveOccurred())
			Expect(claims.UserID).To(Equal(int64(1)))
		})

		It("rejects an invalid refresh token", func() {
			_, err := service.RefreshTokens("not-a-token")
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})
	})
})
