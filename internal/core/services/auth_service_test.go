package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/contactkeeper/contacts_backend/internal/apperrors"
	"github.com/contactkeeper/contacts_backend/internal/core/domain"
	portssvc "github.com/contactkeeper/contacts_backend/internal/core/ports/services"
	"github.com/contactkeeper/contacts_backend/internal/core/services"
	"github.com/contactkeeper/contacts_backend/internal/dto"
	"github.com/contactkeeper/contacts_backend/internal/platform/config"
	"github.com/contactkeeper/contacts_backend/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) ConfirmEmail(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateAvatarURL(ctx context.Context, email string, url string) (*domain.User, error) {
	args := m.Called(ctx, email, url)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) SetRefreshToken(ctx context.Context, userID string, token string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

func (m *MockUserRepository) RotateRefreshToken(ctx context.Context, userID string, oldToken string, newToken string) error {
	args := m.Called(ctx, userID, oldToken, newToken)
	return args.Error(0)
}

func (m *MockUserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// --- Mock UserCache ---
type MockUserCache struct {
	mock.Mock
}

func (m *MockUserCache) Get(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserCache) Set(ctx context.Context, user *domain.User, ttl time.Duration) error {
	args := m.Called(ctx, user, ttl)
	return args.Error(0)
}

func (m *MockUserCache) Invalidate(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// --- Mock Mailer ---
// sent receives the recipient once the asynchronous send completes, so tests
// can wait for the goroutine instead of sleeping.
type MockMailer struct {
	mock.Mock
	sent chan string
}

func (m *MockMailer) SendConfirmationEmail(ctx context.Context, to string, username string, confirmURL string) error {
	args := m.Called(ctx, to, username, confirmURL)
	if m.sent != nil {
		m.sent <- to
	}
	return args.Error(0)
}

// --- Test Suite ---
type AuthServiceTestSuite struct {
	suite.Suite
	cfg          *config.Config
	mockUserRepo *MockUserRepository
	mockCache    *MockUserCache
	mockMailer   *MockMailer
	service      portssvc.AuthSvcFacade
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.cfg = &config.Config{
		AppBaseURL:         "http://localhost:8080",
		JWTSecret:          "auth-service-test-secret",
		JWTIssuer:          "contacts-backend-test",
		AccessTokenExpiry:  time.Minute,
		RefreshTokenExpiry: time.Hour,
		EmailTokenExpiry:   time.Hour,
		UserCacheTTL:       30 * time.Minute,
	}
	suite.mockUserRepo = new(MockUserRepository)
	suite.mockCache = new(MockUserCache)
	suite.mockMailer = &MockMailer{sent: make(chan string, 1)}
	suite.service = services.NewAuthService(suite.cfg, suite.mockUserRepo, suite.mockCache, suite.mockMailer)
}

func (suite *AuthServiceTestSuite) confirmedUser(email, password string) *domain.User {
	hash, err := utils.HashPassword(password)
	suite.Require().NoError(err)
	return &domain.User{
		UserID:       uuid.NewString(),
		Username:     "testuser",
		Email:        email,
		PasswordHash: hash,
		Confirmed:    true,
	}
}

// --- Register Tests ---

func (suite *AuthServiceTestSuite) TestRegister_Success() {
	ctx := context.Background()
	req := dto.RegisterRequest{Username: "newuser", Email: "new@example.com", Password: "password123"}

	suite.mockUserRepo.On("FindUserByEmail", ctx, req.Email).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("SaveUser", ctx, mock.MatchedBy(func(user domain.User) bool {
		return user.Email == req.Email &&
			user.Username == req.Username &&
			user.PasswordHash != req.Password &&
			!user.Confirmed &&
			user.Avatar != nil
	})).Return(nil).Once()
	suite.mockMailer.On("SendConfirmationEmail", mock.Anything, req.Email, req.Username, mock.AnythingOfType("string")).Return(nil).Once()

	user, err := suite.service.Register(ctx, req, suite.cfg.AppBaseURL)

	suite.Require().NoError(err)
	suite.Require().NotNil(user)
	suite.Equal(req.Email, user.Email)
	suite.False(user.Confirmed)
	suite.NotEmpty(user.UserID)

	select {
	case to := <-suite.mockMailer.sent:
		suite.Equal(req.Email, to)
	case <-time.After(2 * time.Second):
		suite.FailNow("confirmation email was never sent")
	}

	suite.mockUserRepo.AssertExpectations(suite.T())
	suite.mockMailer.AssertExpectations(suite.T())
}

func (suite *AuthServiceTestSuite) TestRegister_DuplicateEmail() {
	ctx := context.Background()
	req := dto.RegisterRequest{Username: "newuser", Email: "taken@example.com", Password: "password123"}
	existing := suite.confirmedUser(req.Email, "other-password")

	suite.mockUserRepo.On("FindUserByEmail", ctx, req.Email).Return(existing, nil).Once()

	user, err := suite.service.Register(ctx, req, suite.cfg.AppBaseURL)

	suite.Require().Error(err)
	suite.Nil(user)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "SaveUser", mock.Anything, mock.Anything)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

// --- Login Tests ---

func (suite *AuthServiceTestSuite) TestLogin_Success() {
	ctx := context.Background()
	password := "password123"
	user := suite.confirmedUser("login@example.com", password)

	suite.mockUserRepo.On("FindUserByEmail", ctx, user.Email).Return(user, nil).Once()
	suite.mockUserRepo.On("SetRefreshToken", ctx, user.UserID, mock.AnythingOfType("string")).Return(nil).Once()
	suite.mockCache.On("Invalidate", ctx, user.Email).Return(nil).Once()

	pair, err := suite.service.Login(ctx, user.Email, password)

	suite.Require().NoError(err)
	suite.Require().NotNil(pair)
	suite.Equal("bearer", pair.TokenType)

	// The issued tokens must carry the right scopes.
	subject, err := utils.ParseScopedJWT(pair.AccessToken, suite.cfg.JWTSecret, domain.ScopeAccess)
	suite.Require().NoError(err)
	suite.Equal(user.Email, subject)
	subject, err = utils.ParseScopedJWT(pair.RefreshToken, suite.cfg.JWTSecret, domain.ScopeRefresh)
	suite.Require().NoError(err)
	suite.Equal(user.Email, subject)

	suite.mockUserRepo.AssertExpectations(suite.T())
	suite.mockCache.AssertExpectations(suite.T())
}

func (suite *AuthServiceTestSuite) TestLogin_UnknownEmail() {
	ctx := context.Background()

	suite.mockUserRepo.On("FindUserByEmail", ctx, "nobody@example.com").Return(nil, apperrors.ErrNotFound).Once()

	pair, err := suite.service.Login(ctx, "nobody@example.com", "password123")

	suite.Require().Error(err)
	suite.Nil(pair)
	suite.ErrorIs(err, apperrors.ErrInvalidCredentials)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *AuthServiceTestSuite) TestLogin_UnconfirmedEmail() {
	ctx := context.Background()
	password := "password123"
	user := suite.confirmedUser("pending@example.com", password)
	user.Confirmed = false

	suite.mockUserRepo.On("FindUserByEmail", ctx, user.Email).Return(user, nil).Once()

	pair, err := suite.service.Login(ctx, user.Email, password)

	suite.Require().Error(err)
	suite.Nil(pair)
	suite.ErrorIs(err, apperrors.ErrEmailNotConfirmed)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "SetRefreshToken", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestLogin_WrongPassword() {
	ctx := context.Background()
	user := suite.confirmedUser("login@example.com", "correct-password")

	suite.mockUserRepo.On("FindUserByEmail", ctx, user.Email).Return(user, nil).Once()

	pair, err := suite.service.Login(ctx, user.Email, "wrong-password")

	suite.Require().Error(err)
	suite.Nil(pair)
	suite.ErrorIs(err, apperrors.ErrInvalidCredentials)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "SetRefreshToken", mock.Anything, mock.Anything, mock.Anything)
}

// --- Refresh Tests ---

func (suite *AuthServiceTestSuite) refreshTokenFor(email string) string {
	token, err := utils.GenerateScopedJWT(email, domain.ScopeRefresh, suite.cfg.JWTSecret, suite.cfg.RefreshTokenExpiry, suite.cfg.JWTIssuer)
	suite.Require().NoError(err)
	return token
}

func (suite *AuthServiceTestSuite) TestRefresh_Success() {
	ctx := context.Background()
	user := suite.confirmedUser("refresh@example.com", "password123")
	oldToken := suite.refreshTokenFor(user.Email)
	user.RefreshToken = &oldToken

	suite.mockUserRepo.On("FindUserByEmail", ctx, user.Email).Return(user, nil).Once()
	suite.mockUserRepo.On("RotateRefreshToken", ctx, user.UserID, oldToken, mock.AnythingOfType("string")).Return(nil).Once()
	suite.mockCache.On("Invalidate", ctx, user.Email).Return(nil).Once()

	pair, err := suite.service.Refresh(ctx, oldToken)

	suite.Require().NoError(err)
	suite.Require().NotNil(pair)
	suite.NotEqual(oldToken, pair.RefreshToken)
	suite.mockUserRepo.AssertExpectations(suite.T())
	suite.mockCache.AssertExpectations(suite.T())
}

func (suite *AuthServiceTestSuite) TestRefresh_ReusedTokenClearsSlot() {
	ctx := context.Background()
	user := suite.confirmedUser("refresh@example.com", "password123")
	// The slot already holds a newer token; presenting the old one is reuse.
	current := suite.refreshTokenFor(user.Email)
	user.RefreshToken = &current
	// A different expiry guarantees a different token even within one second.
	stale, err := utils.GenerateScopedJWT(user.Email, domain.ScopeRefresh, suite.cfg.JWTSecret, suite.cfg.RefreshTokenExpiry-time.Minute, suite.cfg.JWTIssuer)
	suite.Require().NoError(err)

	suite.mockUserRepo.On("FindUserByEmail", ctx, user.Email).Return(user, nil).Once()
	suite.mockUserRepo.On("ClearRefreshToken", ctx, user.UserID).Return(nil).Once()

	pair, err := suite.service.Refresh(ctx, stale)

	suite.Require().Error(err)
	suite.Nil(pair)
	suite.ErrorIs(err, apperrors.ErrInvalidToken)
	suite.mockUserRepo.AssertExpectations(suite.T())
	suite.mockUserRepo.AssertNotCalled(suite.T(), "RotateRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestRefresh_EmptySlot() {
	ctx := context.Background()
	user := suite.confirmedUser("refresh@example.com", "password123")
	token := suite.refreshTokenFor(user.Email)

	suite.mockUserRepo.On("FindUserByEmail", ctx, user.Email).Return(user, nil).Once()
	suite.mockUserRepo.On("ClearRefreshToken", ctx, user.UserID).Return(nil).Once()

	pair, err := suite.service.Refresh(ctx, token)

	suite.Require().Error(err)
	suite.Nil(pair)
	suite.ErrorIs(err, apperrors.ErrInvalidToken)
}

func (suite *AuthServiceTestSuite) TestRefresh_AccessTokenRejected() {
	ctx := context.Background()
	accessToken, err := utils.GenerateScopedJWT("refresh@example.com", domain.ScopeAccess, suite.cfg.JWTSecret, time.Minute, suite.cfg.JWTIssuer)
	suite.Require().NoError(err)

	pair, err := suite.service.Refresh(ctx, accessToken)

	suite.Require().Error(err)
	suite.Nil(pair)
	suite.ErrorIs(err, apperrors.ErrInvalidToken)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "FindUserByEmail", mock.Anything, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestRefresh_RotationLostRace() {
	ctx := context.Background()
	user := suite.confirmedUser("refresh@example.com", "password123")
	oldToken := suite.refreshTokenFor(user.Email)
	user.RefreshToken = &oldToken

	suite.mockUserRepo.On("FindUserByEmail", ctx, user.Email).Return(user, nil).Once()
	suite.mockUserRepo.On("RotateRefreshToken", ctx, user.UserID, oldToken, mock.AnythingOfType("string")).Return(apperrors.ErrInvalidToken).Once()

	pair, err := suite.service.Refresh(ctx, oldToken)

	suite.Require().Error(err)
	suite.Nil(pair)
	suite.ErrorIs(err, apperrors.ErrInvalidToken)
}

// --- ConfirmEmail Tests ---

func (suite *AuthServiceTestSuite) emailTokenFor(email string) string {
	token, err := utils.GenerateScopedJWT(email, domain.ScopeEmail, suite.cfg.JWTSecret, suite.cfg.EmailTokenExpiry, suite.cfg.JWTIssuer)
	suite.Require().NoError(err)
	return token
}

func (suite *AuthServiceTestSuite) TestConfirmEmail_Success() {
	ctx := context.Background()
	user := suite.confirmedUser("pending@example.com", "password123")
	user.Confirmed = false
	token := suite.emailTokenFor(user.Email)

	suite.mockUserRepo.On("FindUserByEmail", ctx, user.Email).Return(user, nil).Once()
	suite.mockUserRepo.On("ConfirmEmail", ctx, user.Email).Return(nil).Once()
	suite.mockCache.On("Invalidate", ctx, user.Email).Return(nil).Once()

	already, err := suite.service.ConfirmEmail(ctx, token)

	suite.Require().NoError(err)
	suite.False(already)
	suite.mockUserRepo.AssertExpectations(suite.T())
	suite.mockCache.AssertExpectations(suite.T())
}

func (suite *AuthServiceTestSuite) TestConfirmEmail_AlreadyConfirmed() {
	ctx := context.Background()
	user := suite.confirmedUser("done@example.com", "password123")
	token := suite.emailTokenFor(user.Email)

	suite.mockUserRepo.On("FindUserByEmail", ctx, user.Email).Return(user, nil).Once()

	already, err := suite.service.ConfirmEmail(ctx, token)

	suite.Require().NoError(err)
	suite.True(already)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "ConfirmEmail", mock.Anything, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestConfirmEmail_AccessTokenRejected() {
	ctx := context.Background()
	accessToken, err := utils.GenerateScopedJWT("pending@example.com", domain.ScopeAccess, suite.cfg.JWTSecret, time.Minute, suite.cfg.JWTIssuer)
	suite.Require().NoError(err)

	_, err = suite.service.ConfirmEmail(ctx, accessToken)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidToken)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "ConfirmEmail", mock.Anything, mock.Anything)
}

// --- RequestEmailConfirmation Tests ---

func (suite *AuthServiceTestSuite) TestRequestEmailConfirmation_UnknownEmailSilent() {
	ctx := context.Background()

	suite.mockUserRepo.On("FindUserByEmail", ctx, "nobody@example.com").Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.RequestEmailConfirmation(ctx, "nobody@example.com", suite.cfg.AppBaseURL)

	suite.Require().NoError(err)
	suite.mockMailer.AssertNotCalled(suite.T(), "SendConfirmationEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestRequestEmailConfirmation_Resends() {
	ctx := context.Background()
	user := suite.confirmedUser("pending@example.com", "password123")
	user.Confirmed = false

	suite.mockUserRepo.On("FindUserByEmail", ctx, user.Email).Return(user, nil).Once()
	suite.mockMailer.On("SendConfirmationEmail", mock.Anything, user.Email, user.Username, mock.AnythingOfType("string")).Return(nil).Once()

	err := suite.service.RequestEmailConfirmation(ctx, user.Email, suite.cfg.AppBaseURL)

	suite.Require().NoError(err)
	select {
	case <-suite.mockMailer.sent:
	case <-time.After(2 * time.Second):
		suite.FailNow("confirmation email was never re-sent")
	}
	suite.mockMailer.AssertExpectations(suite.T())
}

// --- ResolveUser Tests ---

func (suite *AuthServiceTestSuite) accessTokenFor(email string) string {
	token, err := utils.GenerateScopedJWT(email, domain.ScopeAccess, suite.cfg.JWTSecret, suite.cfg.AccessTokenExpiry, suite.cfg.JWTIssuer)
	suite.Require().NoError(err)
	return token
}

func (suite *AuthServiceTestSuite) TestResolveUser_CacheHit() {
	ctx := context.Background()
	user := suite.confirmedUser("cached@example.com", "password123")
	token := suite.accessTokenFor(user.Email)

	suite.mockCache.On("Get", ctx, user.Email).Return(user, nil).Once()

	resolved, err := suite.service.ResolveUser(ctx, token)

	suite.Require().NoError(err)
	suite.Equal(user, resolved)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "FindUserByEmail", mock.Anything, mock.Anything)
	suite.mockCache.AssertExpectations(suite.T())
}

func (suite *AuthServiceTestSuite) TestResolveUser_CacheMissFallsBack() {
	ctx := context.Background()
	user := suite.confirmedUser("miss@example.com", "password123")
	token := suite.accessTokenFor(user.Email)

	suite.mockCache.On("Get", ctx, user.Email).Return(nil, nil).Once()
	suite.mockUserRepo.On("FindUserByEmail", ctx, user.Email).Return(user, nil).Once()
	suite.mockCache.On("Set", ctx, user, suite.cfg.UserCacheTTL).Return(nil).Once()

	resolved, err := suite.service.ResolveUser(ctx, token)

	suite.Require().NoError(err)
	suite.Equal(user, resolved)
	suite.mockUserRepo.AssertExpectations(suite.T())
	suite.mockCache.AssertExpectations(suite.T())
}

func (suite *AuthServiceTestSuite) TestResolveUser_CacheErrorFailsOpen() {
	ctx := context.Background()
	user := suite.confirmedUser("failopen@example.com", "password123")
	token := suite.accessTokenFor(user.Email)

	suite.mockCache.On("Get", ctx, user.Email).Return(nil, assert.AnError).Once()
	suite.mockUserRepo.On("FindUserByEmail", ctx, user.Email).Return(user, nil).Once()
	suite.mockCache.On("Set", ctx, user, suite.cfg.UserCacheTTL).Return(assert.AnError).Once()

	resolved, err := suite.service.ResolveUser(ctx, token)

	// Cache failures on either side must not reject the request.
	suite.Require().NoError(err)
	suite.Equal(user, resolved)
}

func (suite *AuthServiceTestSuite) TestResolveUser_UnknownSubject() {
	ctx := context.Background()
	token := suite.accessTokenFor("ghost@example.com")

	suite.mockCache.On("Get", ctx, "ghost@example.com").Return(nil, nil).Once()
	suite.mockUserRepo.On("FindUserByEmail", ctx, "ghost@example.com").Return(nil, apperrors.ErrNotFound).Once()

	resolved, err := suite.service.ResolveUser(ctx, token)

	suite.Require().Error(err)
	suite.Nil(resolved)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *AuthServiceTestSuite) TestResolveUser_BadToken() {
	ctx := context.Background()

	resolved, err := suite.service.ResolveUser(ctx, "not-a-token")

	suite.Require().Error(err)
	suite.Nil(resolved)
	suite.ErrorIs(err, apperrors.ErrInvalidToken)
	suite.mockCache.AssertNotCalled(suite.T(), "Get", mock.Anything, mock.Anything)
}

// --- LoginWithGoogle Tests ---

func (suite *AuthServiceTestSuite) TestLoginWithGoogle_ExistingUser() {
	ctx := context.Background()
	user := suite.confirmedUser("google@example.com", "password123")
	info := domain.GoogleUserInfo{Email: user.Email, VerifiedEmail: true, Name: "Google User"}

	suite.mockUserRepo.On("FindUserByEmail", ctx, user.Email).Return(user, nil).Once()
	suite.mockUserRepo.On("SetRefreshToken", ctx, user.UserID, mock.AnythingOfType("string")).Return(nil).Once()
	suite.mockCache.On("Invalidate", ctx, user.Email).Return(nil).Once()

	pair, err := suite.service.LoginWithGoogle(ctx, info)

	suite.Require().NoError(err)
	suite.Require().NotNil(pair)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *AuthServiceTestSuite) TestLoginWithGoogle_NewUserCreatedConfirmed() {
	ctx := context.Background()
	info := domain.GoogleUserInfo{Email: "fresh@example.com", VerifiedEmail: true, Name: "Fresh User", Picture: "https://example.com/p.jpg"}

	suite.mockUserRepo.On("FindUserByEmail", ctx, info.Email).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("SaveUser", ctx, mock.MatchedBy(func(user domain.User) bool {
		return user.Email == info.Email && user.Confirmed && user.Username == info.Name
	})).Return(nil).Once()
	suite.mockUserRepo.On("SetRefreshToken", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(nil).Once()
	suite.mockCache.On("Invalidate", ctx, info.Email).Return(nil).Once()

	pair, err := suite.service.LoginWithGoogle(ctx, info)

	suite.Require().NoError(err)
	suite.Require().NotNil(pair)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *AuthServiceTestSuite) TestLoginWithGoogle_UnverifiedEmailRejected() {
	ctx := context.Background()
	info := domain.GoogleUserInfo{Email: "shady@example.com", VerifiedEmail: false}

	pair, err := suite.service.LoginWithGoogle(ctx, info)

	suite.Require().Error(err)
	suite.Nil(pair)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "FindUserByEmail", mock.Anything, mock.Anything)
}

// --- Run Suite ---
func TestAuthService(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
