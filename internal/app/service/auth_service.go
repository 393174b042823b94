package service

import (
	"errors"
	"time"

	"github.com/giftwish/giftwish-backend/config"
	"github.com/giftwish/giftwish-backend/internal/app/model"
	"github.com/giftwish/giftwish-backend/internal/app/repository"
	"github.com/giftwish/giftwish-backend/pkg/logger"
	"github.com/giftwish/giftwish-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrResetTokenInvalid  = errors.New("password reset token is invalid")
	ErrResetTokenExpired  = errors.New("password reset token has expired or was already used")
)

const resetTokenTTL = time.Hour

type AuthService interface {
	Register(email, password string) (*model.User, *util.TokenPair, error)
	Login(email, password string) (*model.User, *util.TokenPair, error)
	GetUser(userID uint) (*model.User, error)
	// ForgotPassword returns the reset token so the caller can deliver it.
	// An unknown email returns empty token and nil error, indistinguishable
	// from success to the requester.
	ForgotPassword(email string) (string, error)
	ResetPassword(token, newPassword string) error
}

type authService struct {
	userRepo  repository.UserRepository
	resetRepo repository.PasswordResetRepository
	jwtConfig *config.JWTConfig
}

func NewAuthService(userRepo repository.UserRepository, resetRepo repository.PasswordResetRepository, jwtConfig *config.JWTConfig) AuthService {
	return &authService{
		userRepo:  userRepo,
		resetRepo: resetRepo,
		jwtConfig: jwtConfig,
	}
}

func (s *authService) Register(email, password string) (*model.User, *util.TokenPair, error) {
	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err, nil)
		return nil, nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, nil, err
	}

	tokens, err := util.GenerateTokenPair(user.ID, user.Email, s.jwtConfig.Secret, s.jwtConfig.AccessTokenExpiry, s.jwtConfig.RefreshTokenExpiry)
	if err != nil {
		logger.Error("Failed to generate tokens after registration", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, err
	}

	logger.Info("User registered", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, tokens, nil
}

func (s *authService) Login(email, password string) (*model.User, *util.TokenPair, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: bad password", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := util.GenerateTokenPair(user.ID, user.Email, s.jwtConfig.Secret, s.jwtConfig.AccessTokenExpiry, s.jwtConfig.RefreshTokenExpiry)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("User logged in", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, tokens, nil
}

func (s *authService) GetUser(userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) ForgotPassword(email string) (string, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// do not leak which emails exist
			return "", nil
		}
		return "", err
	}

	token, err := util.GenerateResetToken()
	if err != nil {
		return "", err
	}

	reset := &model.PasswordReset{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := s.resetRepo.Create(reset); err != nil {
		return "", err
	}

	logger.Info("Password reset requested", map[string]interface{}{
		"user_id": user.ID,
	})
	return token, nil
}

func (s *authService) ResetPassword(token, newPassword string) error {
	reset, err := s.resetRepo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResetTokenInvalid
		}
		return err
	}
	if !reset.Usable(time.Now()) {
		return ErrResetTokenExpired
	}

	user, err := s.userRepo.FindByID(reset.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResetTokenInvalid
		}
		return err
	}

	hash, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.userRepo.Update(user); err != nil {
		return err
	}
	if err := s.resetRepo.MarkUsed(reset); err != nil {
		return err
	}

	logger.Info("Password reset completed", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}
