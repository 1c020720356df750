package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bookmarkd/internal/models"
	"bookmarkd/pkg/utils"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var validate = validator.New()

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type AuthService struct {
	db     *gorm.DB
	tokens *TokenService
}

func NewAuthService(db *gorm.DB, tokens *TokenService) *AuthService {
	return &AuthService{
		db:     db,
		tokens: tokens,
	}
}

func validateRegistration(in RegisterInput) error {
	if len(in.Password) < 6 {
		return invalid("Password is too short")
	}
	if len(in.Username) < 3 {
		return invalid("User is too short")
	}
	if strings.Contains(in.Username, " ") || validate.Var(in.Username, "alphanum") != nil {
		return invalid("Username should be alphanumeric, also no spaces")
	}
	return nil
}

// Register validates the input, hashes the password and stores a new user.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	user := models.User{
		Username: in.Username,
		Email:    in.Email,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUserConflict(tx, in.Username, in.Email); err != nil {
			return err
		}

		hash, err := utils.HashPassword(in.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash

		return tx.Create(&user).Error
	})
	if err == nil {
		return &user, nil
	}
	if errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrUsernameTaken) {
		return nil, err
	}
	if isUniqueViolation(err) {
		// Lost a race with a concurrent registration.
		if conflict := checkUserConflict(s.db.WithContext(ctx), in.Username, in.Email); conflict != nil {
			return nil, conflict
		}
		return nil, ErrUsernameTaken
	}
	return nil, fmt.Errorf("create user: %w", err)
}

func checkUserConflict(db *gorm.DB, username, email string) error {
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrEmailTaken
	}
	if err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrUsernameTaken
	}
	return nil
}

// Login checks the credentials and issues an access/refresh token pair.
// Unknown email and wrong password both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, TokenPair, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("find user: %w", err)
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return &user, pair, nil
}

func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// Refresh issues a new access token for an identity already proven by a
// refresh token.
func (s *AuthService) Refresh(userID uint) (string, error) {
	return s.tokens.Issue(userID, AccessToken)
}
