package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Oyshik-ICT/ecommerce-backend/internal/app/model"
	"github.com/Oyshik-ICT/ecommerce-backend/internal/app/repository"
	"github.com/Oyshik-ICT/ecommerce-backend/pkg/logger"
	"github.com/Oyshik-ICT/ecommerce-backend/pkg/util"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotOwner           = errors.New("resource belongs to another user")
)

type AuthService interface {
	Register(email, password string) (*model.User, *util.TokenPair, error)
	Login(email, password string) (*model.User, *util.TokenPair, error)
	GetUserByID(id uint) (*model.User, error)
	ListUsers(requesterID uint, requesterRole model.UserRole) ([]model.User, error)
	UpdateUser(requesterID uint, requesterRole model.UserRole, targetID uint, email, password *string) (*model.User, error)
	DeleteUser(requesterID uint, requesterRole model.UserRole, targetID uint) error
}

type authService struct {
	userRepo      repository.UserRepository
	jwtSecret     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	jwtSecret string,
	accessExpiry, refreshExpiry time.Duration,
) AuthService {
	return &authService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

func (s *authService) Register(email, password string) (*model.User, *util.TokenPair, error) {
	logger.Info("Attempting user registration", map[string]interface{}{
		"email": email,
	})

	existingUser, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}
	if existingUser != nil {
		logger.Warn("Registration failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         model.RoleUser,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, nil, err
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return user, tokens, nil
}

func (s *authService) Login(email, password string) (*model.User, *util.TokenPair, error) {
	logger.Info("Attempting user login", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := util.VerifyPassword(user.PasswordHash, password); err != nil {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"email": email,
		})
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return user, tokens, nil
}

func (s *authService) issueTokens(user *model.User) (*util.TokenPair, error) {
	tokens, err := util.GenerateTokenPair(
		user.ID,
		user.Email,
		string(user.Role),
		s.jwtSecret,
		s.accessExpiry,
		s.refreshExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate token pair", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}
	return tokens, nil
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ListUsers returns every account for admins, and only the caller's own
// account otherwise.
func (s *authService) ListUsers(requesterID uint, requesterRole model.UserRole) ([]model.User, error) {
	if requesterRole == model.RoleAdmin {
		return s.userRepo.FindAll()
	}

	user, err := s.GetUserByID(requesterID)
	if err != nil {
		return nil, err
	}
	return []model.User{*user}, nil
}

func (s *authService) UpdateUser(requesterID uint, requesterRole model.UserRole, targetID uint, email, password *string) (*model.User, error) {
	if requesterRole != model.RoleAdmin && requesterID != targetID {
		return nil, ErrNotOwner
	}

	user, err := s.GetUserByID(targetID)
	if err != nil {
		return nil, err
	}

	if email != nil && *email != user.Email {
		existing, err := s.userRepo.FindByEmail(*email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, ErrEmailAlreadyExists
		}
		user.Email = *email
	}

	if password != nil {
		hashedPassword, err := util.HashPassword(*password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hashedPassword
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	logger.Info("User updated", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, nil
}

func (s *authService) DeleteUser(requesterID uint, requesterRole model.UserRole, targetID uint) error {
	if requesterRole != model.RoleAdmin && requesterID != targetID {
		return ErrNotOwner
	}

	if _, err := s.GetUserByID(targetID); err != nil {
		return err
	}

	if err := s.userRepo.Delete(targetID); err != nil {
		return err
	}

	logger.Info("User deleted", map[string]interface{}{
		"user_id": targetID,
	})
	return nil
}
