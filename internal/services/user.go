package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"inkwell/internal/models"
	"inkwell/internal/utils"

	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(conn *gorm.DB) *UserService {
	return &UserService{db: conn}
}

// Username length bounds, counted in characters after trimming.
const (
	MinUsernameLength = 2
	MaxUsernameLength = 20
)

func checkUsername(username string) error {
	if n := utf8.RuneCountInString(username); n < MinUsernameLength || n > MaxUsernameLength {
		return ErrInvalidUsername
	}
	return nil
}

// CreateUser registers a new account with a bcrypt-hashed password.
func (s *UserService) CreateUser(username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)

	if err := checkUsername(username); err != nil {
		return nil, err
	}
	if err := s.checkAvailable(username, email, 0); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:  username,
		Email:     email,
		Password:  hash,
		ImageFile: models.DefaultImageFile,
	}
	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := s.checkAvailable(username, email, 0); err != nil {
				return nil, err
			}
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// Authenticate returns the user whose email and password match.
func (s *UserService) Authenticate(email, password string) (*models.User, error) {
	user, err := s.GetByEmail(email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, notFound("user", err)
	}
	return &user, nil
}

func (s *UserService) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		return nil, notFound("user", err)
	}
	return &user, nil
}

func (s *UserService) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound("user", err)
	}
	return &user, nil
}

// UpdateAccount changes username, email and, when imageFile is not empty,
// the profile picture. The previous picture name is returned so the caller
// can remove the old file.
func (s *UserService) UpdateAccount(user *models.User, username, email, imageFile string) (string, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)

	if err := checkUsername(username); err != nil {
		return "", err
	}
	if err := s.checkAvailable(username, email, user.ID); err != nil {
		return "", err
	}

	previous := ""
	updates := map[string]interface{}{"username": username, "email": email}
	if imageFile != "" {
		previous = user.ImageFile
		updates["image_file"] = imageFile
	}

	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", ErrUsernameTaken
		}
		return "", fmt.Errorf("update account: %w", err)
	}
	return previous, nil
}

// SetPassword replaces the stored hash for userID.
func (s *UserService) SetPassword(userID uint, password string) error {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	res := s.db.Model(&models.User{}).Where("id = ?", userID).Update("password", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user: %w", ErrNotFound)
	}
	return nil
}

// UsernameTaken reports whether another account (not exceptID) uses username.
func (s *UserService) UsernameTaken(username string, exceptID uint) (bool, error) {
	return s.exists("username = ?", strings.TrimSpace(username), exceptID)
}

// EmailTaken reports whether another account (not exceptID) uses email.
func (s *UserService) EmailTaken(email string, exceptID uint) (bool, error) {
	return s.exists("email = ?", normalizeEmail(email), exceptID)
}

func (s *UserService) checkAvailable(username, email string, exceptID uint) error {
	taken, err := s.UsernameTaken(username, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return ErrUsernameTaken
	}

	taken, err = s.EmailTaken(email, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return ErrEmailTaken
	}
	return nil
}

func (s *UserService) exists(cond string, value string, exceptID uint) (bool, error) {
	var count int64
	q := s.db.Model(&models.User{}).Where(cond, value)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
