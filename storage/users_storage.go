package storage

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Durai69/LLS-Survey/storage/model"
)

// UsersStorage implements model.UsersStore for administrators
type UsersStorage struct {
	db     *gorm.DB
	params Argon2idParams
}

// UsersStorage returns a UsersStorage
func (s *Storage) UsersStorage() *UsersStorage {
	return &UsersStorage{db: s.db, params: s.userParams}
}

func (s *UsersStorage) find(username string) (*model.User, error) {
	var u model.User
	if err := s.db.Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundErrorFmt("user not found: %s", username)
		}
		return nil, errors.Wrap(err, "users: get failed")
	}
	return &u, nil
}

func withoutHash(u *model.User) *model.User {
	u.PasswordHash = ""
	return u
}

// Count returns the number of users
func (s *UsersStorage) Count() (int64, error) {
	var count int64
	if err := s.db.Model(&model.User{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "users: count failed")
	}
	return count, nil
}

// List returns all users without password hashes
func (s *UsersStorage) List() ([]model.User, error) {
	users := []model.User{}
	if err := s.db.Order("username").Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "users: list failed")
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// Get returns a user by username
func (s *UsersStorage) Get(username string) (*model.User, error) {
	u, err := s.find(username)
	if err != nil {
		return nil, err
	}
	return withoutHash(u), nil
}

// Create creates a user with an argon2id hashed password
func (s *UsersStorage) Create(username, password, displayName string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, model.NewValidationError("username", "username is required")
	}
	if password == "" {
		return nil, model.NewValidationError("password", "password is required")
	}
	hash, err := hashPasswordArgon2id(password, s.params)
	if err != nil {
		return nil, err
	}
	u := model.User{
		Username:     username,
		PasswordHash: hash,
		DisplayName:  displayName,
	}
	if err = s.db.Create(&u).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, model.AlreadyExistsErrorFmt("user already exists: %s", username)
		}
		return nil, errors.Wrap(err, "users: create failed")
	}
	return withoutHash(&u), nil
}

// Update changes the display name, password or disabled flag; nil values are
// left untouched
func (s *UsersStorage) Update(username string, displayName, newPassword *string, disabled *bool) (
	*model.User, error,
) {
	u, err := s.find(username)
	if err != nil {
		return nil, err
	}
	if displayName != nil {
		u.DisplayName = *displayName
	}
	if disabled != nil {
		u.Disabled = *disabled
	}
	if newPassword != nil {
		if *newPassword == "" {
			return nil, model.NewValidationError("password", "password cannot be empty")
		}
		if u.PasswordHash, err = hashPasswordArgon2id(*newPassword, s.params); err != nil {
			return nil, err
		}
	}
	if err = s.db.Save(u).Error; err != nil {
		return nil, errors.Wrap(err, "users: update failed")
	}
	return withoutHash(u), nil
}

// Delete deletes a user by username
func (s *UsersStorage) Delete(username string) error {
	res := s.db.Where("username = ?", username).Delete(&model.User{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "users: delete failed")
	}
	if res.RowsAffected == 0 {
		return model.NotFoundErrorFmt("user not found: %s", username)
	}
	return nil
}

// Authenticate validates username and password. A hash created with outdated
// parameters is transparently upgraded.
func (s *UsersStorage) Authenticate(username, password string) (*model.User, error) {
	u, err := s.find(username)
	if err != nil {
		return nil, err
	}
	if u.Disabled {
		return nil, errors.New("user disabled")
	}
	stored, ok, err := verifyPasswordArgon2id(u.PasswordHash, password)
	if err != nil || !ok {
		return nil, errors.New("invalid credentials")
	}
	if stored != s.params.normalized() {
		if newHash, err := hashPasswordArgon2id(password, s.params); err == nil {
			_ = s.db.Model(&model.User{}).Where("id = ?", u.ID).Update("password_hash", newHash).Error
		}
	}
	return withoutHash(u), nil
}
