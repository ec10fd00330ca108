package service

import (
	"context"
	"errors"
	"strings"

	"github.com/fastqash/blog/internal/db"
	"gorm.io/gorm"
)

// AuthService 校验后台管理员账号。
type AuthService struct {
	db *gorm.DB
}

// NewAuthService creates an AuthService instance.
func NewAuthService(gdb *gorm.DB) *AuthService {
	return &AuthService{db: gdb}
}

// Authenticate 用户名不存在或密码错误时均返回 ErrInvalidCredentials。
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*db.User, error) {
	trimmed := strings.TrimSpace(username)
	if trimmed == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var user db.User
	if err := s.db.WithContext(ctx).Where("username = ?", trimmed).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storageError(err)
	}

	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}
