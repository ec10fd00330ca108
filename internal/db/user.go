package db

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User 定义了后台管理员账号
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Username  string `gorm:"size:100;uniqueIndex;not null"`
	Password  string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EnsureUser 存在性检查：若提供的用户名与密码均非空且不存在对应账号，则创建一个 bcrypt 哈希的用户。
func EnsureUser(gdb *gorm.DB, username, password string) error {
	trimmedUser := strings.TrimSpace(username)
	trimmedPassword := strings.TrimSpace(password)
	if trimmedUser == "" || trimmedPassword == "" {
		return nil
	}

	if gdb == nil {
		return errors.New("database not initialized")
	}

	var existing User
	if err := gdb.Where("username = ?", trimmedUser).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := HashPassword(trimmedPassword)
		if err != nil {
			return err
		}

		return gdb.Create(&User{Username: trimmedUser, Password: hashed}).Error
	}

	return nil
}

// UpsertUser 创建管理员，若已存在则重置其密码。返回值表示是否为新建账号。
func UpsertUser(gdb *gorm.DB, username, password string) (bool, error) {
	trimmedUser := strings.TrimSpace(username)
	if trimmedUser == "" || password == "" {
		return false, errors.New("username and password are required")
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return false, err
	}

	var existing User
	err = gdb.Where("username = ?", trimmedUser).First(&existing).Error
	switch {
	case err == nil:
		return false, gdb.Model(&existing).Update("password", hashed).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return true, gdb.Create(&User{Username: trimmedUser, Password: hashed}).Error
	default:
		return false, err
	}
}

// HashPassword 使用 bcrypt 默认成本生成密码哈希。
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword 校验明文密码与哈希是否匹配。
func (u User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}
