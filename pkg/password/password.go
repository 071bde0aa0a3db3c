package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// 密码长度限制
const (
	MinLength = 6
	MaxLength = 50
)

// ErrLength 密码长度不合法
var ErrLength = errors.New("password length must be between 6 and 50")

// Hash 生成密码哈希
func Hash(plain string) (string, error) {
	if len(plain) < MinLength || len(plain) > MaxLength {
		return "", ErrLength
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify 校验密码
func Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
