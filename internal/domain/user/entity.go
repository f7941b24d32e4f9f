package user

import (
	"strings"
	"time"
)

// User 用户实体（聚合根）
// 只有登录用户才能修改图书目录（上架、改名、删除）
// 密码只保存bcrypt哈希值，领域实体不依赖GORM tag
type User struct {
	ID        uint
	Email     string
	Password  string // bcrypt哈希值
	Nickname  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码，邮箱统一转小写
func NewUser(email, hashedPassword, nickname string) *User {
	now := time.Now()
	return &User{
		Email:     normalizeEmail(email),
		Password:  hashedPassword,
		Nickname:  strings.TrimSpace(nickname),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
