package user

import (
	"context"

	"github.com/xiebiao/bookcatalog/internal/domain/user"
)

// =========================================
// 应用层DTO
// =========================================

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string
	Password string
	Nickname string
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string
	Password string
}

// LoginResponse 登录响应
type LoginResponse struct {
	User         UserInfo `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"` // Access Token过期时间（秒）
}

// RefreshResponse 刷新响应
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// UserInfo 用户信息（不含密码）
type UserInfo struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

func toUserInfo(u *user.User) UserInfo {
	return UserInfo{
		ID:       u.ID,
		Email:    u.Email,
		Nickname: u.Nickname,
	}
}

type clientIPKey struct{}

// WithClientIP 把请求来源IP放入ctx，登录时写入会话
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIP 读取请求来源IP，没有时返回空字符串
func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}
