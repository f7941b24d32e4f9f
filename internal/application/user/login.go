package user

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookcatalog/internal/domain/user"
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
	"github.com/xiebiao/bookcatalog/pkg/jwt"
)

// SessionStore 会话存储端口（由redis.SessionStore实现）
type SessionStore interface {
	SaveSession(ctx context.Context, userID uint, sessionData map[string]interface{}, ttl time.Duration) error
	GetSession(ctx context.Context, userID uint) (map[string]string, error)
	DeleteSession(ctx context.Context, userID uint) error
	AddToBlacklist(ctx context.Context, tokenID string, ttl time.Duration) error
}

// LoginUseCase 用户登录用例
// 设计说明：
// 1. 验证邮箱密码
// 2. 生成JWT Token对
// 3. 保存会话到Redis，会话有效期与Refresh Token一致
type LoginUseCase struct {
	userService  user.Service
	jwtManager   *jwt.Manager
	sessionStore SessionStore
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(
	userService user.Service,
	jwtManager *jwt.Manager,
	sessionStore SessionStore,
) *LoginUseCase {
	return &LoginUseCase{
		userService:  userService,
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
	}
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	// 1. 验证邮箱密码（调用领域服务）
	u, err := uc.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	// 2. 生成JWT Token对
	tokenPair, err := uc.jwtManager.GenerateToken(u.ID, u.Email, u.Nickname)
	if err != nil {
		return nil, err
	}

	// 3. 保存会话
	sessionData := map[string]interface{}{
		"user_id":  u.ID,
		"email":    u.Email,
		"nickname": u.Nickname,
		"login_at": time.Now().Unix(),
		"ip":       ClientIP(ctx),
	}
	if err := uc.sessionStore.SaveSession(ctx, u.ID, sessionData, uc.jwtManager.RefreshTokenExpire()); err != nil {
		// 会话保存失败不影响登录；刷新Token时会要求重新登录
		zap.L().Warn("保存登录会话失败", zap.Uint("user_id", u.ID), zap.Error(err))
	}

	return &LoginResponse{
		User:         toUserInfo(u),
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	}, nil
}

// RefreshUseCase 刷新Access Token用例
// 会话已删除（登出）时Refresh Token不再可用
type RefreshUseCase struct {
	userService  user.Service
	jwtManager   *jwt.Manager
	sessionStore SessionStore
}

// NewRefreshUseCase 创建刷新用例
func NewRefreshUseCase(userService user.Service, jwtManager *jwt.Manager, sessionStore SessionStore) *RefreshUseCase {
	return &RefreshUseCase{
		userService:  userService,
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
	}
}

// Execute 用Refresh Token换取新的Access Token
func (uc *RefreshUseCase) Execute(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	claims, err := uc.jwtManager.ParseToken(refreshToken)
	if err != nil {
		return nil, err
	}

	if _, err := uc.sessionStore.GetSession(ctx, claims.UserID); err != nil {
		return nil, err
	}

	u, err := uc.userService.Profile(ctx, claims.UserID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}

	token, err := uc.jwtManager.RefreshAccessToken(refreshToken, u.Email, u.Nickname)
	if err != nil {
		return nil, err
	}
	return &RefreshResponse{AccessToken: token}, nil
}

// LogoutUseCase 用户登出用例
type LogoutUseCase struct {
	sessionStore SessionStore
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(sessionStore SessionStore) *LogoutUseCase {
	return &LogoutUseCase{sessionStore: sessionStore}
}

// Execute 执行登出
// 删除会话，并把当前Access Token加入黑名单直到它自然过期
func (uc *LogoutUseCase) Execute(ctx context.Context, claims *jwt.Claims) error {
	if err := uc.sessionStore.DeleteSession(ctx, claims.UserID); err != nil {
		return err
	}
	return uc.sessionStore.AddToBlacklist(ctx, claims.ID, claims.Remaining(time.Now()))
}
