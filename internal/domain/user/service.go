package user

import (
	"context"
	"errors"
	"regexp"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

// DefaultBcryptCost 默认bcrypt计算成本(cost每+1，耗时翻倍)
const DefaultBcryptCost = 12

var (
	emailPattern  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	letterPattern = regexp.MustCompile(`[a-zA-Z]`)
	digitPattern  = regexp.MustCompile(`[0-9]`)
)

// Service 用户领域服务
// 注册、登录校验，密码加密与比对
type Service interface {
	// Register 用户注册
	Register(ctx context.Context, email, password, nickname string) (*User, error)

	// Login 用户登录，邮箱不存在返回ErrUserNotFound，密码错误返回ErrInvalidPassword
	Login(ctx context.Context, email, password string) (*User, error)

	// Profile 查询用户信息
	Profile(ctx context.Context, id uint) (*User, error)
}

type service struct {
	repo Repository
	cost int
}

// Option 服务配置项
type Option func(*service)

// WithBcryptCost 设置bcrypt成本，测试中使用bcrypt.MinCost加速
func WithBcryptCost(cost int) Option {
	return func(s *service) {
		s.cost = cost
	}
}

// NewService 创建用户服务
func NewService(repo Repository, opts ...Option) Service {
	s := &service{repo: repo, cost: DefaultBcryptCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register 用户注册
// 业务规则：
// 1. 邮箱格式校验（统一小写）
// 2. 密码8-20位，包含字母和数字
// 3. 昵称2-50个字符
// 4. 邮箱唯一性由数据库UNIQUE索引保证
func (s *service) Register(ctx context.Context, email, password, nickname string) (*User, error) {
	email = normalizeEmail(email)
	if !emailPattern.MatchString(email) {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "邮箱格式不正确")
	}

	if err := validatePasswordStrength(password); err != nil {
		return nil, err
	}

	if n := utf8.RuneCountInString(nickname); n < 2 || n > 50 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "昵称长度应为2-50个字符")
	}

	// bcrypt自动加盐，相同密码每次结果不同
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, apperrors.Wrap(err, "密码加密失败")
	}

	u := NewUser(email, string(hashed), nickname)
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err // Repository已转换为业务错误
	}
	return u, nil
}

// Login 用户登录
func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, apperrors.ErrInvalidPassword
		}
		return nil, apperrors.Wrap(err, "密码验证失败")
	}
	return u, nil
}

// Profile 查询用户信息
func (s *service) Profile(ctx context.Context, id uint) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// validatePasswordStrength 密码强度校验
// 规则：8-20位，必须包含字母和数字
func validatePasswordStrength(password string) error {
	if len(password) < 8 || len(password) > 20 {
		return apperrors.ErrWeakPassword
	}
	if !letterPattern.MatchString(password) || !digitPattern.MatchString(password) {
		return apperrors.ErrWeakPassword
	}
	return nil
}
