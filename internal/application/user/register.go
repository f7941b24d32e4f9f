package user

import (
	"context"

	"github.com/xiebiao/bookcatalog/internal/domain/user"
)

// RegisterUseCase 用户注册用例
// 注册后的用户才能修改图书目录
type RegisterUseCase struct {
	userService user.Service
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service) *RegisterUseCase {
	return &RegisterUseCase{
		userService: userService,
	}
}

// Execute 执行注册
// 返回应用层DTO，不返回密码哈希
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*UserInfo, error) {
	u, err := uc.userService.Register(ctx, req.Email, req.Password, req.Nickname)
	if err != nil {
		return nil, err
	}
	info := toUserInfo(u)
	return &info, nil
}

// ProfileUseCase 查询当前用户
type ProfileUseCase struct {
	userService user.Service
}

// NewProfileUseCase 创建查询用例
func NewProfileUseCase(userService user.Service) *ProfileUseCase {
	return &ProfileUseCase{userService: userService}
}

// Execute 查询用户信息
func (uc *ProfileUseCase) Execute(ctx context.Context, userID uint) (*UserInfo, error) {
	u, err := uc.userService.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	info := toUserInfo(u)
	return &info, nil
}
