package book

import (
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

// 图书领域错误定义
// 三种NotFound共用404xx错误码区间,调用方可用apperrors.IsNotFound统一判断
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrAuthorNotFound 作者不存在
	ErrAuthorNotFound = apperrors.New(apperrors.ErrCodeAuthorNotFound, "作者不存在")

	// ErrPublisherNotFound 出版社不存在
	ErrPublisherNotFound = apperrors.New(apperrors.ErrCodePublisherNotFound, "出版社不存在")

	// ErrISBNDuplicate ISBN已存在
	// 只在仓储层出现,领域服务会把它转换为AddBook返回false
	ErrISBNDuplicate = apperrors.New(apperrors.ErrCodeISBNDuplicate, "ISBN号已存在")

	// ErrInvalidISBN ISBN为空
	ErrInvalidISBN = apperrors.New(apperrors.ErrCodeInvalidParams, "ISBN不能为空")

	// ErrInvalidTitle 书名为空
	ErrInvalidTitle = apperrors.New(apperrors.ErrCodeInvalidParams, "书名不能为空")

	// ErrInvalidPublisher 出版社名称为空
	ErrInvalidPublisher = apperrors.New(apperrors.ErrCodeInvalidParams, "出版社名称不能为空")

	// ErrInvalidAuthor 作者名称为空
	ErrInvalidAuthor = apperrors.New(apperrors.ErrCodeInvalidParams, "作者名称不能为空")
)
