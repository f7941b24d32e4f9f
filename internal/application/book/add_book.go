package book

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
)

// AddBookUseCase 图书上架用例
// 设计说明:
// 1. 业务规则(查找或创建作者、出版社,ISBN去重)由领域服务负责
// 2. 事务提交后发布book.added事件
// 3. ISBN已存在时返回Added=false,不发布事件
type AddBookUseCase struct {
	bookService book.Service
	events      EventPublisher
}

// NewAddBookUseCase 创建上架用例
func NewAddBookUseCase(bookService book.Service, events EventPublisher) *AddBookUseCase {
	return &AddBookUseCase{
		bookService: bookService,
		events:      events,
	}
}

// Execute 执行上架用例
func (uc *AddBookUseCase) Execute(ctx context.Context, req AddBookRequest) (resp *AddBookResponse, err error) {
	ctx, finish := begin(ctx, "add_book", attribute.String("isbn", req.ISBN))
	defer func() { finish(err) }()

	authors := make([]book.Author, len(req.Authors))
	for i, a := range req.Authors {
		authors[i] = book.Author{Name: a.Name, BirthDate: a.BirthDate}
	}

	added, err := uc.bookService.AddBook(ctx, book.NewBookParams{
		ISBN:          req.ISBN,
		Title:         req.Title,
		PublisherName: req.Publisher,
		Authors:       authors,
	})
	if err != nil {
		return nil, err
	}

	if added {
		// 回查已提交的图书,事件内容与数据库保持一致(作者已去重、排序)
		b, findErr := uc.bookService.FindBookByISBN(ctx, req.ISBN)
		if findErr != nil {
			zap.L().Warn("上架后查询图书失败,跳过事件发布", zap.String("isbn", req.ISBN), zap.Error(findErr))
		} else {
			publish(ctx, uc.events, book.NewBookEvent(book.EventBookAdded, b))
		}
	}

	return &AddBookResponse{Added: added}, nil
}
