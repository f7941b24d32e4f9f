package book

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
)

// UpdateBookUseCase 修改书名用例
type UpdateBookUseCase struct {
	bookService book.Service
	events      EventPublisher
}

// NewUpdateBookUseCase 创建修改书名用例
func NewUpdateBookUseCase(bookService book.Service, events EventPublisher) *UpdateBookUseCase {
	return &UpdateBookUseCase{
		bookService: bookService,
		events:      events,
	}
}

// Execute 执行修改,返回修改后的图书
func (uc *UpdateBookUseCase) Execute(ctx context.Context, isbn, title string) (view *BookView, err error) {
	ctx, finish := begin(ctx, "update_book", attribute.String("isbn", isbn))
	defer func() { finish(err) }()

	b, err := uc.bookService.UpdateBook(ctx, isbn, title)
	if err != nil {
		return nil, err
	}

	publish(ctx, uc.events, book.NewBookEvent(book.EventBookUpdated, b))

	v := toBookView(b)
	return &v, nil
}
