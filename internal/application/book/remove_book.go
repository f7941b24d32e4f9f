package book

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
)

// RemoveBookUseCase 删除图书用例
type RemoveBookUseCase struct {
	bookService book.Service
	events      EventPublisher
}

// NewRemoveBookUseCase 创建删除图书用例
func NewRemoveBookUseCase(bookService book.Service, events EventPublisher) *RemoveBookUseCase {
	return &RemoveBookUseCase{
		bookService: bookService,
		events:      events,
	}
}

// Execute 删除图书,返回被删除的图书
func (uc *RemoveBookUseCase) Execute(ctx context.Context, isbn string) (view *BookView, err error) {
	ctx, finish := begin(ctx, "remove_book", attribute.String("isbn", isbn))
	defer func() { finish(err) }()

	b, err := uc.bookService.RemoveBook(ctx, isbn)
	if err != nil {
		return nil, err
	}

	publish(ctx, uc.events, book.NewBookEvent(book.EventBookRemoved, b))

	v := toBookView(b)
	return &v, nil
}
