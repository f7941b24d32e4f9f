package book

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
)

// RemoveAuthorUseCase 删除作者用例
// 作者与图书的关联一并解除,图书保留
type RemoveAuthorUseCase struct {
	bookService book.Service
	events      EventPublisher
}

// NewRemoveAuthorUseCase 创建删除作者用例
func NewRemoveAuthorUseCase(bookService book.Service, events EventPublisher) *RemoveAuthorUseCase {
	return &RemoveAuthorUseCase{
		bookService: bookService,
		events:      events,
	}
}

// Execute 删除作者,返回被删除的作者
func (uc *RemoveAuthorUseCase) Execute(ctx context.Context, name string) (view *AuthorView, err error) {
	ctx, finish := begin(ctx, "remove_author", attribute.String("author", name))
	defer func() { finish(err) }()

	a, err := uc.bookService.RemoveAuthor(ctx, name)
	if err != nil {
		return nil, err
	}

	publish(ctx, uc.events, book.NewAuthorRemovedEvent(a))

	v := toAuthorView(*a)
	return &v, nil
}
