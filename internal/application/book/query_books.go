package book

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
)

// QueryBooksUseCase 图书目录查询用例
// 只读操作集中在一个用例里,HTTP和gRPC共用
// 列表结果不分页,按ISBN(图书)或名字(作者、出版社)升序
type QueryBooksUseCase struct {
	bookService book.Service
}

// NewQueryBooksUseCase 创建查询用例
func NewQueryBooksUseCase(bookService book.Service) *QueryBooksUseCase {
	return &QueryBooksUseCase{bookService: bookService}
}

// FindBookByISBN 根据ISBN查询图书
func (uc *QueryBooksUseCase) FindBookByISBN(ctx context.Context, isbn string) (view *BookView, err error) {
	ctx, finish := begin(ctx, "find_book_by_isbn", attribute.String("isbn", isbn))
	defer func() { finish(err) }()

	b, err := uc.bookService.FindBookByISBN(ctx, isbn)
	if err != nil {
		return nil, err
	}
	v := toBookView(b)
	return &v, nil
}

// FindBookAuthors 查询图书的作者
func (uc *QueryBooksUseCase) FindBookAuthors(ctx context.Context, isbn string) (views []AuthorView, err error) {
	ctx, finish := begin(ctx, "find_book_authors", attribute.String("isbn", isbn))
	defer func() { finish(err) }()

	authors, err := uc.bookService.FindBookAuthors(ctx, isbn)
	if err != nil {
		return nil, err
	}
	return toAuthorViews(authors), nil
}

// FindBooksByAuthor 查询作者的图书
func (uc *QueryBooksUseCase) FindBooksByAuthor(ctx context.Context, name string) (views []BookView, err error) {
	ctx, finish := begin(ctx, "find_books_by_author", attribute.String("author", name))
	defer func() { finish(err) }()

	books, err := uc.bookService.FindBooksByAuthor(ctx, name)
	if err != nil {
		return nil, err
	}
	return toBookViews(books), nil
}

// FindBooksByPublisher 查询出版社的图书
func (uc *QueryBooksUseCase) FindBooksByPublisher(ctx context.Context, name string) (views []BookView, err error) {
	ctx, finish := begin(ctx, "find_books_by_publisher", attribute.String("publisher", name))
	defer func() { finish(err) }()

	books, err := uc.bookService.FindBooksByPublisher(ctx, name)
	if err != nil {
		return nil, err
	}
	return toBookViews(books), nil
}

// FindPublishersByAuthor 查询作者合作过的出版社名称
// 作者不存在时返回空列表
func (uc *QueryBooksUseCase) FindPublishersByAuthor(ctx context.Context, name string) (names []string, err error) {
	ctx, finish := begin(ctx, "find_publishers_by_author", attribute.String("author", name))
	defer func() { finish(err) }()

	names, err = uc.bookService.FindPublishersByAuthor(ctx, name)
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}
