package book

import (
	"time"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
)

// =========================================
// 应用层DTO(视图记录,不暴露数据库ID)
// =========================================

// BookView 图书视图
type BookView struct {
	ISBN      string       `json:"isbn"`
	Title     string       `json:"title"`
	Authors   []AuthorView `json:"authors"`
	Publisher string       `json:"publisher"`
}

// AuthorView 作者视图
type AuthorView struct {
	Name      string `json:"name"`
	BirthDate string `json:"birth_date"` // 2006-01-02
}

// AddBookRequest 上架请求
type AddBookRequest struct {
	ISBN      string
	Title     string
	Publisher string
	Authors   []AuthorInput
}

// AuthorInput 上架时提交的作者信息
type AuthorInput struct {
	Name      string
	BirthDate time.Time
}

// AddBookResponse 上架响应
// ISBN已存在时Added为false
type AddBookResponse struct {
	Added bool `json:"added"`
}

// toBookView 领域实体 → 视图
func toBookView(b *book.Book) BookView {
	return BookView{
		ISBN:      b.ISBN,
		Title:     b.Title,
		Authors:   toAuthorViews(b.Authors),
		Publisher: b.Publisher.Name,
	}
}

func toBookViews(books []*book.Book) []BookView {
	views := make([]BookView, len(books))
	for i, b := range books {
		views[i] = toBookView(b)
	}
	return views
}

func toAuthorView(a book.Author) AuthorView {
	return AuthorView{
		Name:      a.Name,
		BirthDate: a.BirthDate.Format(book.DateLayout),
	}
}

func toAuthorViews(authors []book.Author) []AuthorView {
	views := make([]AuthorView, len(authors))
	for i, a := range authors {
		views[i] = toAuthorView(a)
	}
	return views
}
