package database

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/internal/domain/user"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/config"
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

var dbSeq int64

// newTestDB 每个测试独立的SQLite内存库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := fmt.Sprintf("file:catalog_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := NewDB(&config.Config{
		Server:   config.ServerConfig{Mode: "test"},
		Database: config.DatabaseConfig{Driver: "sqlite", Path: name},
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	return db
}

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

type repos struct {
	books      book.BookRepository
	authors    book.AuthorRepository
	publishers book.PublisherRepository
	tx         *TxManager
}

func newRepos(t *testing.T) repos {
	db := newTestDB(t)
	return repos{
		books:      NewBookRepository(db),
		authors:    NewAuthorRepository(db),
		publishers: NewPublisherRepository(db),
		tx:         NewTxManager(db),
	}
}

// seedBook 直接通过仓储上架一本书
func (r repos) seedBook(t *testing.T, isbn, title, publisher string, authors ...book.Author) *book.Book {
	t.Helper()
	ctx := context.Background()

	p, err := r.publishers.FindOrCreate(ctx, publisher)
	require.NoError(t, err)

	stored := make([]book.Author, 0, len(authors))
	for _, a := range authors {
		sa, err := r.authors.FindOrCreate(ctx, a)
		require.NoError(t, err)
		stored = append(stored, *sa)
	}

	b := book.NewBook(isbn, title, *p, stored)
	require.NoError(t, r.books.Create(ctx, b))
	return b
}

func TestBookRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)

	created := r.seedBook(t, "978-1", "Title A", "Pub1",
		book.Author{Name: "Bob", BirthDate: date("1970-02-02")},
		book.Author{Name: "Alice", BirthDate: date("1980-01-01")},
	)
	assert.NotZero(t, created.ID)

	exists, err := r.books.ExistsByISBN(ctx, "978-1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = r.books.ExistsByISBN(ctx, "978-2")
	require.NoError(t, err)
	assert.False(t, exists)

	found, err := r.books.FindByISBN(ctx, "978-1")
	require.NoError(t, err)
	assert.Equal(t, "Title A", found.Title)
	assert.Equal(t, "Pub1", found.Publisher.Name)
	// 作者按名字升序
	assert.Equal(t, []string{"Alice", "Bob"}, found.AuthorNames())
	assert.Equal(t, "1980-01-01", found.Authors[0].BirthDate.Format("2006-01-02"))

	_, err = r.books.FindByISBN(ctx, "missing")
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}

func TestBookRepository_CreateDuplicateISBN(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)

	first := r.seedBook(t, "978-1", "Title A", "Pub1")

	err := r.books.Create(ctx, book.NewBook("978-1", "Other", first.Publisher, nil))
	assert.ErrorIs(t, err, book.ErrISBNDuplicate)
}

func TestBookRepository_UpdateTitleAndDelete(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)

	b := r.seedBook(t, "978-1", "Title A", "Pub1", book.Author{Name: "Alice"})

	require.NoError(t, r.books.UpdateTitle(ctx, b.ID, "New Title"))
	// 书名未变化时也不报错
	require.NoError(t, r.books.UpdateTitle(ctx, b.ID, "New Title"))

	found, err := r.books.FindByISBN(ctx, "978-1")
	require.NoError(t, err)
	assert.Equal(t, "New Title", found.Title)

	require.NoError(t, r.books.Delete(ctx, b.ID))
	assert.ErrorIs(t, r.books.Delete(ctx, b.ID), book.ErrBookNotFound)

	// 关联行一并删除,作者保留
	alice, err := r.authors.FindByName(ctx, "Alice")
	require.NoError(t, err)
	books, err := r.books.FindByAuthorID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, books)

	// 物理删除后可重新上架
	r.seedBook(t, "978-1", "Title A", "Pub1", book.Author{Name: "Alice"})
}

func TestBookRepository_FindByAuthorAndPublisher(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)

	alice := book.Author{Name: "Alice", BirthDate: date("1980-01-01")}
	bob := book.Author{Name: "Bob", BirthDate: date("1970-02-02")}
	r.seedBook(t, "978-3", "C", "Pub1", alice, bob)
	r.seedBook(t, "978-1", "A", "Pub2", alice)
	r.seedBook(t, "978-2", "B", "Pub1", bob)

	storedAlice, err := r.authors.FindByName(ctx, "Alice")
	require.NoError(t, err)

	books, err := r.books.FindByAuthorID(ctx, storedAlice.ID)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "978-1", books[0].ISBN)
	assert.Equal(t, "978-3", books[1].ISBN)
	// 预加载完整作者列表,而不只是查询条件中的作者
	assert.Equal(t, []string{"Alice", "Bob"}, books[1].AuthorNames())

	pub1, err := r.publishers.FindByName(ctx, "Pub1")
	require.NoError(t, err)

	books, err = r.books.FindByPublisherID(ctx, pub1.ID)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "978-2", books[0].ISBN)
	assert.Equal(t, "978-3", books[1].ISBN)
}

func TestAuthorRepository_FindOrCreate(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)

	first, err := r.authors.FindOrCreate(ctx, book.Author{Name: "Alice", BirthDate: date("1980-01-01")})
	require.NoError(t, err)
	assert.NotZero(t, first.ID)

	second, err := r.authors.FindOrCreate(ctx, book.Author{Name: "Alice", BirthDate: date("1999-09-09")})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	// 已存在的作者保留原出生日期
	assert.Equal(t, "1980-01-01", second.BirthDate.Format("2006-01-02"))

	_, err = r.authors.FindByName(ctx, "Nobody")
	assert.ErrorIs(t, err, book.ErrAuthorNotFound)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAuthorRepository_DeleteDetachesBooks(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)

	r.seedBook(t, "978-1", "Title A", "Pub1",
		book.Author{Name: "Alice"}, book.Author{Name: "Bob"})

	alice, err := r.authors.FindByName(ctx, "Alice")
	require.NoError(t, err)
	require.NoError(t, r.authors.Delete(ctx, alice.ID))
	assert.ErrorIs(t, r.authors.Delete(ctx, alice.ID), book.ErrAuthorNotFound)

	found, err := r.books.FindByISBN(ctx, "978-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob"}, found.AuthorNames())
}

func TestPublisherRepository_FindNamesByAuthor(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)

	alice := book.Author{Name: "Alice"}
	r.seedBook(t, "1", "A", "Pub2", alice)
	r.seedBook(t, "2", "B", "Pub1", alice)
	r.seedBook(t, "3", "C", "Pub1", alice)
	r.seedBook(t, "4", "D", "Pub3", book.Author{Name: "Bob"})

	names, err := r.publishers.FindNamesByAuthor(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pub1", "Pub2"}, names)

	names, err = r.publishers.FindNamesByAuthor(ctx, "Nobody")
	require.NoError(t, err)
	assert.Empty(t, names)

	first, err := r.publishers.FindOrCreate(ctx, "Pub1")
	require.NoError(t, err)
	again, err := r.publishers.FindByName(ctx, "Pub1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
}

func TestTxManager_Rollback(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)

	boom := errors.New("boom")
	err := r.tx.Transaction(ctx, func(ctx context.Context) error {
		if _, err := r.publishers.FindOrCreate(ctx, "Pub1"); err != nil {
			return err
		}
		// 嵌套事务复用外层事务
		if err := r.tx.Transaction(ctx, func(ctx context.Context) error {
			_, err := r.authors.FindOrCreate(ctx, book.Author{Name: "Alice"})
			return err
		}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = r.publishers.FindByName(ctx, "Pub1")
	assert.ErrorIs(t, err, book.ErrPublisherNotFound)
	_, err = r.authors.FindByName(ctx, "Alice")
	assert.ErrorIs(t, err, book.ErrAuthorNotFound)
}

// TestCatalogService_WithDatabase 领域服务+真实仓储的端到端流程
func TestCatalogService_WithDatabase(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)
	svc := book.NewService(r.books, r.authors, r.publishers, r.tx)

	params := book.NewBookParams{
		ISBN:          "978-1",
		Title:         "Title A",
		PublisherName: "Pub1",
		Authors:       []book.Author{{Name: "Alice", BirthDate: date("1980-01-01")}},
	}
	added, err := svc.AddBook(ctx, params)
	require.NoError(t, err)
	assert.True(t, added)

	params.Title = "Ignored"
	added, err = svc.AddBook(ctx, params)
	require.NoError(t, err)
	assert.False(t, added)

	updated, err := svc.UpdateBook(ctx, "978-1", "New Title")
	require.NoError(t, err)
	assert.Equal(t, "New Title", updated.Title)

	publishers, err := svc.FindPublishersByAuthor(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pub1"}, publishers)

	removedAuthor, err := svc.RemoveAuthor(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", removedAuthor.Name)

	authors, err := svc.FindBookAuthors(ctx, "978-1")
	require.NoError(t, err)
	assert.Empty(t, authors)

	removed, err := svc.RemoveBook(ctx, "978-1")
	require.NoError(t, err)
	assert.Equal(t, "New Title", removed.Title)

	_, err = svc.FindBookByISBN(ctx, "978-1")
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	u := user.NewUser("editor@example.com", "hashed", "editor")
	require.NoError(t, repo.Create(ctx, u))
	assert.NotZero(t, u.ID)

	dup := user.NewUser("editor@example.com", "hashed", "other")
	assert.ErrorIs(t, repo.Create(ctx, dup), apperrors.ErrEmailDuplicate)

	found, err := repo.FindByEmail(ctx, "editor@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	found, err = repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "editor", found.Nickname)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "catalog.db?_foreign_keys=on", sqliteDSN("catalog.db"))
	assert.Equal(t, "file:x?mode=memory&_foreign_keys=on", sqliteDSN("file:x?mode=memory"))
}
