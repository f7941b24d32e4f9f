package book

import (
	"context"
	"errors"
	"sort"
	"strings"
)

// Service 图书领域服务接口
// 设计说明:
// 1. 协调Book/Author/Publisher三个仓储,维护"按名字查找或创建"的业务规则
// 2. 写操作都在Transactor提供的事务内完成
// 3. 返回领域实体,视图转换由应用层负责
type Service interface {
	// AddBook 上架图书
	// 业务规则:
	// - ISBN已存在时不做任何修改,返回false
	// - 出版社、作者按名字查找,不存在则创建
	// - 同一次调用中重名作者只保留第一个
	AddBook(ctx context.Context, params NewBookParams) (bool, error)

	// FindBookByISBN 根据ISBN获取图书
	FindBookByISBN(ctx context.Context, isbn string) (*Book, error)

	// RemoveBook 删除图书,返回被删除的图书
	RemoveBook(ctx context.Context, isbn string) (*Book, error)

	// UpdateBook 修改书名,ISBN、作者、出版社保持不变
	UpdateBook(ctx context.Context, isbn, title string) (*Book, error)

	// FindBooksByAuthor 查询作者的所有图书
	// 作者不存在返回ErrAuthorNotFound
	FindBooksByAuthor(ctx context.Context, authorName string) ([]*Book, error)

	// FindBooksByPublisher 查询出版社的所有图书
	// 出版社不存在返回ErrPublisherNotFound
	FindBooksByPublisher(ctx context.Context, publisherName string) ([]*Book, error)

	// FindBookAuthors 查询图书的作者列表
	FindBookAuthors(ctx context.Context, isbn string) ([]Author, error)

	// FindPublishersByAuthor 查询作者合作过的出版社名称(去重)
	// 作者不存在时返回空列表
	FindPublishersByAuthor(ctx context.Context, authorName string) ([]string, error)

	// RemoveAuthor 删除作者,返回被删除的作者
	// 作者与图书的关联一并解除,图书本身保留
	RemoveAuthor(ctx context.Context, authorName string) (*Author, error)
}

// service 领域服务实现
type service struct {
	books      BookRepository
	authors    AuthorRepository
	publishers PublisherRepository
	tx         Transactor
}

// NewService 创建图书领域服务
func NewService(books BookRepository, authors AuthorRepository, publishers PublisherRepository, tx Transactor) Service {
	return &service{
		books:      books,
		authors:    authors,
		publishers: publishers,
		tx:         tx,
	}
}

// AddBook 上架图书
func (s *service) AddBook(ctx context.Context, params NewBookParams) (bool, error) {
	// 1. 参数校验
	params = params.normalize()
	if err := validateNewBook(params); err != nil {
		return false, err
	}

	added := false
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		// 2. ISBN已存在则不做修改
		exists, err := s.books.ExistsByISBN(ctx, params.ISBN)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		// 3. 查找或创建出版社
		publisher, err := s.publishers.FindOrCreate(ctx, params.PublisherName)
		if err != nil {
			return err
		}

		// 4. 查找或创建作者
		// 按名字顺序处理,并发事务对authors唯一索引的加锁顺序一致
		unique := uniqueAuthors(params.Authors)
		sort.Slice(unique, func(i, j int) bool { return unique[i].Name < unique[j].Name })
		authors := make([]Author, 0, len(unique))
		for _, a := range unique {
			author, err := s.authors.FindOrCreate(ctx, a)
			if err != nil {
				return err
			}
			authors = append(authors, *author)
		}

		// 5. 持久化图书
		if err := s.books.Create(ctx, NewBook(params.ISBN, params.Title, *publisher, authors)); err != nil {
			return err
		}

		added = true
		return nil
	})

	// 并发插入相同ISBN时,唯一索引兜底:视为已存在
	if errors.Is(err, ErrISBNDuplicate) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return added, nil
}

// FindBookByISBN 根据ISBN获取图书
func (s *service) FindBookByISBN(ctx context.Context, isbn string) (*Book, error) {
	return s.books.FindByISBN(ctx, strings.TrimSpace(isbn))
}

// RemoveBook 删除图书
func (s *service) RemoveBook(ctx context.Context, isbn string) (*Book, error) {
	var removed *Book
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		b, err := s.books.FindByISBN(ctx, strings.TrimSpace(isbn))
		if err != nil {
			return err
		}
		if err := s.books.Delete(ctx, b.ID); err != nil {
			return err
		}
		removed = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// UpdateBook 修改书名
func (s *service) UpdateBook(ctx context.Context, isbn, title string) (*Book, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrInvalidTitle
	}

	var updated *Book
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		b, err := s.books.FindByISBN(ctx, strings.TrimSpace(isbn))
		if err != nil {
			return err
		}
		b.Rename(title)
		if err := s.books.UpdateTitle(ctx, b.ID, b.Title); err != nil {
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// FindBooksByAuthor 查询作者的所有图书
func (s *service) FindBooksByAuthor(ctx context.Context, authorName string) ([]*Book, error) {
	author, err := s.authors.FindByName(ctx, strings.TrimSpace(authorName))
	if err != nil {
		return nil, err
	}
	return s.books.FindByAuthorID(ctx, author.ID)
}

// FindBooksByPublisher 查询出版社的所有图书
func (s *service) FindBooksByPublisher(ctx context.Context, publisherName string) ([]*Book, error) {
	publisher, err := s.publishers.FindByName(ctx, strings.TrimSpace(publisherName))
	if err != nil {
		return nil, err
	}
	return s.books.FindByPublisherID(ctx, publisher.ID)
}

// FindBookAuthors 查询图书的作者列表
func (s *service) FindBookAuthors(ctx context.Context, isbn string) ([]Author, error) {
	b, err := s.books.FindByISBN(ctx, strings.TrimSpace(isbn))
	if err != nil {
		return nil, err
	}
	return b.Authors, nil
}

// FindPublishersByAuthor 查询作者合作过的出版社
func (s *service) FindPublishersByAuthor(ctx context.Context, authorName string) ([]string, error) {
	return s.publishers.FindNamesByAuthor(ctx, strings.TrimSpace(authorName))
}

// RemoveAuthor 删除作者
func (s *service) RemoveAuthor(ctx context.Context, authorName string) (*Author, error) {
	var removed *Author
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		a, err := s.authors.FindByName(ctx, strings.TrimSpace(authorName))
		if err != nil {
			return err
		}
		if err := s.authors.Delete(ctx, a.ID); err != nil {
			return err
		}
		removed = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// =========================================
// 辅助函数:业务规则校验
// =========================================

// validateNewBook 校验上架参数(调用前已normalize)
// ISBN只要求非空,不校验位数与校验位
func validateNewBook(p NewBookParams) error {
	if p.ISBN == "" {
		return ErrInvalidISBN
	}
	if p.Title == "" {
		return ErrInvalidTitle
	}
	if p.PublisherName == "" {
		return ErrInvalidPublisher
	}
	for _, a := range p.Authors {
		if a.Name == "" {
			return ErrInvalidAuthor
		}
	}
	return nil
}
