package book

import (
	"context"
)

// BookRepository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 所有方法都必须参与ctx中携带的事务(见Transactor)
type BookRepository interface {
	// ExistsByISBN 判断ISBN是否已存在
	ExistsByISBN(ctx context.Context, isbn string) (bool, error)

	// Create 创建图书并建立作者关联
	// ISBN唯一索引冲突时返回ErrISBNDuplicate
	Create(ctx context.Context, book *Book) error

	// FindByISBN 根据ISBN查找图书(含作者、出版社)
	FindByISBN(ctx context.Context, isbn string) (*Book, error)

	// UpdateTitle 修改书名
	UpdateTitle(ctx context.Context, id uint, title string) error

	// Delete 删除图书及其作者关联(物理删除)
	Delete(ctx context.Context, id uint) error

	// FindByAuthorID 查询某作者的所有图书,按ISBN升序
	FindByAuthorID(ctx context.Context, authorID uint) ([]*Book, error)

	// FindByPublisherID 查询某出版社的所有图书,按ISBN升序
	FindByPublisherID(ctx context.Context, publisherID uint) ([]*Book, error)
}

// AuthorRepository 作者仓储接口
type AuthorRepository interface {
	// FindOrCreate 按名字查找作者,不存在则创建
	// 实现必须是单条条件插入(INSERT ... ON CONFLICT DO NOTHING)+按名字回查,
	// 并发插入同名作者时不会产生重复记录
	FindOrCreate(ctx context.Context, author Author) (*Author, error)

	// FindByName 按名字查找作者
	FindByName(ctx context.Context, name string) (*Author, error)

	// Delete 删除作者,同时解除其与图书的关联
	Delete(ctx context.Context, id uint) error
}

// PublisherRepository 出版社仓储接口
type PublisherRepository interface {
	// FindOrCreate 按名字查找出版社,不存在则创建(语义同AuthorRepository.FindOrCreate)
	FindOrCreate(ctx context.Context, name string) (*Publisher, error)

	// FindByName 按名字查找出版社
	FindByName(ctx context.Context, name string) (*Publisher, error)

	// FindNamesByAuthor 查询某作者所有图书涉及的出版社名称(去重,升序)
	FindNamesByAuthor(ctx context.Context, authorName string) ([]string, error)
}

// Transactor 事务边界
// fn内通过ctx调用的仓储方法都在同一事务中执行:
// fn返回error时回滚,返回nil时提交
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
