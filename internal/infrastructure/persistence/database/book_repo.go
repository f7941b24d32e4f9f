package database

import (
	"context"
	"errors"
	"sort"

	"gorm.io/gorm"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

// bookRepository 图书仓储实现
// 设计说明:
// 1. 实现domain/book/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 处理数据库特定的错误(如ISBN重复),转换为业务错误
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.BookRepository {
	return &bookRepository{db: db}
}

// ExistsByISBN 判断ISBN是否已存在
func (r *bookRepository) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	var count int64
	err := getDB(ctx, r.db).Model(&BookModel{}).Where("isbn = ?", isbn).Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(err, "查询图书失败")
	}
	return count > 0, nil
}

// Create 创建图书
// 作者、出版社必须已持久化:Omit跳过关联记录的upsert,只写book_authors关联行
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	// 1. 领域实体 → GORM模型
	model := &BookModel{
		ISBN:        b.ISBN,
		Title:       b.Title,
		PublisherID: b.Publisher.ID,
		Authors:     toAuthorModels(b.Authors),
	}

	// 2. 插入数据库
	if err := getDB(ctx, r.db).Omit("Publisher", "Authors.*").Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return book.ErrISBNDuplicate
		}
		return apperrors.Wrap(err, "创建图书失败")
	}

	// 3. 回填自增ID
	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	sortAuthors(b.Authors)

	return nil
}

// FindByISBN 根据ISBN查找图书
func (r *bookRepository) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	var model BookModel
	err := r.preloaded(ctx).Where("isbn = ?", isbn).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}

	return toBookEntity(&model), nil
}

// UpdateTitle 修改书名
// 不检查RowsAffected:MySQL在值未变化时返回0
func (r *bookRepository) UpdateTitle(ctx context.Context, id uint, title string) error {
	err := getDB(ctx, r.db).Model(&BookModel{}).Where("id = ?", id).Update("title", title).Error
	if err != nil {
		return apperrors.Wrap(err, "更新图书失败")
	}
	return nil
}

// Delete 删除图书(物理删除)
// 先删关联行,再删图书本身
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	db := getDB(ctx, r.db)

	if err := db.Where("book_id = ?", id).Delete(&BookAuthorModel{}).Error; err != nil {
		return apperrors.Wrap(err, "删除图书作者关联失败")
	}

	result := db.Delete(&BookModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除图书失败")
	}
	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}

	return nil
}

// FindByAuthorID 查询某作者的所有图书
func (r *bookRepository) FindByAuthorID(ctx context.Context, authorID uint) ([]*book.Book, error) {
	bookIDs := getDB(ctx, r.db).Model(&BookAuthorModel{}).Select("book_id").Where("author_id = ?", authorID)
	return r.list(ctx, "id IN (?)", bookIDs)
}

// FindByPublisherID 查询某出版社的所有图书
func (r *bookRepository) FindByPublisherID(ctx context.Context, publisherID uint) ([]*book.Book, error) {
	return r.list(ctx, "publisher_id = ?", publisherID)
}

// list 按条件查询图书,ISBN升序
func (r *bookRepository) list(ctx context.Context, query string, args ...interface{}) ([]*book.Book, error) {
	var models []BookModel
	err := r.preloaded(ctx).Where(query, args...).Order("isbn ASC").Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询图书列表失败")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books, nil
}

// preloaded 预加载作者和出版社
func (r *bookRepository) preloaded(ctx context.Context) *gorm.DB {
	return getDB(ctx, r.db).Preload("Authors").Preload("Publisher")
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel) *book.Book {
	authors := make([]book.Author, len(model.Authors))
	for i := range model.Authors {
		authors[i] = *toAuthorEntity(&model.Authors[i])
	}
	sortAuthors(authors)

	return &book.Book{
		ID:        model.ID,
		ISBN:      model.ISBN,
		Title:     model.Title,
		Authors:   authors,
		Publisher: *toPublisherEntity(&model.Publisher),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// toAuthorModels 领域实体 → GORM模型(只需要ID建立关联)
func toAuthorModels(authors []book.Author) []AuthorModel {
	models := make([]AuthorModel, len(authors))
	for i, a := range authors {
		models[i] = AuthorModel{ID: a.ID, Name: a.Name, BirthDate: a.BirthDate}
	}
	return models
}

// sortAuthors 作者按名字升序
func sortAuthors(authors []book.Author) {
	sort.Slice(authors, func(i, j int) bool { return authors[i].Name < authors[j].Name })
}
