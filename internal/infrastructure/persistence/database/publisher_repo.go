package database

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

// publisherRepository 出版社仓储实现
type publisherRepository struct {
	db *gorm.DB
}

// NewPublisherRepository 创建出版社仓储
func NewPublisherRepository(db *gorm.DB) book.PublisherRepository {
	return &publisherRepository{db: db}
}

// FindOrCreate 按名字查找出版社,不存在则创建
// 与authorRepository.FindOrCreate相同:条件插入+按名字当前读回查
func (r *publisherRepository) FindOrCreate(ctx context.Context, name string) (*book.Publisher, error) {
	db := getDB(ctx, r.db)

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&PublisherModel{Name: name}).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "创建出版社失败")
	}

	return r.findByName(db.Clauses(clause.Locking{Strength: "UPDATE"}), name)
}

// FindByName 按名字查找出版社
func (r *publisherRepository) FindByName(ctx context.Context, name string) (*book.Publisher, error) {
	return r.findByName(getDB(ctx, r.db), name)
}

func (r *publisherRepository) findByName(db *gorm.DB, name string) (*book.Publisher, error) {
	var model PublisherModel
	if err := db.Where("name = ?", name).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrPublisherNotFound
		}
		return nil, apperrors.Wrap(err, "查询出版社失败")
	}
	return toPublisherEntity(&model), nil
}

// FindNamesByAuthor 查询作者所有图书涉及的出版社名称
// 一条JOIN查询完成去重和排序,作者不存在时结果为空
func (r *publisherRepository) FindNamesByAuthor(ctx context.Context, authorName string) ([]string, error) {
	names := make([]string, 0)
	err := getDB(ctx, r.db).Model(&PublisherModel{}).
		Joins("JOIN books ON books.publisher_id = publishers.id").
		Joins("JOIN book_authors ON book_authors.book_id = books.id").
		Joins("JOIN authors ON authors.id = book_authors.author_id").
		Where("authors.name = ?", authorName).
		Distinct().
		Order("publishers.name ASC").
		Pluck("publishers.name", &names).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询作者出版社失败")
	}
	return names, nil
}

// toPublisherEntity GORM模型 → 领域实体
func toPublisherEntity(model *PublisherModel) *book.Publisher {
	return &book.Publisher{
		ID:   model.ID,
		Name: model.Name,
	}
}
