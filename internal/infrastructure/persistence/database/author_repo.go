package database

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

// authorRepository 作者仓储实现
type authorRepository struct {
	db *gorm.DB
}

// NewAuthorRepository 创建作者仓储
func NewAuthorRepository(db *gorm.DB) book.AuthorRepository {
	return &authorRepository{db: db}
}

// FindOrCreate 按名字查找作者,不存在则创建
// 学习要点:
// 1. 先SELECT再INSERT存在时间窗口,并发时会插入重复作者
// 2. INSERT ... ON CONFLICT DO NOTHING(MySQL: ON DUPLICATE KEY UPDATE id=id)由唯一索引保证原子性
// 3. 插入被忽略时拿不到ID,统一按名字回查
// 4. 回查必须是当前读(SELECT ... FOR UPDATE):InnoDB可重复读下普通SELECT读事务快照,
//    看不到并发事务刚提交的作者
// 5. 已存在的作者保留原出生日期
func (r *authorRepository) FindOrCreate(ctx context.Context, a book.Author) (*book.Author, error) {
	db := getDB(ctx, r.db)

	model := &AuthorModel{Name: a.Name, BirthDate: a.BirthDate}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(model).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "创建作者失败")
	}

	return r.findByName(db.Clauses(clause.Locking{Strength: "UPDATE"}), a.Name)
}

// FindByName 按名字查找作者
func (r *authorRepository) FindByName(ctx context.Context, name string) (*book.Author, error) {
	return r.findByName(getDB(ctx, r.db), name)
}

func (r *authorRepository) findByName(db *gorm.DB, name string) (*book.Author, error) {
	var model AuthorModel
	if err := db.Where("name = ?", name).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrAuthorNotFound
		}
		return nil, apperrors.Wrap(err, "查询作者失败")
	}
	return toAuthorEntity(&model), nil
}

// Delete 删除作者
// 只解除book_authors关联,图书保留(可能变为无作者图书)
func (r *authorRepository) Delete(ctx context.Context, id uint) error {
	db := getDB(ctx, r.db)

	if err := db.Where("author_id = ?", id).Delete(&BookAuthorModel{}).Error; err != nil {
		return apperrors.Wrap(err, "解除作者图书关联失败")
	}

	result := db.Delete(&AuthorModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除作者失败")
	}
	if result.RowsAffected == 0 {
		return book.ErrAuthorNotFound
	}

	return nil
}

// toAuthorEntity GORM模型 → 领域实体
func toAuthorEntity(model *AuthorModel) *book.Author {
	return &book.Author{
		ID:        model.ID,
		Name:      model.Name,
		BirthDate: model.BirthDate,
	}
}
