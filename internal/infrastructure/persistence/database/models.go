package database

import (
	"time"

	"gorm.io/gorm"
)

// UserModel GORM用户模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/user/entity.go是领域实体，不依赖GORM
// 3. Repository负责两者之间的转换
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string         `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Nickname  string         `gorm:"size:50;not null;comment:昵称"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间（软删除）"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// BookModel GORM图书模型
// 设计说明:
// 1. ISBN有唯一索引,并发上架同一ISBN时由数据库兜底
// 2. 与出版社多对一,与作者多对多(book_authors关联表)
// 3. 物理删除:删除后同一ISBN可以重新上架
type BookModel struct {
	ID          uint           `gorm:"primaryKey"`
	ISBN        string         `gorm:"uniqueIndex;size:32;not null;comment:ISBN号"`
	Title       string         `gorm:"size:255;not null;comment:书名"`
	PublisherID uint           `gorm:"index;not null;comment:出版社ID"`
	Publisher   PublisherModel `gorm:"foreignKey:PublisherID"`
	Authors     []AuthorModel  `gorm:"many2many:book_authors;joinForeignKey:BookID;joinReferences:AuthorID"`
	CreatedAt   time.Time      `gorm:"comment:创建时间"`
	UpdatedAt   time.Time      `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// AuthorModel GORM作者模型
// 名字唯一:按名字查找或创建依赖该索引
type AuthorModel struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"uniqueIndex;size:100;not null;comment:作者名"`
	BirthDate time.Time `gorm:"type:date;comment:出生日期"`
	CreatedAt time.Time
}

// TableName 指定表名
func (AuthorModel) TableName() string {
	return "authors"
}

// PublisherModel GORM出版社模型
type PublisherModel struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex;size:100;not null;comment:出版社名"`
	CreatedAt time.Time
}

// TableName 指定表名
func (PublisherModel) TableName() string {
	return "publishers"
}

// BookAuthorModel 图书-作者关联表
// 只用于按条件批量删除关联,建表由BookModel.Authors完成
type BookAuthorModel struct {
	BookID   uint `gorm:"primaryKey"`
	AuthorID uint `gorm:"primaryKey"`
}

// TableName 指定表名
func (BookAuthorModel) TableName() string {
	return "book_authors"
}
