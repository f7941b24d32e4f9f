package book

import (
	"strings"
	"time"
)

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. ISBN是业务唯一标识(数据库层保证唯一性),ID只在持久层内部使用
// 2. Book是多对多关系的拥有方:Authors由图书维护
// 3. Publisher是多对一关系,一本书只属于一个出版社
type Book struct {
	ID        uint
	ISBN      string   // ISBN号(国际标准书号)
	Title     string   // 书名
	Authors   []Author // 作者列表(按名字升序)
	Publisher Publisher
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DateLayout 出生日期格式
const DateLayout = "2006-01-02"

// Author 作者实体
// 名字是自然键:同名即同一作者
type Author struct {
	ID        uint
	Name      string
	BirthDate time.Time
}

// Publisher 出版社实体
// 名字是自然键
type Publisher struct {
	ID   uint
	Name string
}

// NewBook 创建新图书(工厂方法)
// publisher与authors必须是已持久化的实体(ID非0)
func NewBook(isbn, title string, publisher Publisher, authors []Author) *Book {
	now := time.Now()
	return &Book{
		ISBN:      isbn,
		Title:     title,
		Authors:   authors,
		Publisher: publisher,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Rename 修改书名(领域行为)
func (b *Book) Rename(title string) {
	b.Title = title
	b.UpdatedAt = time.Now()
}

// AuthorNames 返回作者名字列表
func (b *Book) AuthorNames() []string {
	names := make([]string, len(b.Authors))
	for i, a := range b.Authors {
		names[i] = a.Name
	}
	return names
}

// NewBookParams 上架图书参数
type NewBookParams struct {
	ISBN          string
	Title         string
	PublisherName string
	Authors       []Author // 只需要Name和BirthDate
}

// normalize 去除首尾空白
func (p NewBookParams) normalize() NewBookParams {
	out := NewBookParams{
		ISBN:          strings.TrimSpace(p.ISBN),
		Title:         strings.TrimSpace(p.Title),
		PublisherName: strings.TrimSpace(p.PublisherName),
		Authors:       make([]Author, len(p.Authors)),
	}
	for i, a := range p.Authors {
		out.Authors[i] = Author{Name: strings.TrimSpace(a.Name), BirthDate: a.BirthDate}
	}
	return out
}

// uniqueAuthors 按名字去重,保留第一次出现的记录
func uniqueAuthors(authors []Author) []Author {
	seen := make(map[string]struct{}, len(authors))
	result := make([]Author, 0, len(authors))
	for _, a := range authors {
		if _, ok := seen[a.Name]; ok {
			continue
		}
		seen[a.Name] = struct{}{}
		result = append(result, a)
	}
	return result
}
