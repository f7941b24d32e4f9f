package book

import (
	"time"

	"github.com/google/uuid"
)

// 图书目录事件类型,同时作为消息的routing key
const (
	EventBookAdded     = "book.added"
	EventBookUpdated   = "book.updated"
	EventBookRemoved   = "book.removed"
	EventAuthorRemoved = "author.removed"
)

// Event 领域事件
// 在事务提交后由应用层发布,消费方按ID去重
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// BookPayload 图书事件内容
type BookPayload struct {
	ISBN      string   `json:"isbn"`
	Title     string   `json:"title"`
	Publisher string   `json:"publisher"`
	Authors   []string `json:"authors"`
}

// AuthorPayload 作者事件内容
type AuthorPayload struct {
	Name      string `json:"name"`
	BirthDate string `json:"birth_date"`
}

// NewEvent 创建事件
func NewEvent(eventType string, payload interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// NewBookEvent 由图书实体生成事件
func NewBookEvent(eventType string, b *Book) Event {
	return NewEvent(eventType, BookPayload{
		ISBN:      b.ISBN,
		Title:     b.Title,
		Publisher: b.Publisher.Name,
		Authors:   b.AuthorNames(),
	})
}

// NewAuthorRemovedEvent 作者删除事件
func NewAuthorRemovedEvent(a *Author) Event {
	return NewEvent(EventAuthorRemoved, AuthorPayload{
		Name:      a.Name,
		BirthDate: a.BirthDate.Format(DateLayout),
	})
}
