package book

import (
	"context"
	"sort"
)

// memoryStore 内存版仓储,仅用于领域服务单元测试
type memoryStore struct {
	nextID     uint
	books      map[string]*Book // key: ISBN
	authors    map[string]*Author
	publishers map[string]*Publisher

	// failCreate 非nil时Create返回该错误(模拟唯一索引冲突等)
	failCreate error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		books:      make(map[string]*Book),
		authors:    make(map[string]*Author),
		publishers: make(map[string]*Publisher),
	}
}

func (m *memoryStore) id() uint {
	m.nextID++
	return m.nextID
}

func (m *memoryStore) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memoryBooks struct{ *memoryStore }

func (r memoryBooks) ExistsByISBN(_ context.Context, isbn string) (bool, error) {
	_, ok := r.books[isbn]
	return ok, nil
}

func (r memoryBooks) Create(_ context.Context, b *Book) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	b.ID = r.id()
	stored := *b
	stored.Authors = append([]Author(nil), b.Authors...)
	sort.Slice(stored.Authors, func(i, j int) bool { return stored.Authors[i].Name < stored.Authors[j].Name })
	r.books[b.ISBN] = &stored
	return nil
}

func (r memoryBooks) FindByISBN(_ context.Context, isbn string) (*Book, error) {
	b, ok := r.books[isbn]
	if !ok {
		return nil, ErrBookNotFound
	}
	cp := *b
	cp.Authors = r.liveAuthors(b.Authors)
	return &cp, nil
}

func (r memoryBooks) UpdateTitle(_ context.Context, id uint, title string) error {
	for _, b := range r.books {
		if b.ID == id {
			b.Title = title
			return nil
		}
	}
	return ErrBookNotFound
}

func (r memoryBooks) Delete(_ context.Context, id uint) error {
	for isbn, b := range r.books {
		if b.ID == id {
			delete(r.books, isbn)
			return nil
		}
	}
	return ErrBookNotFound
}

func (r memoryBooks) FindByAuthorID(ctx context.Context, authorID uint) ([]*Book, error) {
	return r.filter(ctx, func(b *Book) bool {
		for _, a := range r.liveAuthors(b.Authors) {
			if a.ID == authorID {
				return true
			}
		}
		return false
	})
}

func (r memoryBooks) FindByPublisherID(ctx context.Context, publisherID uint) ([]*Book, error) {
	return r.filter(ctx, func(b *Book) bool { return b.Publisher.ID == publisherID })
}

func (r memoryBooks) filter(ctx context.Context, keep func(*Book) bool) ([]*Book, error) {
	result := make([]*Book, 0)
	for isbn, b := range r.books {
		if keep(b) {
			cp, _ := r.FindByISBN(ctx, isbn)
			result = append(result, cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ISBN < result[j].ISBN })
	return result, nil
}

// liveAuthors 过滤掉已删除的作者(模拟关联表级联清理)
func (r memoryBooks) liveAuthors(authors []Author) []Author {
	live := make([]Author, 0, len(authors))
	for _, a := range authors {
		if stored, ok := r.authors[a.Name]; ok && stored.ID == a.ID {
			live = append(live, a)
		}
	}
	return live
}

type memoryAuthors struct{ *memoryStore }

func (r memoryAuthors) FindOrCreate(_ context.Context, a Author) (*Author, error) {
	if existing, ok := r.authors[a.Name]; ok {
		cp := *existing
		return &cp, nil
	}
	a.ID = r.id()
	r.authors[a.Name] = &a
	cp := a
	return &cp, nil
}

func (r memoryAuthors) FindByName(_ context.Context, name string) (*Author, error) {
	a, ok := r.authors[name]
	if !ok {
		return nil, ErrAuthorNotFound
	}
	cp := *a
	return &cp, nil
}

func (r memoryAuthors) Delete(_ context.Context, id uint) error {
	for name, a := range r.authors {
		if a.ID == id {
			delete(r.authors, name)
			return nil
		}
	}
	return ErrAuthorNotFound
}

type memoryPublishers struct{ *memoryStore }

func (r memoryPublishers) FindOrCreate(_ context.Context, name string) (*Publisher, error) {
	if existing, ok := r.publishers[name]; ok {
		cp := *existing
		return &cp, nil
	}
	p := &Publisher{ID: r.id(), Name: name}
	r.publishers[name] = p
	cp := *p
	return &cp, nil
}

func (r memoryPublishers) FindByName(_ context.Context, name string) (*Publisher, error) {
	p, ok := r.publishers[name]
	if !ok {
		return nil, ErrPublisherNotFound
	}
	cp := *p
	return &cp, nil
}

func (r memoryPublishers) FindNamesByAuthor(ctx context.Context, authorName string) ([]string, error) {
	names := make([]string, 0)
	author, ok := r.authors[authorName]
	if !ok {
		return names, nil
	}
	seen := make(map[string]struct{})
	books, _ := memoryBooks{r.memoryStore}.FindByAuthorID(ctx, author.ID)
	for _, b := range books {
		if _, dup := seen[b.Publisher.Name]; dup {
			continue
		}
		seen[b.Publisher.Name] = struct{}{}
		names = append(names, b.Publisher.Name)
	}
	sort.Strings(names)
	return names, nil
}

func newTestService() (Service, *memoryStore) {
	store := newMemoryStore()
	svc := NewService(memoryBooks{store}, memoryAuthors{store}, memoryPublishers{store}, store)
	return svc, store
}
