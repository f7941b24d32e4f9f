package book

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/pkg/metrics"
)

// stubService 可配置返回值的领域服务
type stubService struct {
	book.Service // 未覆盖的方法调用时panic

	added      bool
	books      map[string]*book.Book
	byAuthor   map[string][]*book.Book
	publishers []string
	err        error

	lastParams book.NewBookParams
}

func newStubService() *stubService {
	return &stubService{
		books:    make(map[string]*book.Book),
		byAuthor: make(map[string][]*book.Book),
	}
}

func (s *stubService) AddBook(_ context.Context, params book.NewBookParams) (bool, error) {
	s.lastParams = params
	if s.err != nil {
		return false, s.err
	}
	if s.added {
		s.books[params.ISBN] = &book.Book{
			ISBN:      params.ISBN,
			Title:     params.Title,
			Publisher: book.Publisher{Name: params.PublisherName},
			Authors:   params.Authors,
		}
	}
	return s.added, nil
}

func (s *stubService) FindBookByISBN(_ context.Context, isbn string) (*book.Book, error) {
	b, ok := s.books[isbn]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	return b, nil
}

func (s *stubService) UpdateBook(_ context.Context, isbn, title string) (*book.Book, error) {
	b, ok := s.books[isbn]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	b.Title = title
	return b, nil
}

func (s *stubService) RemoveBook(_ context.Context, isbn string) (*book.Book, error) {
	b, ok := s.books[isbn]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	delete(s.books, isbn)
	return b, nil
}

func (s *stubService) FindBooksByAuthor(_ context.Context, name string) ([]*book.Book, error) {
	books, ok := s.byAuthor[name]
	if !ok {
		return nil, book.ErrAuthorNotFound
	}
	return books, nil
}

func (s *stubService) FindBooksByPublisher(_ context.Context, name string) ([]*book.Book, error) {
	return nil, book.ErrPublisherNotFound
}

func (s *stubService) FindBookAuthors(ctx context.Context, isbn string) ([]book.Author, error) {
	b, err := s.FindBookByISBN(ctx, isbn)
	if err != nil {
		return nil, err
	}
	return b.Authors, nil
}

func (s *stubService) FindPublishersByAuthor(_ context.Context, _ string) ([]string, error) {
	return s.publishers, s.err
}

func (s *stubService) RemoveAuthor(_ context.Context, name string) (*book.Author, error) {
	if name != "Alice" {
		return nil, book.ErrAuthorNotFound
	}
	return &book.Author{Name: "Alice", BirthDate: date("1980-05-17")}, nil
}

// recordingPublisher 记录发布的事件
type recordingPublisher struct {
	events []book.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, evt book.Event) error {
	p.events = append(p.events, evt)
	return p.err
}

func date(s string) time.Time {
	t, _ := time.Parse(book.DateLayout, s)
	return t
}

func sampleBook() *book.Book {
	return &book.Book{
		ISBN:      "978-0-13",
		Title:     "The Go Programming Language",
		Publisher: book.Publisher{Name: "Addison-Wesley"},
		Authors: []book.Author{
			{Name: "Alan Donovan", BirthDate: date("1975-01-02")},
			{Name: "Brian Kernighan", BirthDate: date("1942-01-30")},
		},
	}
}

// withSpanRecorder 安装记录Span的TracerProvider
func withSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return recorder
}

func TestAddBookUseCase(t *testing.T) {
	recorder := withSpanRecorder(t)
	svc := newStubService()
	svc.added = true
	events := &recordingPublisher{}
	uc := NewAddBookUseCase(svc, events)

	resp, err := uc.Execute(context.Background(), AddBookRequest{
		ISBN:      "978-0-13",
		Title:     "The Go Programming Language",
		Publisher: "Addison-Wesley",
		Authors:   []AuthorInput{{Name: "Alan Donovan", BirthDate: date("1975-01-02")}},
	})
	require.NoError(t, err)
	assert.True(t, resp.Added)

	assert.Equal(t, "Addison-Wesley", svc.lastParams.PublisherName)
	require.Len(t, svc.lastParams.Authors, 1)
	assert.Equal(t, date("1975-01-02"), svc.lastParams.Authors[0].BirthDate)

	require.Len(t, events.events, 1)
	assert.Equal(t, book.EventBookAdded, events.events[0].Type)
	assert.Equal(t, "978-0-13", events.events[0].Payload.(book.BookPayload).ISBN)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "catalog.add_book", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

// TestAddBookUseCase_Existing ISBN已存在不发布事件
func TestAddBookUseCase_Existing(t *testing.T) {
	svc := newStubService()
	events := &recordingPublisher{}

	resp, err := NewAddBookUseCase(svc, events).Execute(context.Background(), AddBookRequest{ISBN: "978-0-13", Title: "x", Publisher: "p"})
	require.NoError(t, err)
	assert.False(t, resp.Added)
	assert.Empty(t, events.events)
}

func TestAddBookUseCase_Error(t *testing.T) {
	recorder := withSpanRecorder(t)
	svc := newStubService()
	svc.err = book.ErrInvalidISBN

	_, err := NewAddBookUseCase(svc, &recordingPublisher{}).Execute(context.Background(), AddBookRequest{})
	assert.ErrorIs(t, err, book.ErrInvalidISBN)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

// TestUpdateBookUseCase_PublishFailure 事件发布失败不影响结果
func TestUpdateBookUseCase_PublishFailure(t *testing.T) {
	svc := newStubService()
	svc.books["978-0-13"] = sampleBook()
	events := &recordingPublisher{err: errors.New("broker unavailable")}

	view, err := NewUpdateBookUseCase(svc, events).Execute(context.Background(), "978-0-13", "Go语言圣经")
	require.NoError(t, err)

	assert.Equal(t, "Go语言圣经", view.Title)
	assert.Equal(t, "Addison-Wesley", view.Publisher)
	require.Len(t, events.events, 1)
	assert.Equal(t, book.EventBookUpdated, events.events[0].Type)
}

func TestUpdateBookUseCase_NotFound(t *testing.T) {
	events := &recordingPublisher{}
	before := testutil.ToFloat64(metricsCounter("update_book", metrics.ResultNotFound))

	_, err := NewUpdateBookUseCase(newStubService(), events).Execute(context.Background(), "missing", "t")
	assert.ErrorIs(t, err, book.ErrBookNotFound)
	assert.Empty(t, events.events)

	assert.Equal(t, before+1, testutil.ToFloat64(metricsCounter("update_book", metrics.ResultNotFound)))
}

func TestRemoveBookUseCase(t *testing.T) {
	svc := newStubService()
	svc.books["978-0-13"] = sampleBook()
	events := &recordingPublisher{}
	uc := NewRemoveBookUseCase(svc, events)

	view, err := uc.Execute(context.Background(), "978-0-13")
	require.NoError(t, err)
	assert.Equal(t, BookView{
		ISBN:  "978-0-13",
		Title: "The Go Programming Language",
		Authors: []AuthorView{
			{Name: "Alan Donovan", BirthDate: "1975-01-02"},
			{Name: "Brian Kernighan", BirthDate: "1942-01-30"},
		},
		Publisher: "Addison-Wesley",
	}, *view)
	require.Len(t, events.events, 1)
	assert.Equal(t, book.EventBookRemoved, events.events[0].Type)

	_, err = uc.Execute(context.Background(), "978-0-13")
	assert.ErrorIs(t, err, book.ErrBookNotFound)
	assert.Len(t, events.events, 1)
}

func TestRemoveAuthorUseCase(t *testing.T) {
	events := &recordingPublisher{}
	uc := NewRemoveAuthorUseCase(newStubService(), events)

	view, err := uc.Execute(context.Background(), "Alice")
	require.NoError(t, err)
	assert.Equal(t, AuthorView{Name: "Alice", BirthDate: "1980-05-17"}, *view)
	require.Len(t, events.events, 1)
	assert.Equal(t, book.EventAuthorRemoved, events.events[0].Type)

	_, err = uc.Execute(context.Background(), "Nobody")
	assert.ErrorIs(t, err, book.ErrAuthorNotFound)
}

func TestQueryBooksUseCase(t *testing.T) {
	svc := newStubService()
	b := sampleBook()
	svc.books[b.ISBN] = b
	svc.byAuthor["Alan Donovan"] = []*book.Book{b}
	uc := NewQueryBooksUseCase(svc)
	ctx := context.Background()

	view, err := uc.FindBookByISBN(ctx, b.ISBN)
	require.NoError(t, err)
	assert.Equal(t, "Addison-Wesley", view.Publisher)

	authors, err := uc.FindBookAuthors(ctx, b.ISBN)
	require.NoError(t, err)
	assert.Equal(t, []AuthorView{
		{Name: "Alan Donovan", BirthDate: "1975-01-02"},
		{Name: "Brian Kernighan", BirthDate: "1942-01-30"},
	}, authors)

	books, err := uc.FindBooksByAuthor(ctx, "Alan Donovan")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, b.ISBN, books[0].ISBN)

	_, err = uc.FindBooksByAuthor(ctx, "Nobody")
	assert.ErrorIs(t, err, book.ErrAuthorNotFound)

	_, err = uc.FindBooksByPublisher(ctx, "Nobody")
	assert.ErrorIs(t, err, book.ErrPublisherNotFound)

	_, err = uc.FindBookByISBN(ctx, "missing")
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}

// TestQueryBooksUseCase_FindPublishersByAuthor 作者不存在返回空列表而不是nil
func TestQueryBooksUseCase_FindPublishersByAuthor(t *testing.T) {
	svc := newStubService()
	uc := NewQueryBooksUseCase(svc)

	names, err := uc.FindPublishersByAuthor(context.Background(), "Nobody")
	require.NoError(t, err)
	assert.NotNil(t, names)
	assert.Empty(t, names)

	svc.publishers = []string{"Addison-Wesley", "O'Reilly"}
	names, err = uc.FindPublishersByAuthor(context.Background(), "Alan Donovan")
	require.NoError(t, err)
	assert.Equal(t, []string{"Addison-Wesley", "O'Reilly"}, names)
}

func metricsCounter(operation, result string) prometheus.Counter {
	metrics.InitMetrics()
	return metrics.CatalogOperationsTotal.WithLabelValues(operation, result)
}
