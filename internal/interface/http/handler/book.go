package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookcatalog/internal/application/book"
	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/internal/interface/http/dto"
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
	"github.com/xiebiao/bookcatalog/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	addBook    *appbook.AddBookUseCase
	updateBook *appbook.UpdateBookUseCase
	removeBook *appbook.RemoveBookUseCase
	query      *appbook.QueryBooksUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	addBook *appbook.AddBookUseCase,
	updateBook *appbook.UpdateBookUseCase,
	removeBook *appbook.RemoveBookUseCase,
	query *appbook.QueryBooksUseCase,
) *BookHandler {
	return &BookHandler{
		addBook:    addBook,
		updateBook: updateBook,
		removeBook: removeBook,
		query:      query,
	}
}

// AddBook 上架图书
// @Summary      上架图书
// @Description  出版社、作者按名字查找，不存在则创建；ISBN已存在时不做修改，返回added=false
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddBookRequest true "图书信息"
// @Success      200 {object} response.Response{data=appbook.AddBookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/books [post]
func (h *BookHandler) AddBook(c *gin.Context) {
	var req dto.AddBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数格式错误: "+err.Error())
		return
	}

	authors, err := toAuthorInputs(req.Authors)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数格式错误: "+err.Error())
		return
	}

	result, err := h.addBook.Execute(c.Request.Context(), appbook.AddBookRequest{
		ISBN:      req.ISBN,
		Title:     req.Title,
		Publisher: req.Publisher,
		Authors:   authors,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// toAuthorInputs 解析作者出生日期(2006-01-02)，为空表示未知
func toAuthorInputs(reqs []dto.AuthorRequest) ([]appbook.AuthorInput, error) {
	authors := make([]appbook.AuthorInput, len(reqs))
	for i, a := range reqs {
		var birthDate time.Time
		if a.BirthDate != "" {
			parsed, err := time.Parse(book.DateLayout, a.BirthDate)
			if err != nil {
				return nil, fmt.Errorf("作者%s的出生日期格式错误: %w", a.Name, err)
			}
			birthDate = parsed
		}
		authors[i] = appbook.AuthorInput{Name: a.Name, BirthDate: birthDate}
	}
	return authors, nil
}

// GetBook 查询图书
// @Summary      查询图书
// @Tags         图书
// @Produce      json
// @Param        isbn path string true "ISBN"
// @Success      200 {object} response.Response{data=appbook.BookView}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{isbn} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	result, err := h.query.FindBookByISBN(c.Request.Context(), c.Param("isbn"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateBook 修改书名
// @Summary      修改书名
// @Description  只修改书名，ISBN、作者、出版社不变
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        isbn    path string                true "ISBN"
// @Param        request body dto.UpdateBookRequest true "新书名"
// @Success      200 {object} response.Response{data=appbook.BookView}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{isbn} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数格式错误: "+err.Error())
		return
	}
	h.rename(c, req.Title)
}

// UpdateTitle 修改书名（书名放在路径中）
// @Summary      修改书名
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        isbn  path string true "ISBN"
// @Param        title path string true "新书名"
// @Success      200 {object} response.Response{data=appbook.BookView}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{isbn}/title/{title} [put]
func (h *BookHandler) UpdateTitle(c *gin.Context) {
	h.rename(c, c.Param("title"))
}

func (h *BookHandler) rename(c *gin.Context, title string) {
	result, err := h.updateBook.Execute(c.Request.Context(), c.Param("isbn"), title)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// RemoveBook 删除图书
// @Summary      删除图书
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        isbn path string true "ISBN"
// @Success      200 {object} response.Response{data=appbook.BookView} "被删除的图书"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{isbn} [delete]
func (h *BookHandler) RemoveBook(c *gin.Context) {
	result, err := h.removeBook.Execute(c.Request.Context(), c.Param("isbn"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetBookAuthors 查询图书的作者
// @Summary      查询图书的作者
// @Tags         图书
// @Produce      json
// @Param        isbn path string true "ISBN"
// @Success      200 {object} response.Response{data=[]appbook.AuthorView}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{isbn}/authors [get]
func (h *BookHandler) GetBookAuthors(c *gin.Context) {
	result, err := h.query.FindBookAuthors(c.Request.Context(), c.Param("isbn"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
