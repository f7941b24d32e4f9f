package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookcatalog/internal/application/book"
	"github.com/xiebiao/bookcatalog/pkg/response"
)

// AuthorHandler 作者HTTP处理器
type AuthorHandler struct {
	removeAuthor *appbook.RemoveAuthorUseCase
	query        *appbook.QueryBooksUseCase
}

// NewAuthorHandler 创建作者处理器
func NewAuthorHandler(removeAuthor *appbook.RemoveAuthorUseCase, query *appbook.QueryBooksUseCase) *AuthorHandler {
	return &AuthorHandler{
		removeAuthor: removeAuthor,
		query:        query,
	}
}

// GetBooks 查询作者的图书
// @Summary      查询作者的图书
// @Tags         作者
// @Produce      json
// @Param        name path string true "作者名"
// @Success      200 {object} response.Response{data=[]appbook.BookView}
// @Failure      404 {object} response.Response "作者不存在"
// @Router       /api/v1/authors/{name}/books [get]
func (h *AuthorHandler) GetBooks(c *gin.Context) {
	result, err := h.query.FindBooksByAuthor(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetPublishers 查询作者合作过的出版社
// @Summary      查询作者合作过的出版社
// @Description  作者不存在时返回空列表
// @Tags         作者
// @Produce      json
// @Param        name path string true "作者名"
// @Success      200 {object} response.Response{data=[]string}
// @Router       /api/v1/authors/{name}/publishers [get]
func (h *AuthorHandler) GetPublishers(c *gin.Context) {
	result, err := h.query.FindPublishersByAuthor(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Remove 删除作者
// @Summary      删除作者
// @Description  解除作者与图书的关联，图书保留
// @Tags         作者
// @Produce      json
// @Security     BearerAuth
// @Param        name path string true "作者名"
// @Success      200 {object} response.Response{data=appbook.AuthorView} "被删除的作者"
// @Failure      404 {object} response.Response "作者不存在"
// @Router       /api/v1/authors/{name} [delete]
func (h *AuthorHandler) Remove(c *gin.Context) {
	result, err := h.removeAuthor.Execute(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// PublisherHandler 出版社HTTP处理器
type PublisherHandler struct {
	query *appbook.QueryBooksUseCase
}

// NewPublisherHandler 创建出版社处理器
func NewPublisherHandler(query *appbook.QueryBooksUseCase) *PublisherHandler {
	return &PublisherHandler{query: query}
}

// GetBooks 查询出版社的图书
// @Summary      查询出版社的图书
// @Tags         出版社
// @Produce      json
// @Param        name path string true "出版社名"
// @Success      200 {object} response.Response{data=[]appbook.BookView}
// @Failure      404 {object} response.Response "出版社不存在"
// @Router       /api/v1/publishers/{name}/books [get]
func (h *PublisherHandler) GetBooks(c *gin.Context) {
	result, err := h.query.FindBooksByPublisher(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
