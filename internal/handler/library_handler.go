package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursehub-api/internal/dto"
	"github.com/noah-isme/coursehub-api/internal/models"
	"github.com/noah-isme/coursehub-api/pkg/response"
)

type libraryService interface {
	CreateAuthor(ctx context.Context, req dto.AuthorRequest) (*models.Author, error)
	ListAuthors(ctx context.Context, page models.PageRequest) ([]models.AuthorDetail, *models.Pagination, error)
	GetAuthor(ctx context.Context, id int64) (*models.AuthorDetail, error)
	UpdateAuthor(ctx context.Context, id int64, req dto.AuthorRequest) (*models.Author, error)
	DeleteAuthor(ctx context.Context, id int64) error

	CreateBook(ctx context.Context, req dto.BookRequest) (*models.Book, error)
	ListBooks(ctx context.Context, page models.PageRequest) ([]models.Book, *models.Pagination, error)
	GetBook(ctx context.Context, id int64) (*models.Book, error)
	UpdateBook(ctx context.Context, id int64, req dto.BookRequest) (*models.Book, error)
	DeleteBook(ctx context.Context, id int64) error

	CreateChapter(ctx context.Context, req dto.ChapterRequest) (*models.Chapter, error)
	ListChapters(ctx context.Context, page models.PageRequest) ([]models.Chapter, *models.Pagination, error)
	GetChapter(ctx context.Context, id int64) (*models.Chapter, error)
	UpdateChapter(ctx context.Context, id int64, req dto.ChapterRequest) (*models.Chapter, error)
	DeleteChapter(ctx context.Context, id int64) error
}

// LibraryHandler exposes author, book and chapter endpoints.
type LibraryHandler struct {
	service libraryService
}

// NewLibraryHandler builds a new handler.
func NewLibraryHandler(svc libraryService) *LibraryHandler {
	return &LibraryHandler{service: svc}
}

// CreateAuthor godoc
// @Summary Create author
// @Tags Library
// @Accept json
// @Produce json
// @Param payload body dto.AuthorRequest true "Author payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /authors [post]
func (h *LibraryHandler) CreateAuthor(c *gin.Context) {
	var req dto.AuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid author payload"))
		return
	}
	author, err := h.service.CreateAuthor(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, author)
}

// ListAuthors godoc
// @Summary List authors with their books
// @Tags Library
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /authors [get]
func (h *LibraryHandler) ListAuthors(c *gin.Context) {
	items, pagination, err := h.service.ListAuthors(c.Request.Context(), pageRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// GetAuthor godoc
// @Summary Get author
// @Tags Library
// @Produce json
// @Param id path int true "Author ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /authors/{id} [get]
func (h *LibraryHandler) GetAuthor(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	author, err := h.service.GetAuthor(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, author, nil)
}

// UpdateAuthor godoc
// @Summary Update author
// @Tags Library
// @Accept json
// @Produce json
// @Param id path int true "Author ID"
// @Param payload body dto.AuthorRequest true "Author payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /authors/{id} [put]
func (h *LibraryHandler) UpdateAuthor(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.AuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid author payload"))
		return
	}
	author, err := h.service.UpdateAuthor(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, author, nil)
}

// DeleteAuthor godoc
// @Summary Delete author
// @Tags Library
// @Produce json
// @Param id path int true "Author ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /authors/{id} [delete]
func (h *LibraryHandler) DeleteAuthor(c *gin.Context) {
	h.delete(c, h.service.DeleteAuthor, "author deleted")
}

// CreateBook godoc
// @Summary Create book
// @Tags Library
// @Accept json
// @Produce json
// @Param payload body dto.BookRequest true "Book payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /books [post]
func (h *LibraryHandler) CreateBook(c *gin.Context) {
	var req dto.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid book payload"))
		return
	}
	book, err := h.service.CreateBook(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, book)
}

// ListBooks godoc
// @Summary List books
// @Tags Library
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /books [get]
func (h *LibraryHandler) ListBooks(c *gin.Context) {
	items, pagination, err := h.service.ListBooks(c.Request.Context(), pageRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// GetBook godoc
// @Summary Get book
// @Tags Library
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /books/{id} [get]
func (h *LibraryHandler) GetBook(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	book, err := h.service.GetBook(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, book, nil)
}

// UpdateBook godoc
// @Summary Update book
// @Tags Library
// @Accept json
// @Produce json
// @Param id path int true "Book ID"
// @Param payload body dto.BookRequest true "Book payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /books/{id} [put]
func (h *LibraryHandler) UpdateBook(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid book payload"))
		return
	}
	book, err := h.service.UpdateBook(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, book, nil)
}

// DeleteBook godoc
// @Summary Delete book
// @Tags Library
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /books/{id} [delete]
func (h *LibraryHandler) DeleteBook(c *gin.Context) {
	h.delete(c, h.service.DeleteBook, "book deleted")
}

// CreateChapter godoc
// @Summary Create chapter
// @Tags Library
// @Accept json
// @Produce json
// @Param payload body dto.ChapterRequest true "Chapter payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /chapters [post]
func (h *LibraryHandler) CreateChapter(c *gin.Context) {
	var req dto.ChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid chapter payload"))
		return
	}
	chapter, err := h.service.CreateChapter(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, chapter)
}

// ListChapters godoc
// @Summary List chapters
// @Tags Library
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /chapters [get]
func (h *LibraryHandler) ListChapters(c *gin.Context) {
	items, pagination, err := h.service.ListChapters(c.Request.Context(), pageRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// GetChapter godoc
// @Summary Get chapter
// @Tags Library
// @Produce json
// @Param id path int true "Chapter ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /chapters/{id} [get]
func (h *LibraryHandler) GetChapter(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	chapter, err := h.service.GetChapter(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, chapter, nil)
}

// UpdateChapter godoc
// @Summary Update chapter
// @Tags Library
// @Accept json
// @Produce json
// @Param id path int true "Chapter ID"
// @Param payload body dto.ChapterRequest true "Chapter payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /chapters/{id} [put]
func (h *LibraryHandler) UpdateChapter(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid chapter payload"))
		return
	}
	chapter, err := h.service.UpdateChapter(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, chapter, nil)
}

// DeleteChapter godoc
// @Summary Delete chapter
// @Tags Library
// @Produce json
// @Param id path int true "Chapter ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /chapters/{id} [delete]
func (h *LibraryHandler) DeleteChapter(c *gin.Context) {
	h.delete(c, h.service.DeleteChapter, "chapter deleted")
}

func (h *LibraryHandler) delete(c *gin.Context, del func(context.Context, int64) error, message string) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := del(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": message}, nil)
}
