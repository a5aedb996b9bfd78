package bootstrap

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/noah-isme/coursehub-api/internal/handler"
	"github.com/noah-isme/coursehub-api/internal/repository"
	"github.com/noah-isme/coursehub-api/internal/service"
)

// Library wires the authors/books/chapters backend.
var Library = fx.Options(
	fx.Provide(
		repository.NewAuthorRepository,
		repository.NewBookRepository,
		repository.NewChapterRepository,
		func(authors *repository.AuthorRepository, books *repository.BookRepository, chapters *repository.ChapterRepository, validate *validator.Validate, log *zap.Logger) *service.LibraryService {
			return service.NewLibraryService(authors, books, chapters, validate, log)
		},
		func(svc *service.LibraryService) *handler.LibraryHandler {
			return handler.NewLibraryHandler(svc)
		},
	),
	fx.Invoke(func(api *gin.RouterGroup, h *handler.LibraryHandler) {
		handler.RegisterLibrary(api, h)
	}),
)
