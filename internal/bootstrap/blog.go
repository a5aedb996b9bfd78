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

// Blog wires the users/posts backend.
var Blog = fx.Options(
	fx.Provide(
		repository.NewBlogUserRepository,
		repository.NewPostRepository,
		func(users *repository.BlogUserRepository, posts *repository.PostRepository, validate *validator.Validate, log *zap.Logger) *service.BlogService {
			return service.NewBlogService(users, posts, validate, log)
		},
		func(svc *service.BlogService) *handler.BlogHandler {
			return handler.NewBlogHandler(svc)
		},
	),
	fx.Invoke(func(api *gin.RouterGroup, h *handler.BlogHandler) {
		handler.RegisterBlog(api, h)
	}),
)
