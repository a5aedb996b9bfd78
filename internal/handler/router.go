package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursehub-api/internal/middleware"
	"github.com/noah-isme/coursehub-api/internal/models"
)

// CourseHubRoutes bundles the handlers mounted by the course platform.
type CourseHubRoutes struct {
	Auth        *AuthHandler
	Users       *UserHandler
	Courses     *CourseHandler
	Assignments *AssignmentHandler
	Sessions    middleware.SessionResolver
}

// Register mounts the course platform routes on api.
func (r CourseHubRoutes) Register(api gin.IRouter) {
	bearer := middleware.JWT(r.Sessions)
	admin := middleware.RequireRoles(models.RoleAdmin)

	users := api.Group("/users")
	users.POST("/register", r.Auth.Register)
	users.POST("/login", r.Auth.Login)
	users.POST("/refresh", r.Auth.Refresh)

	session := users.Group("", bearer)
	session.POST("/logout", r.Auth.Logout)
	session.GET("/me", r.Auth.Me)
	session.PUT("/me/password", r.Auth.ChangePassword)

	userAdmin := users.Group("", bearer, admin)
	userAdmin.GET("", r.Users.List)
	userAdmin.GET("/:id", r.Users.Get)
	userAdmin.PUT("/:id", r.Users.Update)
	userAdmin.DELETE("/:id", r.Users.Delete)

	courses := api.Group("/courses")
	courses.GET("", r.Courses.List)
	courses.GET("/:id", r.Courses.Get)

	courseAdmin := courses.Group("", bearer, admin)
	courseAdmin.POST("", r.Courses.Create)
	courseAdmin.PUT("/:id", r.Courses.Update)
	courseAdmin.DELETE("/:id", r.Courses.Delete)
	courseAdmin.POST("/:id/enroll", r.Courses.Enroll)
	courseAdmin.DELETE("/:id/enroll", r.Courses.Unenroll)
	courseAdmin.GET("/:id/roster", r.Courses.Roster)

	assignments := api.Group("/assignments")
	assignments.GET("", r.Assignments.List)
	assignments.GET("/:id", r.Assignments.Get)

	assignmentAdmin := assignments.Group("", bearer, admin)
	assignmentAdmin.POST("", r.Assignments.Create)
	assignmentAdmin.PUT("/:id", r.Assignments.Update)
	assignmentAdmin.DELETE("/:id", r.Assignments.Delete)
}

// RegisterLibrary mounts the author, book and chapter routes.
func RegisterLibrary(api gin.IRouter, h *LibraryHandler) {
	authors := api.Group("/authors")
	authors.POST("", h.CreateAuthor)
	authors.GET("", h.ListAuthors)
	authors.GET("/:id", h.GetAuthor)
	authors.PUT("/:id", h.UpdateAuthor)
	authors.DELETE("/:id", h.DeleteAuthor)

	books := api.Group("/books")
	books.POST("", h.CreateBook)
	books.GET("", h.ListBooks)
	books.GET("/:id", h.GetBook)
	books.PUT("/:id", h.UpdateBook)
	books.DELETE("/:id", h.DeleteBook)

	chapters := api.Group("/chapters")
	chapters.POST("", h.CreateChapter)
	chapters.GET("", h.ListChapters)
	chapters.GET("/:id", h.GetChapter)
	chapters.PUT("/:id", h.UpdateChapter)
	chapters.DELETE("/:id", h.DeleteChapter)
}

// RegisterBlog mounts the blog user and post routes.
func RegisterBlog(api gin.IRouter, h *BlogHandler) {
	users := api.Group("/users")
	users.POST("", h.CreateUser)
	users.GET("", h.ListUsers)
	users.GET("/:id", h.GetUser)
	users.PUT("/:id", h.UpdateUser)
	users.DELETE("/:id", h.DeleteUser)
	users.POST("/:id/posts", h.CreatePost)

	posts := api.Group("/posts")
	posts.GET("", h.ListPosts)
	posts.GET("/:id", h.GetPost)
	posts.PUT("/:id", h.UpdatePost)
	posts.DELETE("/:id", h.DeletePost)
}

// RegisterObservability mounts liveness, readiness and metrics endpoints.
func RegisterObservability(r gin.IRouter, h *MetricsHandler) {
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", h.Prometheus)
}
