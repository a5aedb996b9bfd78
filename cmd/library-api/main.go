package main

import (
	"go.uber.org/fx"

	"github.com/noah-isme/coursehub-api/api/swagger"
	"github.com/noah-isme/coursehub-api/internal/bootstrap"
	"github.com/noah-isme/coursehub-api/internal/repository"
)

// @title Library API
// @version 1.0.0
// @description Authors, books and chapters
// @BasePath /
// @schemes http

func main() {
	fx.New(
		bootstrap.Core(bootstrap.App{
			Name:   "library",
			Schema: repository.LibrarySchema,
			Docs:   swagger.Library,
		}),
		bootstrap.Library,
		bootstrap.Serve,
	).Run()
}
