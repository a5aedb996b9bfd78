package main

import (
	"go.uber.org/fx"

	"github.com/noah-isme/coursehub-api/api/swagger"
	"github.com/noah-isme/coursehub-api/internal/bootstrap"
	"github.com/noah-isme/coursehub-api/internal/repository"
)

// @title Blog API
// @version 1.0.0
// @description Blog users and their posts
// @BasePath /
// @schemes http

func main() {
	fx.New(
		bootstrap.Core(bootstrap.App{
			Name:   "blog",
			Schema: repository.BlogSchema,
			Docs:   swagger.Blog,
		}),
		bootstrap.Blog,
		bootstrap.Serve,
	).Run()
}
