package main

import (
	"go.uber.org/fx"

	"github.com/noah-isme/coursehub-api/api/swagger"
	"github.com/noah-isme/coursehub-api/internal/bootstrap"
	"github.com/noah-isme/coursehub-api/internal/repository"
)

// @title CourseHub API
// @version 1.0.0
// @description Course platform with token sessions, role gating and enrollments
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	fx.New(
		bootstrap.Core(bootstrap.App{
			Name:   "coursehub",
			Schema: repository.CourseHubSchema,
			Docs:   swagger.CourseHub,
		}),
		bootstrap.CourseHub,
		bootstrap.Serve,
	).Run()
}
