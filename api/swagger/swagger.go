package swagger

import "github.com/swaggo/swag"

// Instance names registered with swag, one per binary.
const (
	CourseHub = "coursehub"
	Library   = "library"
	Blog      = "blog"
)

const sharedDefinitions = `
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }`

const probes = `
        "/health": {
            "get": {"summary": "Health check", "responses": {"200": {"description": "OK"}}}
        },
        "/ready": {
            "get": {"summary": "Readiness check", "responses": {"200": {"description": "Ready"}, "503": {"description": "Database unavailable"}}}
        },
        "/metrics": {
            "get": {"summary": "Prometheus metrics", "produces": ["text/plain"], "responses": {"200": {"description": "OK"}}}
        },`

const courseHubTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "CourseHub API",
        "description": "Course platform with token sessions, role gating and enrollments",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": ["http"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Registration, login and token rotation"},
        {"name": "Users", "description": "User administration"},
        {"name": "Courses", "description": "Courses and roster export"},
        {"name": "Enrollments", "description": "Student enrollment ledger"},
        {"name": "Assignments", "description": "Course assignments"}
    ],
    "paths": {` + probes + `
        "/users/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register account",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Conflict or validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/users/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Login",
                "consumes": ["application/x-www-form-urlencoded"],
                "parameters": [
                    {"name": "username", "in": "formData", "required": true, "type": "string"},
                    {"name": "password", "in": "formData", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Token pair", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/users/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Rotate refresh token",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshRequest"}}],
                "responses": {
                    "200": {"description": "Token pair", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Token already used or revoked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/users/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke a refresh token",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshRequest"}}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/users/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user with courses",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/users/me/password": {
            "put": {
                "tags": ["Authentication"],
                "summary": "Change password",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangePasswordRequest"}}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List users",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "username", "in": "query", "type": "string"},
                    {"name": "email", "in": "query", "type": "string"},
                    {"name": "taught_course_title", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/users/{id}": {
            "get": {
                "tags": ["Users"],
                "summary": "Get user",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "put": {
                "tags": ["Users"],
                "summary": "Update user",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateUserRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Users"],
                "summary": "Delete user",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {
                    "200": {"description": "Deleted user", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List courses",
                "parameters": [
                    {"name": "title", "in": "query", "type": "string"},
                    {"name": "teacher_id", "in": "query", "type": "integer"},
                    {"name": "student_username", "in": "query", "type": "string"},
                    {"name": "assignment_title", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Courses"],
                "summary": "Create course",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCourseRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/courses/{id}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Get course",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "put": {
                "tags": ["Courses"],
                "summary": "Update course",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateCourseRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Courses"],
                "summary": "Delete course",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "Deleted course", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/courses/{id}/enroll": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll user",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "user_id", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Enrolled user", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Already enrolled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Enrollments"],
                "summary": "Unenroll user",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "user_id", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Unenrolled user", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not enrolled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{id}/roster": {
            "get": {
                "tags": ["Courses"],
                "summary": "Export roster",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {"200": {"description": "File"}}
            }
        },
        "/assignments": {
            "get": {
                "tags": ["Assignments"],
                "summary": "List assignments",
                "parameters": [
                    {"name": "title", "in": "query", "type": "string"},
                    {"name": "course_id", "in": "query", "type": "integer"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Assignments"],
                "summary": "Create assignment",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAssignmentRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/assignments/{id}": {
            "get": {
                "tags": ["Assignments"],
                "summary": "Get assignment",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "put": {
                "tags": ["Assignments"],
                "summary": "Update assignment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateAssignmentRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Assignments"],
                "summary": "Delete assignment",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "Deleted assignment", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "required": ["username", "email", "password"],
            "properties": {
                "username": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RefreshRequest": {
            "type": "object",
            "required": ["refresh_token"],
            "properties": {"refresh_token": {"type": "string"}}
        },
        "ChangePasswordRequest": {
            "type": "object",
            "required": ["old_password", "new_password"],
            "properties": {
                "old_password": {"type": "string"},
                "new_password": {"type": "string"}
            }
        },
        "UpdateUserRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "CreateCourseRequest": {
            "type": "object",
            "required": ["title", "teacher_id"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "teacher_id": {"type": "integer"}
            }
        },
        "UpdateCourseRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "CreateAssignmentRequest": {
            "type": "object",
            "required": ["title", "course_id"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "course_id": {"type": "integer"}
            }
        },
        "UpdateAssignmentRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"}
            }
        },` + sharedDefinitions + `
    }
}`

const libraryTemplate = `{
    "swagger": "2.0",
    "info": {"title": "Library API", "description": "Authors, books and chapters", "version": "1.0.0"},
    "basePath": "/",
    "schemes": ["http"],
    "tags": [{"name": "Library"}],
    "paths": {` + probes + `
        "/authors": {
            "get": {"tags": ["Library"], "summary": "List authors with their books", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "post": {"tags": ["Library"], "summary": "Create author", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AuthorRequest"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/authors/{id}": {
            "get": {"tags": ["Library"], "summary": "Get author", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "put": {"tags": ["Library"], "summary": "Update author", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AuthorRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "delete": {"tags": ["Library"], "summary": "Delete author", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/books": {
            "get": {"tags": ["Library"], "summary": "List books", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "post": {"tags": ["Library"], "summary": "Create book", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BookRequest"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/books/{id}": {
            "get": {"tags": ["Library"], "summary": "Get book", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "put": {"tags": ["Library"], "summary": "Update book", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BookRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "delete": {"tags": ["Library"], "summary": "Delete book", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/chapters": {
            "get": {"tags": ["Library"], "summary": "List chapters", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "post": {"tags": ["Library"], "summary": "Create chapter", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChapterRequest"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/chapters/{id}": {
            "get": {"tags": ["Library"], "summary": "Get chapter", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "put": {"tags": ["Library"], "summary": "Update chapter", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChapterRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "delete": {"tags": ["Library"], "summary": "Delete chapter", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        }
    },
    "definitions": {
        "AuthorRequest": {"type": "object", "required": ["name", "email"], "properties": {"name": {"type": "string"}, "email": {"type": "string"}}},
        "BookRequest": {"type": "object", "required": ["title", "author_id"], "properties": {"title": {"type": "string"}, "description": {"type": "string"}, "author_id": {"type": "integer"}}},
        "ChapterRequest": {"type": "object", "required": ["title", "book_id"], "properties": {"title": {"type": "string"}, "content": {"type": "string"}, "book_id": {"type": "integer"}}},` + sharedDefinitions + `
    }
}`

const blogTemplate = `{
    "swagger": "2.0",
    "info": {"title": "Blog API", "description": "Blog users and their posts", "version": "1.0.0"},
    "basePath": "/",
    "schemes": ["http"],
    "tags": [{"name": "Blog"}],
    "paths": {` + probes + `
        "/users": {
            "get": {"tags": ["Blog"], "summary": "List users with their posts", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "post": {"tags": ["Blog"], "summary": "Create user", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BlogUserRequest"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/users/{id}": {
            "get": {"tags": ["Blog"], "summary": "Get user", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "put": {"tags": ["Blog"], "summary": "Update user", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BlogUserRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "delete": {"tags": ["Blog"], "summary": "Delete user and posts", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "Deleted user", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/users/{id}/posts": {
            "post": {"tags": ["Blog"], "summary": "Create post", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreatePostRequest"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/posts": {
            "get": {"tags": ["Blog"], "summary": "List posts", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/posts/{id}": {
            "get": {"tags": ["Blog"], "summary": "Get post", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "put": {"tags": ["Blog"], "summary": "Update post", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdatePostRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "delete": {"tags": ["Blog"], "summary": "Delete post", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        }
    },
    "definitions": {
        "BlogUserRequest": {"type": "object", "required": ["username", "email"], "properties": {"username": {"type": "string"}, "email": {"type": "string"}, "is_active": {"type": "boolean"}}},
        "CreatePostRequest": {"type": "object", "required": ["title", "content"], "properties": {"title": {"type": "string"}, "content": {"type": "string"}}},
        "UpdatePostRequest": {"type": "object", "required": ["title", "content", "user_id"], "properties": {"title": {"type": "string"}, "content": {"type": "string"}, "user_id": {"type": "integer"}}},` + sharedDefinitions + `
    }
}`

type swaggerDoc struct {
	template string
}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return s.template
}

func init() {
	swag.Register(CourseHub, &swaggerDoc{template: courseHubTemplate})
	swag.Register(Library, &swaggerDoc{template: libraryTemplate})
	swag.Register(Blog, &swaggerDoc{template: blogTemplate})
}
