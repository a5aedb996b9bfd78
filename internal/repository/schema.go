package repository

import "github.com/noah-isme/coursehub-api/pkg/database"

// CourseHubSchema holds the course platform tables. Foreign keys carry no
// ON DELETE action: dependent rows are removed explicitly by the repositories.
var CourseHubSchema = database.Schema{
	Name: "coursehub",
	Statements: []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username VARCHAR(50) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role VARCHAR(16) NOT NULL DEFAULT 'student' CHECK (role IN ('student', 'teacher', 'admin')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS courses (
			id BIGSERIAL PRIMARY KEY,
			title VARCHAR(200) NOT NULL,
			description TEXT,
			teacher_id BIGINT REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (title, teacher_id)
		)`,
		`CREATE TABLE IF NOT EXISTS enrollments (
			user_id BIGINT NOT NULL REFERENCES users(id),
			course_id BIGINT NOT NULL REFERENCES courses(id),
			enrolled_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, course_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_enrollments_course ON enrollments (course_id)`,
		`CREATE TABLE IF NOT EXISTS assignments (
			id BIGSERIAL PRIMARY KEY,
			title VARCHAR(200) NOT NULL,
			description TEXT,
			course_id BIGINT NOT NULL REFERENCES courses(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assignments_course ON assignments (course_id)`,
		`CREATE TABLE IF NOT EXISTS refresh_tokens (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			token TEXT NOT NULL UNIQUE,
			user_role VARCHAR(16) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			expires_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user ON refresh_tokens (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_expires ON refresh_tokens (expires_at)`,
	},
}

// LibrarySchema holds the authors/books/chapters tables. Removing a parent
// detaches its children rather than deleting them.
var LibrarySchema = database.Schema{
	Name: "library",
	Statements: []string{
		`CREATE TABLE IF NOT EXISTS authors (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(200) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS books (
			id BIGSERIAL PRIMARY KEY,
			title VARCHAR(200) NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			author_id BIGINT REFERENCES authors(id) ON DELETE SET NULL
		)`,
		`CREATE TABLE IF NOT EXISTS chapters (
			id BIGSERIAL PRIMARY KEY,
			title VARCHAR(200) NOT NULL UNIQUE,
			content TEXT NOT NULL DEFAULT '',
			book_id BIGINT REFERENCES books(id) ON DELETE SET NULL
		)`,
	},
}

// BlogSchema holds the blog tables. Posts are removed with their user.
var BlogSchema = database.Schema{
	Name: "blog",
	Statements: []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username VARCHAR(50) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS posts (
			id BIGSERIAL PRIMARY KEY,
			title VARCHAR(200) NOT NULL,
			content TEXT NOT NULL,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_user ON posts (user_id)`,
	},
}
