// Package export is an opt-in output sink that copies queried courses into a
// sqlite or libsql database. Nothing in this module reads the rows back, it
// does not persist sessions or cache queries.
package export

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"sustechcourse-backend/lib/scrapers/sustech"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

const (
	DriverSqlite = "sqlite"
	DriverLibsql = "libsql"
)

const schema = `
create table if not exists course (
	student text not null,
	term text not null,
	code text not null,
	name text not null default '',
	grade text not null default '',
	score text not null default '',
	point text not null default '',
	hours text not null default '',
	eval_method text not null default '',
	course_type text not null default '',
	category text not null default '',
	updated_at integer not null,
	primary key (student, term, code)
);
`

const upsertCourse = `
insert into course (
	student, term, code, name, grade, score, point, hours,
	eval_method, course_type, category, updated_at
) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
on conflict (student, term, code) do update set
	name = excluded.name,
	grade = excluded.grade,
	score = excluded.score,
	point = excluded.point,
	hours = excluded.hours,
	eval_method = excluded.eval_method,
	course_type = excluded.course_type,
	category = excluded.category,
	updated_at = excluded.updated_at
`

type LibsqlConfig struct {
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

// Dsn returns the connection string of a remote libsql database.
func (config LibsqlConfig) Dsn() string {
	if config.AuthToken == "" {
		return config.Url
	}
	values := url.Values{}
	values.Add("authToken", config.AuthToken)
	return config.Url + "?" + values.Encode()
}

// OpenDB opens a database with one of the supported drivers. sqlite
// databases are put in WAL mode and limited to a single connection, which
// also keeps `:memory:` databases alive between statements.
func OpenDB(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverSqlite:
		db, err := sql.Open(DriverSqlite, dsn)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(1)
		_, err = db.Exec("pragma journal_mode = wal")
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("enable wal: %w", err)
		}
		return db, nil
	case DriverLibsql:
		return sql.Open(DriverLibsql, dsn)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

type Store struct {
	db *sql.DB
}

// NewStore creates the course table if it does not exist.
func NewStore(ctx context.Context, database *sql.DB) (Store, error) {
	_, err := database.ExecContext(ctx, schema)
	if err != nil {
		return Store{}, fmt.Errorf("create schema: %w", err)
	}
	return Store{db: database}, nil
}

// WriteCourses upserts the courses of a student in a single transaction,
// rows are keyed by (student, term, code) so writing the same term twice
// overwrites it.
func (s Store) WriteCourses(ctx context.Context, student string, courses []sustech.Course) error {
	if student == "" {
		return fmt.Errorf("student must not be empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertCourse)
	if err != nil {
		return err
	}
	defer stmt.Close()

	updatedAt := time.Now().Unix()
	for _, c := range courses {
		_, err := stmt.ExecContext(
			ctx,
			student, c.Term, c.Code, c.Name, c.Grade, c.Score, c.Point, c.Hours,
			c.EvalMethod, c.CourseType, c.Category, updatedAt,
		)
		if err != nil {
			return fmt.Errorf("write %s %s: %w", c.Term, c.Code, err)
		}
	}
	return tx.Commit()
}
