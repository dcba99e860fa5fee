package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sustechcourse-backend/lib/export"
	"sustechcourse-backend/lib/scrapers/sustech"
	"sustechcourse-backend/lib/textutil"

	"github.com/spf13/cobra"
)

type queryFlags struct {
	terms     []string
	match     string
	json      bool
	db        string
	driver    string
	authToken string
	student   string
}

var queryOpts queryFlags

func init() {
	flags := queryCmd.Flags()
	flags.StringSliceVarP(&queryOpts.terms, "term", "t", nil, "Terms to query, ex. 2018-1 or 2018-2019-1, all terms when omitted.")
	flags.StringVarP(&queryOpts.match, "match", "m", "", "Only keep courses whose name or code matches.")
	flags.BoolVar(&queryOpts.json, "json", false, "Print the courses as json instead of a table.")
	flags.StringVar(&queryOpts.db, "db", "", "Also write the courses to this database (a file for sqlite, a url for libsql).")
	flags.StringVar(&queryOpts.driver, "driver", export.DriverSqlite, "Database driver, sqlite or libsql.")
	flags.StringVar(&queryOpts.authToken, "auth-token", "", "Auth token of a remote libsql database.")
	flags.StringVar(&queryOpts.student, "student", "", "Student id the exported rows are keyed by, defaults to the username.")
	rootCmd.AddCommand(queryCmd)
}

var queryCmd = &cobra.Command{
	Use:   "query [--term <year-term>...] [--match <name>] [--json] [--db <path>]",
	Short: "Queries grades and prints them.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}
		return runQuery(cmd.Context(), cfg, queryOpts, cmd.OutOrStdout())
	},
}

func parseTermFlags(values []string) ([]sustech.Term, error) {
	terms := make([]sustech.Term, len(values))
	for i, v := range values {
		t, err := sustech.ParseTerm(v)
		if err != nil {
			return nil, err
		}
		terms[i] = t
	}
	return terms, nil
}

func runQuery(ctx context.Context, cfg Config, flags queryFlags, out io.Writer) error {
	terms, err := parseTermFlags(flags.terms)
	if err != nil {
		return err
	}

	session, err := newSession(cfg)
	if err != nil {
		return err
	}
	auth, err := session.Login(ctx, cfg.Username, cfg.Password)
	if err != nil {
		return err
	}

	var courses []sustech.Course
	if len(terms) == 0 {
		courses, err = auth.QueryAll(ctx)
	} else {
		courses, err = auth.QueryTerms(ctx, terms)
	}
	if err != nil {
		return err
	}
	if flags.match != "" {
		courses = textutil.FilterCourses(courses, flags.match)
	}

	if flags.db != "" {
		student := flags.student
		if student == "" {
			student = cfg.Username
		}
		err = exportCourses(ctx, flags, student, courses)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		slog.Info("exported courses", "db", flags.db, "count", len(courses))
	}

	if flags.json {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(courses)
	}
	renderCourses(out, courses)
	return nil
}

func exportCourses(ctx context.Context, flags queryFlags, student string, courses []sustech.Course) error {
	dsn := flags.db
	if flags.driver == export.DriverLibsql {
		dsn = export.LibsqlConfig{Url: flags.db, AuthToken: flags.authToken}.Dsn()
	}
	db, err := export.OpenDB(flags.driver, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := export.NewStore(ctx, db)
	if err != nil {
		return err
	}
	return store.WriteCourses(ctx, student, courses)
}
