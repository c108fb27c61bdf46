// cmd/dcquery/commands.go
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/astro-datacenter/rundb/config"
	"github.com/astro-datacenter/rundb/internal/auth"
	"github.com/astro-datacenter/rundb/internal/catalog"
	"github.com/astro-datacenter/rundb/internal/core"
	"github.com/astro-datacenter/rundb/internal/dataset"
	"github.com/astro-datacenter/rundb/internal/query"
	"github.com/astro-datacenter/rundb/internal/render"
	"github.com/astro-datacenter/rundb/internal/storage"
)

type env struct {
	db     *sql.DB
	cfg    *config.Config
	out    io.Writer
	format string
	now    func() time.Time
}

func runPages(_ context.Context, e *env, _ []string) error {
	for _, name := range catalog.Names() {
		page, err := catalog.Lookup(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(e.out, "%s  %s\n", colorOK(page.Name), page.Title)
		cols := make([]string, 0, len(page.Columns))
		for _, c := range page.Columns {
			cols = append(cols, c.Key)
		}
		fmt.Fprintf(e.out, "  %s %s\n", colorInfo("columns:"), strings.Join(cols, " "))
		enums := make([]string, 0, len(page.Enums))
		for _, en := range page.Enums {
			enums = append(enums, en.Param)
		}
		if len(enums) > 0 {
			fmt.Fprintf(e.out, "  %s %s\n", colorInfo("enums:"), strings.Join(enums, " "))
		}
		steps := make([]string, 0, len(page.Steps))
		for _, s := range page.Steps {
			steps = append(steps, s.StatusParam())
		}
		if len(steps) > 0 {
			fmt.Fprintf(e.out, "  %s %s\n", colorInfo("status:"), strings.Join(steps, " "))
		}
	}
	return nil
}

func (e *env) statement(args []string) (query.Request, query.Statement, error) {
	if len(args) == 0 {
		return query.Request{}, query.Statement{}, errors.New("missing page name")
	}
	page, err := catalog.Lookup(args[0])
	if err != nil {
		return query.Request{}, query.Statement{}, fmt.Errorf("%w: '%s'", err, args[0])
	}
	values, err := parseAssignments(args[1:])
	if err != nil {
		return query.Request{}, query.Statement{}, err
	}
	req, err := query.NewRequest(page, core.ParamsFromValues(values), query.Options{
		Now:             e.now(),
		TimeLimit:       e.cfg.StatusTimeLimit,
		DefaultPageSize: e.cfg.DefaultPageSize,
		MaxPageSize:     e.cfg.MaxPageSize,
	})
	if err != nil {
		return query.Request{}, query.Statement{}, err
	}
	stmt, err := query.Build(req)
	return req, stmt, err
}

func runSQL(_ context.Context, e *env, args []string) error {
	_, stmt, err := e.statement(args)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.out, stmt.Debug())
	return nil
}

func runQuery(ctx context.Context, e *env, args []string) error {
	req, stmt, err := e.statement(args)
	if err != nil {
		return err
	}
	res, err := storage.RunQuery(ctx, e.db, stmt)
	if err != nil {
		var qe *storage.QueryError
		if errors.As(err, &qe) {
			return fmt.Errorf("%s\n%s", qe.Error(), stmt.Debug())
		}
		return err
	}
	return render.Write(e.out, e.format, render.View{Title: req.Page.Title, Offset: req.Paging.Offset, Result: res})
}

func runCheck(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(e.out)
	on := fs.String("on", "", "On sequences")
	off := fs.String("off", "", "Off sequences")
	name := fs.String("name", "", "Data-set name")
	comment := fs.String("comment", "", "Data-set comment")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sel := dataset.Selection{Name: *name, Comment: *comment}
	var err error
	if sel.On, err = dataset.ParseSequences(*on); err != nil {
		return err
	}
	if sel.Off, err = dataset.ParseSequences(*off); err != nil {
		return err
	}
	rep, err := dataset.Gather(ctx, e.db, sel)
	if err != nil {
		return err
	}
	res := dataset.Check(sel, rep)
	printFindings(e.out, sel.Mode(), res)
	if !res.OK() {
		return fmt.Errorf("%d error(s) found", res.Errors)
	}
	return nil
}

func printFindings(w io.Writer, mode string, res dataset.Result) {
	fmt.Fprintf(w, "%s %s\n", colorInfo("Mode:"), mode)
	for _, f := range res.Findings {
		var level string
		switch f.Level {
		case dataset.LevelError:
			level = colorErr(string(f.Level))
		case dataset.LevelWarn:
			level = colorWarn(string(f.Level))
		default:
			level = colorInfo(string(f.Level))
		}
		fmt.Fprintf(w, "%-5s %s\n", level, f.Message)
	}
	if res.OK() {
		fmt.Fprintln(w, colorOK("OK"))
	}
}

func runDataSetFile(ctx context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: dataset <number>")
	}
	number, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || number <= 0 {
		return fmt.Errorf("invalid data set number '%s'", args[0])
	}
	text, err := dataset.LoadFile(ctx, e.db, number)
	if err != nil {
		return err
	}
	_, err = io.WriteString(e.out, text)
	return err
}

func runAddUser(ctx context.Context, e *env, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: adduser <name> <password>")
	}
	hash, err := auth.HashPassword(args[1])
	if err != nil {
		return err
	}
	id, err := storage.CreateUser(ctx, e.db, args[0], hash)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%s user '%s' created (id %d)\n", colorOK("OK:"), args[0], id)
	return nil
}

func runUsers(ctx context.Context, e *env, _ []string) error {
	users, err := storage.ListUsers(ctx, e.db)
	if err != nil {
		return err
	}
	for _, u := range users {
		fmt.Fprintf(e.out, "%d\t%s\t%s\n", u.ID, u.Name, u.CreatedAt.Format(query.TimestampLayout))
	}
	return nil
}

func runPasswd(ctx context.Context, e *env, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: passwd <name> <password>")
	}
	hash, err := auth.HashPassword(args[1])
	if err != nil {
		return err
	}
	if err := storage.UpdatePassword(ctx, e.db, args[0], hash); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%s password of '%s' changed\n", colorOK("OK:"), args[0])
	return nil
}

func runDelUser(ctx context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: deluser <name>")
	}
	if err := storage.DeleteUser(ctx, e.db, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%s user '%s' deleted\n", colorOK("OK:"), args[0])
	return nil
}
