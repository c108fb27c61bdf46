// cmd/dcquery/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/astro-datacenter/rundb/config"
	"github.com/astro-datacenter/rundb/internal/storage"
)

// Color definitions for the terminal output
var (
	colorOK   = color.New(color.FgGreen, color.Bold).SprintFunc()
	colorErr  = color.New(color.FgRed, color.Bold).SprintFunc()
	colorWarn = color.New(color.FgYellow).SprintFunc()
	colorInfo = color.New(color.FgBlue).SprintFunc()
)

type command struct {
	usage   string
	help    string
	handler func(ctx context.Context, env *env, args []string) error
}

func commands() map[string]command {
	return map[string]command{
		"pages":   {usage: "pages", help: "List the report pages and their parameters", handler: runPages},
		"query":   {usage: "query <page> [key=value ...]", help: "Run a page query and print the result", handler: runQuery},
		"sql":     {usage: "sql <page> [key=value ...]", help: "Print the statement of a page query without running it", handler: runSQL},
		"check":   {usage: "check -on <seqs> [-off <seqs>] -name <name> -comment <text>", help: "Check a data-set selection", handler: runCheck},
		"dataset": {usage: "dataset <number>", help: "Print the file of a stored data set", handler: runDataSetFile},
		"adduser": {usage: "adduser <name> <password>", help: "Create a user allowed to log in", handler: runAddUser},
		"passwd":  {usage: "passwd <name> <password>", help: "Change the password of a user", handler: runPasswd},
		"deluser": {usage: "deluser <name>", help: "Delete a user", handler: runDelUser},
		"users":   {usage: "users", help: "List the users", handler: runUsers},
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: dcquery [-format table|text|json] <command> [args]\n\nCommands:\n")
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for n := range cmds {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(os.Stderr, "  %-60s %s\n", cmds[n].usage, cmds[n].help)
	}
}

func main() {
	format := flag.String("format", "table", "Output format of query results (table, text, json)")
	timeout := flag.Duration("timeout", time.Minute, "Timeout of one command")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}
	cmd, ok := commands()[flag.Arg(0)]
	if !ok {
		fmt.Fprintf(os.Stderr, "%s unknown command '%s'\n", colorErr("Error:"), flag.Arg(0))
		usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", colorErr("Error:"), err)
		os.Exit(1)
	}
	db, err := storage.Connect(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", colorErr("Error:"), err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	e := &env{db: db, cfg: cfg, out: os.Stdout, format: *format, now: time.Now}
	if err := cmd.handler(ctx, e, flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", colorErr("Error:"), err)
		os.Exit(1)
	}
}

// parseAssignments turns key=value arguments into request parameters.
func parseAssignments(args []string) (map[string][]string, error) {
	values := make(map[string][]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("argument '%s' is not of the form key=value", arg)
		}
		values[key] = append(values[key], value)
	}
	return values, nil
}
