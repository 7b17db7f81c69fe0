// Command embedrec 是推荐引擎的命令行入口，结果以 JSON 输出到 stdout。
//
//	embedrec [-config embedrec.yaml] <command> [flags]
//
// 命令：
//
//	similar-items  -name NAME | -id ID  [-n 10] [-dir nearest|farthest] [-raw]
//	similar-users  -user ID [-n 10] [-dir nearest|farthest] [-raw]
//	prefs          -user ID
//	recommend      -user ID [-n 10] [-similar-users 10] [-filter CEL]
//	hybrid         -user ID [-n 10]
//	check
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"

	"github.com/rushteam/embedrec/config"
	"github.com/rushteam/embedrec/core"
	"github.com/rushteam/embedrec/pkg/logging"
	"github.com/rushteam/embedrec/ranker"
	"github.com/rushteam/embedrec/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("embedrec", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", os.Getenv("EMBEDREC_CONFIG"), "path to YAML config file")
	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: embedrec [-config file] <similar-items|similar-users|prefs|recommend|hybrid|check> [flags]")
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	a, err := build(ctx, cfg)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer a.Close()

	cmd, cmdArgs := global.Arg(0), global.Args()[1:]
	out, err := dispatch(ctx, a.rec, cmd, cmdArgs, stderr)
	if err != nil {
		var usage usageError
		if errors.As(err, &usage) {
			fmt.Fprintln(stderr, err)
			return 2
		}
		l := logging.Logger()
		ev := l.Error().Err(err).Str("command", cmd)
		if de := core.GetDomainError(err); de != nil {
			ev = ev.Str("code", de.Code).Str("module", de.Module)
		}
		ev.Msg("command failed")
		return 1
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func dispatch(ctx context.Context, rec *service.Recommender, cmd string, args []string, stderr io.Writer) (any, error) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		name         = fs.String("name", "", "item display name")
		id           = fs.Int64("id", 0, "item id")
		user         = fs.Int64("user", 0, "user id")
		n            = fs.Int("n", 0, "number of results (0 uses the configured default)")
		dirFlag      = fs.String("dir", "nearest", "nearest or farthest")
		raw          = fs.Bool("raw", false, "return raw scores and selected row indices")
		similarUsers = fs.Int("similar-users", 0, "number of similar users to aggregate")
		filterExpr   = fs.String("filter", "", "CEL expression over entry fields")
	)
	if err := fs.Parse(args); err != nil {
		return nil, usageError{err.Error()}
	}
	dir, err := ranker.ParseDirection(*dirFlag)
	if err != nil {
		return nil, usageError{err.Error()}
	}
	userSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "user" {
			userSet = true
		}
	})
	needUser := func() error {
		if !userSet {
			return usageError{cmd + ": -user is required"}
		}
		return nil
	}

	switch cmd {
	case "similar-items":
		switch {
		case *raw && (*name != "" || *id == 0):
			return nil, usageError{"similar-items: -raw takes -id"}
		case *raw:
			return rec.SimilarItemsRaw(ctx, *id, *n, dir)
		case *name != "":
			return rec.SimilarItemsByName(ctx, *name, *n, dir)
		case *id != 0:
			return rec.SimilarItemsByID(ctx, *id, *n, dir)
		default:
			return nil, usageError{"similar-items: -name or -id is required"}
		}
	case "similar-users":
		if err := needUser(); err != nil {
			return nil, err
		}
		if *raw {
			return rec.SimilarUsersRaw(ctx, *user, *n, dir)
		}
		return rec.SimilarUsers(ctx, *user, *n, dir)
	case "prefs":
		if err := needUser(); err != nil {
			return nil, err
		}
		return rec.UserPreferences(ctx, *user)
	case "recommend":
		if err := needUser(); err != nil {
			return nil, err
		}
		return rec.UserRecommendations(ctx, *user, service.Request{N: *n, SimilarUsers: *similarUsers, Filter: *filterExpr})
	case "hybrid":
		if err := needUser(); err != nil {
			return nil, err
		}
		return rec.Hybrid(ctx, *user, *n)
	case "check":
		if err := rec.Check(ctx); err != nil {
			return nil, err
		}
		return map[string]string{"status": "ok"}, nil
	default:
		return nil, usageError{"unknown command " + cmd}
	}
}
