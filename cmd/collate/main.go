// Command collate 编码、解码并排序可按字节比较的排序键。
//
//	collate [--config path] <command> [flags] [args]
//
// 输入为每行一个 JSON 文档，未指定文件时读取标准输入。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	"github.com/lk2023060901/collate-go/application"
	"github.com/lk2023060901/collate-go/pkg/log"
	"github.com/lk2023060901/collate-go/pkg/metrics"
)

const version = "0.3.0"

// errUsage 表示命令行参数错误，退出码为 2。
var errUsage = errors.New("usage error")

type command struct {
	usage string
	run   func(ctx context.Context, env *env, args []string) error
}

var commands = map[string]command{
	"encode":  {"encode [--hex] [file]", runEncode},
	"decode":  {"decode [--hex] [file]", runDecode},
	"numkey":  {"numkey <number>...", runNumkey},
	"compare": {"compare <json> <json>", runCompare},
	"sort":    {"sort [--out keyfile] [--dedup] [file]", runSort},
	"dump":    {"dump <keyfile>", runDump},
	"version": {"version", runVersion},
}

// env 是一次命令执行的上下文。
type env struct {
	app    *application.Application
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("collate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.String("config", "", "path of the config file (yaml or json)")
	fs.Usage = func() { printUsage(stderr) }
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		printUsage(stderr)
		return 2
	}
	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "collate: unknown command %q\n", name)
		printUsage(stderr)
		return 2
	}

	app := application.New()
	if err := app.RunWithArgs(args); err != nil {
		fmt.Fprintf(stderr, "collate: %v\n", err)
		return 1
	}
	defer log.Cleanup()

	if _, err := maxprocs.Set(maxprocs.Logger(log.S().Debugf)); err != nil {
		log.Warn("failed to set GOMAXPROCS", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	metrics.Register(registry)

	ctx, span := log.NewIntentContext("collate", name)
	defer span.End()
	ctx = log.WithCommand(ctx, name)

	e := &env{app: app, stdin: stdin, stdout: stdout, stderr: stderr}
	err := cmd.run(ctx, e, fs.Args()[1:])

	if path := app.Settings().Metrics.Textfile; path != "" {
		if werr := metrics.WriteTextfile(path, registry); werr != nil {
			log.Ctx(ctx).Warn("failed to write metrics textfile", zap.String("path", path), zap.Error(werr))
		}
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "usage: collate %s\n", cmd.usage)
		return 2
	default:
		log.Ctx(ctx).Debug("command failed", zap.Error(err))
		fmt.Fprintf(stderr, "collate %s: %v\n", name, err)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: collate [--config path] <command> [flags] [args]")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
}
