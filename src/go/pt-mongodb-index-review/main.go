package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/alecthomas/kong"
	"github.com/howeyc/gopass"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/percona/pt-mongodb-index-review/src/go/lib/config"
	"github.com/percona/pt-mongodb-index-review/src/go/lib/versioncheck"
	"github.com/percona/pt-mongodb-index-review/src/go/mongolib/review"
	"github.com/percona/pt-mongodb-index-review/src/go/mongolib/snapshot"
	"github.com/percona/pt-mongodb-index-review/src/go/mongolib/source"
)

const (
	toolname = "pt-mongodb-index-review"

	DEFAULT_LOGLEVEL  = "info"
	DEFAULT_OUTPUTDIR = "."
)

const (
	exitOK = iota
	exitUsage
	exitVersionUnsupported
	exitSourceUnavailable
	exitWriteFailed
	exitSnapshotMalformed
)

// We do not set anything here, these variables are defined by the Makefile
var (
	Build     string //nolint
	GoVersion string //nolint
	Version   string //nolint
	Commit    string //nolint
)

var buildInfo = fmt.Sprintf("%s\nVersion %s\nBuild: %s using %s\nCommit: %s", toolname, Version, Build, GoVersion, Commit)

type cliOptions struct {
	URI              string        `name:"uri" help:"MongoDB connection URI (required by run)."`
	ServerAlias      string        `name:"server-alias" help:"Alias for the server, stored in the snapshot and used to name the output file (required by run)."`
	SkipVersionCheck bool          `name:"skip-version-check" default:"${skip_version_check}" help:"Do not check the minimum Go runtime and MongoDB versions."`
	AskPass          bool          `name:"ask-pass" help:"Prompt for the password of the user in the URI."`
	OutputDir        string        `name:"output-dir" default:"${output_dir}" help:"Directory where the snapshot file is written."`
	Timeout          time.Duration `name:"timeout" default:"5m" help:"Maximum time to collect the snapshot."`
	LogLevel         string        `name:"log-level" default:"${log_level}" enum:"debug,info,warn,error" help:"Log level: debug, info, warn or error."`
	Version          kong.VersionFlag

	Run      struct{} `cmd:"" default:"1" help:"Collect a snapshot, save it and review it."`
	Evaluate struct {
		Files []string `arg:"" name:"file" help:"Snapshot files written by previous runs."`
	} `cmd:"" help:"Review snapshots written by previous runs."`
}

// exitError carries the process exit status of an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func main() {
	conf := config.DefaultConfig(toolname)

	var opts cliOptions
	parser, err := newParser(&opts, conf)
	if err != nil {
		log.Fatalf("cannot build the command line parser: %s", err)
	}

	kongctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	logLevel, err := log.ParseLevel(opts.LogLevel)
	if err != nil {
		fmt.Printf("Cannot set log level: %s", err.Error())
		os.Exit(exitUsage)
	}
	log.SetLevel(logLevel)

	switch kongctx.Command() {
	case "run":
		err = run(opts, os.Stdout)
	case "evaluate <file>":
		err = evaluate(opts.Evaluate.Files, os.Stdout)
	default:
		err = kongctx.PrintUsage(false)
	}

	if err != nil {
		log.Error(err)
	}
	os.Exit(exitCode(err))
}

func newParser(opts *cliOptions, conf *config.Config) (*kong.Kong, error) {
	outputDir := DEFAULT_OUTPUTDIR
	if conf.HasKey("output-dir") {
		outputDir = conf.GetString("output-dir")
	}
	logLevel := DEFAULT_LOGLEVEL
	if conf.HasKey("log-level") {
		logLevel = conf.GetString("log-level")
	}

	return kong.New(opts,
		kong.Name(toolname),
		kong.Description("Find unused and redundant MongoDB indexes"),
		kong.UsageOnError(),
		kong.Vars{
			"version":            buildInfo,
			"output_dir":         outputDir,
			"log_level":          logLevel,
			"skip_version_check": strconv.FormatBool(conf.GetBool("skip-version-check")),
		},
	)
}

func run(opts cliOptions, out io.Writer) error {
	if !opts.SkipVersionCheck {
		if err := versioncheck.CheckRuntime(); err != nil {
			return errors.Wrap(err, "use --skip-version-check to run anyway")
		}
	}

	if opts.URI == "" || opts.ServerAlias == "" {
		return &exitError{code: exitUsage, err: errors.New("--uri and --server-alias are required")}
	}
	if err := snapshot.ValidateServerAlias(opts.ServerAlias); err != nil {
		return &exitError{code: exitUsage, err: err}
	}

	password := ""
	if opts.AskPass {
		fmt.Fprint(os.Stderr, "Password: ")
		pass, err := gopass.GetPasswd()
		if err != nil {
			return &exitError{code: exitUsage, err: errors.Wrap(err, "cannot read the password")}
		}
		password = string(pass)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	log.Info("connecting to server")
	src, err := source.Connect(ctx, opts.URI, password)
	if err != nil {
		return err
	}
	defer src.Disconnect(context.Background()) //nolint:errcheck

	cfg := snapshot.BuildConfig{
		ServerAlias:      opts.ServerAlias,
		SkipVersionCheck: opts.SkipVersionCheck,
		ToolVersion:      Version,
	}
	s, err := snapshot.NewBuilder(src, cfg).Build(ctx)
	if err != nil {
		return err
	}

	path, err := snapshot.WriteFile(opts.OutputDir, s)
	if err != nil {
		return &exitError{code: exitWriteFailed, err: err}
	}
	log.Infof("snapshot written to %s", path)

	return reviewFile(path, out)
}

// evaluate reviews every file. A file that cannot be read does not stop the others;
// the first error is returned.
func evaluate(files []string, out io.Writer) error {
	var firstErr error
	for _, file := range files {
		if err := reviewFile(file, out); err != nil {
			log.Errorf("cannot review %s: %s", file, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func reviewFile(path string, out io.Writer) error {
	log.Infof("loading %s", path)
	s, err := snapshot.ReadFile(path)
	if err != nil {
		return err
	}

	findings := review.Evaluate(s)
	log.Debugf("%d findings in %s", len(findings), path)

	if err := review.Report(out, findings); err != nil {
		return err
	}
	return review.ReportSummary(out, review.Summarize(s, findings))
}

func exitCode(err error) int {
	var ee *exitError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &ee):
		return ee.code
	case errors.Is(err, versioncheck.ErrVersionUnsupported):
		return exitVersionUnsupported
	case errors.Is(err, snapshot.ErrSourceUnavailable):
		return exitSourceUnavailable
	case errors.Is(err, snapshot.ErrSnapshotMalformed):
		return exitSnapshotMalformed
	}
	return exitUsage
}
