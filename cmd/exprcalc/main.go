// Command exprcalc is a small demonstration harness for the expression
// package: a one-shot eval subcommand and an interactive REPL, both
// backed by internal/memvars so the engine has something to read
// variables from without a real survey host.
package main

import (
	"context"
	"os"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	expression "github.com/limesurvey/expression-engine"
	"github.com/limesurvey/expression-engine/internal/memvars"
)

var version = "dev"

type cli struct {
	Vars    string           `help:"YAML fixture of variables/questions to load." type:"existingfile" short:"v"`
	Verbose bool             `help:"Enable debug-level logging." short:"V"`
	Version kong.VersionFlag `help:"Print exprcalc's version and exit."`

	Eval evalCmd `cmd:"" help:"Evaluate a single expression and print the result."`
	Repl replCmd `cmd:"" help:"Start an interactive evaluation REPL."`
}

type evalCmd struct {
	Expr      string `arg:"" help:"Expression to evaluate."`
	ParseOnly bool   `help:"Parse-only mode: check syntax/arity without evaluating." name:"parse-only"`
	Target    bool   `help:"Print the client-side target-surface re-emission instead of evaluating."`
}

type replCmd struct{}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("exprcalc"),
		kong.Description("Demonstration CLI for the expression engine."),
		kong.Vars{"version": version},
	)

	log := newLogger(c.Verbose)
	store, err := loadStore(c.Vars)
	if err != nil {
		log.Fatal().Err(err).Msg("loading vars fixture")
	}
	eval := expression.New(store, store, expression.WithLogger(log))

	kctx.FatalIfErrorf(kctx.Run(&appCtx{eval: eval, log: log}))
}

type appCtx struct {
	eval *expression.Evaluator
	log  zerolog.Logger
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func loadStore(path string) (*memvars.Store, error) {
	if path == "" {
		return memvars.New(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return memvars.LoadFixture(data)
}

func (e *evalCmd) Run(app *appCtx) error {
	if e.Target {
		app.log.Info().Str("target", app.eval.ToTargetExpression(e.Expr)).Msg("emitted")
		return nil
	}

	ok := app.eval.Evaluate(e.Expr, e.ParseOnly)
	result := app.eval.Result()

	ev := app.log.Info()
	if !ok {
		ev = app.log.Warn()
	}
	ev.Bool("ok", ok).
		Str("result", result.Raw).
		Bool("null", result.IsNull).
		Strs("vars_used", app.eval.VarsUsed()).
		Msg("evaluated")

	for _, diag := range app.eval.Errors() {
		app.log.Error().Str("kind", diag.Kind.String()).Int("offset", diag.Offset).Msg(diag.Message)
	}
	return nil
}

func (r *replCmd) Run(app *appCtx) error {
	return runRepl(context.Background(), app)
}
