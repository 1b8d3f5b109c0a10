package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"
)

const (
	historyFile = ".exprcalc_history"
	promptMain  = "expr> "
)

var banner = "exprcalc REPL. Ctrl+D exits. Type :target <expr> to see the client-side surface, :quit to exit."

// runRepl mirrors the teacher's own liner-based REPL loop: history file
// under $HOME, Ctrl+C aborts the current line rather than the process,
// SIGTERM/SIGHUP flush history before exiting.
func runRepl(_ context.Context, app *appCtx) error {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	for {
		line, err := ln.Prompt(promptMain)
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return nil
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			return nil
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(line)

		if strings.HasPrefix(trimmed, ":") {
			if handleReplCommand(app, trimmed) {
				return nil
			}
			continue
		}

		out := app.eval.ProcessString(line, 1, -1, -1)
		fmt.Println(out)
		if errs := app.eval.Errors(); len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintf(os.Stderr, "  %s\n", e.Error())
			}
		}
	}
}

// handleReplCommand executes a leading-":" REPL directive. It returns
// true when the REPL loop should exit.
func handleReplCommand(app *appCtx, cmd string) bool {
	switch {
	case cmd == ":quit":
		return true
	case strings.HasPrefix(cmd, ":target "):
		expr := strings.TrimSpace(strings.TrimPrefix(cmd, ":target "))
		fmt.Println(app.eval.ToTargetExpression(expr))
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q. Type :quit to exit.\n", cmd)
	}
	return false
}
