package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/brunokim/logic-embed/consult"
	"github.com/brunokim/logic-embed/prolog"
)

type replOptions struct {
	*rootOptions
	consultFiles []string
	watch        bool
}

func newReplCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &replOptions{rootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive query loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(cmd, opts)
		},
	}
	cmd.Flags().StringSliceVar(&opts.consultFiles, "consult", nil, "files to consult, in order")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "re-consult the files when they change")
	return cmd
}

type repl struct {
	sess    *prolog.Session
	rl      *readline.Instance
	out     io.Writer
	logger  *slog.Logger
	changes <-chan []string
}

func runRepl(cmd *cobra.Command, opts *replOptions) error {
	sess, err := opts.newSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	r := &repl{
		sess:   sess,
		out:    cmd.OutOrStdout(),
		logger: slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil)),
	}
	if err := consult.Files(sess, opts.consultFiles...); err != nil {
		// A broken init file should not keep the shell from starting.
		r.logger.Error("consult failed", slog.String("error", err.Error()))
	}
	if opts.watch && len(opts.consultFiles) > 0 {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		r.changes, err = consult.Changes(ctx, opts.consultFiles, consult.Options{Logger: r.logger})
		if err != nil {
			return err
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 "?- ",
		HistoryFile:            "/tmp/plsh-history",
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		return err
	}
	defer rl.Close()
	r.rl = rl

	for {
		query, ok := r.readQuery()
		if !ok {
			return nil
		}
		r.applyReloads()
		r.runQuery(query)
	}
}

// readQuery reads one dot-terminated query, possibly over several lines.
// False means the input is closed.
func (r *repl) readQuery() (string, bool) {
	r.rl.SetPrompt("?- ")
	var lines []string
	for {
		line, err := r.rl.Readline()
		if err == readline.ErrInterrupt {
			lines = nil
			r.rl.SetPrompt("?- ")
			continue
		}
		if err != nil {
			return "", false
		}
		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		lines = append(lines, line)
		if strings.HasSuffix(line, ".") {
			break
		}
		r.rl.SetPrompt("|  ")
	}
	query := strings.Join(lines, " ")
	r.rl.SaveHistory(query)
	return strings.TrimSuffix(query, "."), true
}

// applyReloads re-consults files the watcher reported since the last
// query. Reloads happen here, between queries, so the session is only
// ever used from this goroutine.
func (r *repl) applyReloads() {
	for {
		select {
		case batch, ok := <-r.changes:
			if !ok {
				r.changes = nil
				return
			}
			for _, path := range batch {
				if err := consult.Files(r.sess, path); err != nil {
					r.logger.Error("reload failed",
						slog.String("path", path),
						slog.String("error", err.Error()))
					continue
				}
				fmt.Fprintf(r.out, "%% reloaded %s\n", path)
			}
		default:
			return
		}
	}
}

// runQuery proves one query, enumerating solutions while the user keeps
// answering ';'. Errors are printed, never fatal. The surrounding
// discard frame reclaims every term the query allocated.
func (r *repl) runQuery(text string) {
	frame, err := r.sess.OpenDiscardFrame()
	if err != nil {
		fmt.Fprintln(r.out, err)
		return
	}
	defer frame.End()

	goal, vars, err := r.sess.TermFromParsedWithVars(text)
	if err != nil {
		fmt.Fprintln(r.out, err)
		return
	}
	q, err := r.sess.NewQueryTerm(goal)
	if err != nil {
		fmt.Fprintln(r.out, err)
		return
	}
	aq, err := q.Open()
	if err != nil {
		fmt.Fprintln(r.out, err)
		return
	}
	defer aq.Close()

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	for {
		ok, err := aq.NextSolution()
		if err != nil {
			fmt.Fprintln(r.out, err)
			return
		}
		if !ok {
			fmt.Fprintln(r.out, "false.")
			return
		}
		r.printSolution(names, vars)
		if !r.askMore() {
			return
		}
	}
}

func (r *repl) printSolution(names []string, vars map[string]*prolog.Term) {
	if len(names) == 0 {
		fmt.Fprintln(r.out, "true")
		return
	}
	for _, name := range names {
		fmt.Fprintf(r.out, "%s = %s\n", name, vars[name])
	}
}

// askMore reads the post-solution command: ';' asks for another
// solution, '.' or a bare return stops. Interrupt and EOF stop too.
func (r *repl) askMore() bool {
	r.rl.SetPrompt("")
	for {
		line, err := r.rl.Readline()
		if err != nil {
			return false
		}
		switch strings.TrimSpace(line) {
		case ";":
			return true
		case ".", "":
			return false
		}
		fmt.Fprintln(r.out, "Expecting '.' or ';'")
	}
}
