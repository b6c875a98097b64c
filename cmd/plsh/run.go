package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brunokim/logic-embed/consult"
)

type runOptions struct {
	*rootOptions
	consultFiles []string
	query        string
}

func newRunCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &runOptions{rootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Prove a query and print every solution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryAll(cmd, opts)
		},
	}
	cmd.Flags().StringSliceVar(&opts.consultFiles, "consult", nil, "files to consult, in order")
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "query to prove (required)")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func runQueryAll(cmd *cobra.Command, opts *runOptions) error {
	sess, err := opts.newSession()
	if err != nil {
		return err
	}
	defer sess.Close()
	if err := consult.Files(sess, opts.consultFiles...); err != nil {
		return err
	}

	text := strings.TrimSuffix(strings.TrimSpace(opts.query), ".")
	goal, vars, err := sess.TermFromParsedWithVars(text)
	if err != nil {
		return err
	}
	q, err := sess.NewQueryTerm(goal)
	if err != nil {
		return err
	}
	aq, err := q.Open()
	if err != nil {
		return err
	}
	defer aq.Close()

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	out := cmd.OutOrStdout()
	proven := false
	for {
		ok, err := aq.NextSolution()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		proven = true
		if len(names) > 0 {
			pairs := make([]string, len(names))
			for i, name := range names {
				pairs[i] = fmt.Sprintf("%s = %s", name, vars[name])
			}
			fmt.Fprintln(out, strings.Join(pairs, ", "))
		}
	}
	if proven {
		fmt.Fprintln(out, "true.")
	} else {
		fmt.Fprintln(out, "false.")
	}
	return nil
}
