package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/brunokim/logic-embed/fli"
)

type parseOptions struct {
	*rootOptions
}

func newParseCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &parseOptions{rootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "parse [files...]",
		Short: "Read programs and pretty-print their clauses",
		Long:  "Read each program and print its clauses back, quoted so the output reads in again. With no files, reads stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, opts, args)
		},
	}
	return cmd
}

func runParse(cmd *cobra.Command, opts *parseOptions, args []string) error {
	sess, err := opts.newSession()
	if err != nil {
		return err
	}
	defer sess.Close()
	m := sess.Machine()
	out := cmd.OutOrStdout()

	printProgram := func(name, src string) error {
		refs, err := m.ReadProgram(src)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		for _, ref := range refs {
			fmt.Fprintf(out, "%s.\n", m.WriteTerm(ref, fli.WriteOpts{Quoted: true}))
		}
		return nil
	}

	if len(args) == 0 {
		bs, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return err
		}
		return printProgram("stdin", string(bs))
	}
	for _, path := range args {
		bs, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := printProgram(path, string(bs)); err != nil {
			return err
		}
	}
	return nil
}
