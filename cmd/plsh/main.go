// plsh is a shell over the embedded Prolog engine: an interactive REPL,
// a one-shot query runner and a clause pretty-printer.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/brunokim/logic-embed/fli"
	"github.com/brunokim/logic-embed/prolog"
)

type rootOptions struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "plsh",
		Short:         "Shell for the embedded Prolog engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "engine configuration file (YAML)")
	cmd.AddCommand(newReplCommand(opts))
	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newParseCommand(opts))
	return cmd
}

// newSession builds a session from the --config file, or a default one.
func (opts *rootOptions) newSession() (*prolog.Session, error) {
	if opts.configPath == "" {
		return prolog.NewSession(), nil
	}
	bs, err := os.ReadFile(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	var config fli.Config
	if err := yaml.Unmarshal(bs, &config); err != nil {
		return nil, fmt.Errorf("config %s: %w", opts.configPath, err)
	}
	return prolog.NewSessionConfig(config)
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "plsh:", err)
		os.Exit(1)
	}
}
