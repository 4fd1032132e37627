// Package cli implements the docwiki command line.
package cli

import (
	"github.com/dgallion1/docwiki/internal/wikitext"
	"github.com/spf13/cobra"
)

// Execute builds the root command and runs it.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command and its subcommands.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "docwiki",
		Short:         "Convert rich-text documents to wiki markup",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newRenderCmd())
	cmd.AddCommand(newDialectsCmd())

	cmd.Run = func(cmd *cobra.Command, args []string) { _ = cmd.Help() }
	return cmd
}

// loadRegistry returns the built-in dialects plus the one in dialectFile,
// if given. The file's dialect becomes the default.
func loadRegistry(dialectFile string) (*wikitext.Registry, error) {
	if dialectFile == "" {
		return wikitext.NewRegistry("standard")
	}
	custom, err := wikitext.LoadDialectFile(dialectFile)
	if err != nil {
		return nil, err
	}
	return wikitext.NewRegistry(custom.Name, custom)
}
