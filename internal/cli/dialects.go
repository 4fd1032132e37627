package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDialectsCmd() *cobra.Command {
	var dialectFile string

	cmd := &cobra.Command{
		Use:   "dialects",
		Short: "List available dialects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry(dialectFile)
			if err != nil {
				return err
			}
			for _, name := range reg.Names() {
				d, _ := reg.Get(name)
				marker := " "
				if name == reg.Default() {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-10s nodes=%d marks=%d lists=%s\n",
					marker, name, len(d.Nodes), len(d.Marks), d.ListPrefix)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dialectFile, "dialect-file", "", "YAML dialect override file")
	return cmd
}
