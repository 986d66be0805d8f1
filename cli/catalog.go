package cli

import (
	"fmt"

	"github.com/GbredngleK/NG-Insider-Bot/catalog"
	"github.com/GbredngleK/NG-Insider-Bot/config"
	"github.com/spf13/cobra"
)

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Validate and print the stream / year / subject catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := file
			if path == "" {
				cfg, err := config.Load(rootOpts.ConfigPath)
				if err != nil {
					return err
				}
				path = cfg.Catalog.Path
			}

			cat, err := catalog.Load(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, s := range cat.Streams {
				fmt.Fprintf(out, "%s\n", s.Name)
				for _, p := range s.Periods {
					fmt.Fprintf(out, "  %s (%d subjects)\n", p.Name, len(p.Subjects))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog file to check instead of catalog.path")
	return cmd
}
