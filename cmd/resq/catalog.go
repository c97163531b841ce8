package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/resq-ai/resq-core/hostfuncs"
)

func catalogCmd(opts *rootOptions) *cobra.Command {
	var schemas bool

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List registered capabilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			resp, err := s.Handle(cmd.Context(), hostfuncs.HandlerCatalog, nil)
			if err != nil {
				return err
			}
			if schemas {
				return opts.print(cmd.OutOrStdout(), resp)
			}

			var catalog hostfuncs.CatalogResponse
			if err := json.Unmarshal(resp, &catalog); err != nil {
				return fmt.Errorf("failed to decode catalog: %w", err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tKIND\tDESCRIPTION")
			for _, c := range catalog.Capabilities {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Name, c.Kind, c.Description)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&schemas, "schemas", false, "Print the full catalog with JSON Schemas")
	return cmd
}

func handlersCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "handlers",
		Short: "List the session handlers accepted by replay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			for _, name := range s.HandlerNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
