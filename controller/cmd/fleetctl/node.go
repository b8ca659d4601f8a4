package main

import "github.com/spf13/cobra"

func newNodeCmd(client func() *Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Inspect registered nodes",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all registered nodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out []map[string]any
			if err := client().get(resourcePath("node"), &out); err != nil {
				return err
			}
			return printJSON(out)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Fetch a node's live status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out map[string]any
			if err := client().get(resourcePath("node", args[0]), &out); err != nil {
				return err
			}
			return printJSON(out)
		},
	})

	return cmd
}
