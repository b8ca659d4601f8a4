package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fleetd-sh/fleetd/shared/types"
)

func newWorkloadCmd(client func() *Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workload",
		Short: "Manage declared workloads",
	}

	cmd.AddCommand(newWorkloadApplyCmd(client))
	cmd.AddCommand(newWorkloadGetCmd(client))
	cmd.AddCommand(newWorkloadListCmd(client))
	cmd.AddCommand(newWorkloadDeleteCmd(client))
	return cmd
}

func newWorkloadApplyCmd(client func() *Client) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Create or update a workload from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}
			var wl types.Workload
			if err := json.Unmarshal(data, &wl); err != nil {
				return fmt.Errorf("failed to parse %s: %w", file, err)
			}
			if wl.Namespace == "" || wl.Name == "" {
				return fmt.Errorf("workload namespace and name are required")
			}

			var out types.Workload
			if err := client().put(resourcePath("workload", wl.Namespace, wl.Name), wl, &out); err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to a workload JSON file")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newWorkloadGetCmd(client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "get <namespace> <name>",
		Short: "Fetch a workload",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out types.Workload
			if err := client().get(resourcePath("workload", args[0], args[1]), &out); err != nil {
				return err
			}
			return printJSON(out)
		},
	}
}

func newWorkloadListCmd(client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all workloads",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out []types.Workload
			if err := client().get(resourcePath("workload"), &out); err != nil {
				return err
			}
			return printJSON(out)
		},
	}
}

func newWorkloadDeleteCmd(client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <namespace> <name>",
		Short: "Delete a workload",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client().delete(resourcePath("workload", args[0], args[1]))
		},
	}
}
