package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fleetd-sh/fleetd/shared/types"
)

func newInstanceCmd(client func() *Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instance",
		Short: "Manage one-off instances",
	}

	cmd.AddCommand(newInstanceCreateCmd(client))
	cmd.AddCommand(newInstanceGetCmd(client))
	cmd.AddCommand(newInstanceListCmd(client))
	cmd.AddCommand(newInstanceStopCmd(client))
	cmd.AddCommand(newInstanceDestroyCmd(client))
	return cmd
}

type instanceCreateRequest struct {
	URI         string                `json:"uri"`
	Environment []string              `json:"environment,omitempty"`
	Resource    types.ResourceSummary `json:"resource"`
	Ports       []types.Port          `json:"ports,omitempty"`
}

func newInstanceCreateCmd(client func() *Client) *cobra.Command {
	var uri string
	var env []string
	var cpu, memory, disk uint64

	cmd := &cobra.Command{
		Use:   "create <namespace> <name>",
		Short: "Create a single instance directly",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := instanceCreateRequest{
				URI:         uri,
				Environment: env,
				Resource:    types.ResourceSummary{CPU: cpu, Memory: memory, Disk: disk},
			}
			var out map[string]any
			if err := client().put(resourcePath("instance", args[0], args[1]), req, &out); err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	cmd.Flags().StringVar(&uri, "uri", "", "Container image URI")
	cmd.Flags().StringSliceVar(&env, "env", nil, "Environment variables (KEY=VALUE, repeatable)")
	cmd.Flags().Uint64Var(&cpu, "cpu", 0, "CPU limit in millicores")
	cmd.Flags().Uint64Var(&memory, "memory", 0, "Memory limit in bytes")
	cmd.Flags().Uint64Var(&disk, "disk", 0, "Disk limit in bytes")
	cmd.MarkFlagRequired("uri")
	return cmd
}

func newInstanceGetCmd(client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "get <namespace> <name>",
		Short: "Fetch an instance's live status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out map[string]any
			if err := client().get(resourcePath("instance", args[0], args[1]), &out); err != nil {
				return err
			}
			return printJSON(out)
		},
	}
}

func newInstanceListCmd(client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all known instances",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out []map[string]any
			if err := client().get(resourcePath("instance"), &out); err != nil {
				return err
			}
			return printJSON(out)
		},
	}
}

func newInstanceStopCmd(client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "stop <namespace> <name>",
		Short: "Gracefully stop an instance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client().post(fmt.Sprintf("%s/stop", resourcePath("instance", args[0], args[1])), nil, nil)
		},
	}
}

func newInstanceDestroyCmd(client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "destroy <namespace> <name>",
		Short: "Forcibly destroy an instance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client().post(fmt.Sprintf("%s/destroy", resourcePath("instance", args[0], args[1])), nil, nil)
		},
	}
}
