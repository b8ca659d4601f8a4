// Package main is the entry point for fleetctl, the operator CLI that talks
// only to the Controller's HTTP API (never the Scheduler or Node Agents
// directly).
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if reqErr, ok := err.(*RequestError); ok {
			fmt.Fprintln(os.Stderr, reqErr)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var addr string

	root := &cobra.Command{
		Use:   "fleetctl",
		Short: "fleetctl — command-line client for the fleetd Controller",
		Long: `fleetctl talks exclusively to the Controller's HTTP API to declare
workloads, create one-off instances, inspect nodes, and watch live status.`,
	}

	root.PersistentFlags().StringVar(&addr, "addr", envOrDefault("FLEETCTL_ADDR", "http://127.0.0.1:8080"), "Controller HTTP API address")

	client := func() *Client { return NewClient(addr) }

	root.AddCommand(newWorkloadCmd(client))
	root.AddCommand(newInstanceCmd(client))
	root.AddCommand(newNodeCmd(client))
	root.AddCommand(newWatchCmd(func() string { return addr }))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("fleetctl %s (commit: %s, built: %s)\n", version, commit, date)
		},
	})

	return root
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
