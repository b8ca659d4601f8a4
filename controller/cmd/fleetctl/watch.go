package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newWatchCmd(addrFlag func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream live node and instance status over the Controller's WebSocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			wsURL := "ws" + strings.TrimPrefix(strings.TrimRight(addrFlag(), "/"), "http") + "/watch"

			conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
			if err != nil {
				return fmt.Errorf("fleetctl: failed to connect to %s: %w", wsURL, err)
			}
			defer conn.Close()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			done := make(chan struct{})

			go func() {
				defer close(done)
				for {
					_, message, err := conn.ReadMessage()
					if err != nil {
						return
					}
					fmt.Println(string(message))
				}
			}()

			select {
			case <-done:
			case <-sigCh:
			}
			return nil
		},
	}
}
