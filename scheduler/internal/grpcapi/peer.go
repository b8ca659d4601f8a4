package grpcapi

import (
	"context"

	"google.golang.org/grpc/peer"
)

// peerAddr extracts the dialing peer's host from ctx, used as the node's
// RemoteIP; the Scheduler dials the agent at that host on the fixed agent port.
func peerAddr(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	addr := p.Addr.String()
	// Strip the ephemeral client port; the agent always listens on the fixed
	// agent port, not whatever port it dialed from.
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[:i]
		}
	}
	return addr
}
