// Package network implements the Node Agent's networking helper (C17): a
// Linux bridge plus NAT for each node's instance subnet, and a veth pair
// plus per-port DNAT rules for each instance. It is invoked only by the
// runtime driver around container create/destroy, never by the Scheduler
// or Controller.
//
// Grounded on the iptables-via-os/exec pattern used elsewhere in the
// examined pack for host-mode port publishing: every mutation shells out to
// ip(8)/iptables(8) rather than a netlink library. CleanNode removes the
// node's MASQUERADE rule; CleanInstance removes only the instance's veth and
// leaves its DNAT rules in place.
package network

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	agentpb "github.com/fleetd-sh/fleetd/shared/proto/agent"
)

func bridgeName(nodeID string) string {
	short := nodeID
	if len(short) > 8 {
		short = short[:8]
	}
	return "fleetd-br-" + short
}

// Helper manages the Linux bridge and per-instance DNAT rules for one node.
// Every operation is best-effort: failures are logged by the caller and
// never block container lifecycle, since this is auxiliary to the core's
// error taxonomy.
type Helper struct {
	nodeID string
	cidr   string
	bridge string
	logger *zap.Logger
}

// New creates a Helper for the given node id and instance subnet (e.g.
// "10.0.0.0/24", as handed out by the Scheduler at registration).
func New(nodeID, cidr string, logger *zap.Logger) *Helper {
	return &Helper{nodeID: nodeID, cidr: cidr, bridge: bridgeName(nodeID), logger: logger.Named("network")}
}

// SetupNode ensures the node's bridge exists, is up, holds the first address
// of its subnet, and has a MASQUERADE rule for outbound instance traffic.
func (h *Helper) SetupNode(ctx context.Context) error {
	if err := run(ctx, "ip", "link", "add", h.bridge, "type", "bridge"); err != nil && !alreadyExists(err) {
		return fmt.Errorf("network: failed to create bridge %s: %w", h.bridge, err)
	}
	if err := run(ctx, "ip", "link", "set", h.bridge, "up"); err != nil {
		return fmt.Errorf("network: failed to bring up bridge %s: %w", h.bridge, err)
	}

	gateway, err := firstAddress(h.cidr)
	if err != nil {
		return fmt.Errorf("network: invalid cidr %s: %w", h.cidr, err)
	}
	if err := run(ctx, "ip", "addr", "add", gateway, "dev", h.bridge); err != nil && !alreadyExists(err) {
		return fmt.Errorf("network: failed to assign %s to bridge %s: %w", gateway, h.bridge, err)
	}

	if err := run(ctx, "iptables", "-t", "nat", "-A", "POSTROUTING", "-s", h.cidr, "!", "-o", h.bridge, "-j", "MASQUERADE"); err != nil {
		return fmt.Errorf("network: failed to add masquerade rule for %s: %w", h.cidr, err)
	}
	return nil
}

// CleanNode removes the MASQUERADE rule and deletes the node's bridge.
func (h *Helper) CleanNode(ctx context.Context) error {
	_ = run(ctx, "iptables", "-t", "nat", "-D", "POSTROUTING", "-s", h.cidr, "!", "-o", h.bridge, "-j", "MASQUERADE")
	if err := run(ctx, "ip", "link", "del", h.bridge); err != nil && !notFound(err) {
		return fmt.Errorf("network: failed to delete bridge %s: %w", h.bridge, err)
	}
	return nil
}

// SetupInstance wires containerID's network namespace into the node bridge
// via a veth pair and adds a DNAT rule for every declared port. Satisfies
// runtime.Networker.
func (h *Helper) SetupInstance(ctx context.Context, containerID string, ports []*agentpb.Port) error {
	vethHost, vethPeer := vethNames(containerID)

	if err := run(ctx, "ip", "link", "add", vethHost, "type", "veth", "peer", "name", vethPeer); err != nil && !alreadyExists(err) {
		return fmt.Errorf("network: failed to create veth pair for %s: %w", containerID, err)
	}
	if err := run(ctx, "ip", "link", "set", vethHost, "master", h.bridge); err != nil {
		return fmt.Errorf("network: failed to attach %s to bridge %s: %w", vethHost, h.bridge, err)
	}
	if err := run(ctx, "ip", "link", "set", vethHost, "up"); err != nil {
		return fmt.Errorf("network: failed to bring up %s: %w", vethHost, err)
	}

	var errs []string
	for _, p := range ports {
		if err := h.addPortDNAT(ctx, containerID, p); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("network: dnat setup errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// CleanInstance deletes the instance's veth pair. The DNAT rules added by
// SetupInstance are not removed.
func (h *Helper) CleanInstance(ctx context.Context, containerID string) error {
	vethHost, _ := vethNames(containerID)
	if err := run(ctx, "ip", "link", "del", vethHost); err != nil && !notFound(err) {
		return fmt.Errorf("network: failed to delete veth %s: %w", vethHost, err)
	}
	return nil
}

func (h *Helper) addPortDNAT(ctx context.Context, containerID string, port *agentpb.Port) error {
	dest := fmt.Sprintf("%s:%d", containerID, port.Destination)
	rule := []string{
		"-t", "nat", "-A", "PREROUTING",
		"-p", "tcp", "--dport", fmt.Sprintf("%d", port.Source),
		"-j", "DNAT", "--to-destination", dest,
	}
	if err := run(ctx, "iptables", rule...); err != nil {
		return fmt.Errorf("dnat %d->%s: %w", port.Source, dest, err)
	}
	return nil
}

func vethNames(containerID string) (host, peer string) {
	short := containerID
	if len(short) > 11 {
		short = short[:11]
	}
	return "veth" + short + "h", "veth" + short + "p"
}

func firstAddress(cidr string) (string, error) {
	parts := strings.SplitN(cidr, "/", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("malformed cidr %q", cidr)
	}
	octets := strings.Split(parts[0], ".")
	if len(octets) != 4 {
		return "", fmt.Errorf("malformed ipv4 %q", parts[0])
	}
	octets[3] = "1"
	return fmt.Sprintf("%s/%s", strings.Join(octets, "."), parts[1]), nil
}

func run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s: %w (output: %s)", name, strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}
	return nil
}

func alreadyExists(err error) bool {
	return strings.Contains(err.Error(), "File exists")
}

func notFound(err error) bool {
	return strings.Contains(err.Error(), "Cannot find device") || strings.Contains(err.Error(), "No such")
}
