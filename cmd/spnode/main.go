// Command spnode runs a single social-production network node: the gossip
// and sync engine from internal/node, bridged to a REST/WebSocket host API
// from internal/hostapi.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/social-production/network/internal/hostapi"
	"github.com/social-production/network/internal/node"
	"github.com/social-production/network/internal/syncpolicy"
	"github.com/social-production/network/internal/ui"
)

const banner = `
   _____ _____        _   _           _
  / ____|  __ \      | \ | |         | |
 | (___ | |__) |_ __ |  \| | ___   __| | ___
  \___ \|  ___/| '_ \| . ` + "`" + ` |/ _ \ / _` + "`" + ` |/ _ \
  ____) | |    | | | | |\  | (_) | (_| |  __/
 |_____/|_|    |_| |_|_| \_|\___/ \__,_|\___|
`

var (
	portFlag              int
	discoveryModeFlag     string
	modeFlag              string
	syncStrategyFlag      string
	syncFromFlag          int64
	syncToFlag            int64
	syncMaxBytesFlag      uint64
	discoveryIntervalFlag time.Duration
	portRangeFlag         string
	apiAddrFlag           string
	quietFlag             bool
)

func main() {
	root := &cobra.Command{
		Use:   "spnode",
		Short: "social-production network node",
		Run:   runNode,
	}

	root.Flags().IntVar(&portFlag, "port", 0, "P2P listen port (0 = OS-assigned)")
	root.Flags().StringVar(&discoveryModeFlag, "discovery", "both", "discovery mode: dht | local | both")
	root.Flags().StringVar(&modeFlag, "mode", "full", "participation mode: full | gossip")
	root.Flags().StringVar(&syncStrategyFlag, "sync-strategy", "ondemand", "sync policy: ondemand | timerange | sizelimit")
	root.Flags().Int64Var(&syncFromFlag, "sync-from", 0, "timerange strategy: from (unix seconds)")
	root.Flags().Int64Var(&syncToFlag, "sync-to", 0, "timerange strategy: to (unix seconds)")
	root.Flags().Uint64Var(&syncMaxBytesFlag, "sync-max-bytes", 0, "sizelimit strategy: max bytes")
	root.Flags().DurationVar(&discoveryIntervalFlag, "discovery-interval", node.DefaultDiscoveryInterval, "discovery ticker interval")
	root.Flags().StringVar(&portRangeFlag, "discovery-port-range", "", "restrict discovered peers to PORT-PORT")
	root.Flags().StringVar(&apiAddrFlag, "api-addr", "0.0.0.0:8080", "host API listen address")
	root.Flags().BoolVar(&quietFlag, "quiet", false, "suppress informational console output")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runNode(cmd *cobra.Command, args []string) {
	printer := ui.Printer{Quiet: quietFlag}

	if !quietFlag {
		fmt.Println(banner)
	}

	cfg := node.DefaultConfig()
	cfg.Port = portFlag
	cfg.Quiet = quietFlag
	cfg.DiscoveryInterval = discoveryIntervalFlag

	var err error
	cfg.DiscoveryMode, err = parseDiscoveryMode(discoveryModeFlag)
	if err != nil {
		printer.Error("%s", err)
		os.Exit(1)
	}

	cfg.Mode, err = parseMode(modeFlag)
	if err != nil {
		printer.Error("%s", err)
		os.Exit(1)
	}

	cfg.SyncStrategy, err = parseSyncStrategy()
	if err != nil {
		printer.Error("%s", err)
		os.Exit(1)
	}

	if portRangeFlag != "" {
		pr, err := parsePortRange(portRangeFlag)
		if err != nil {
			printer.Error("%s", err)
			os.Exit(1)
		}
		cfg.PortFilter = pr
	}

	n, err := node.New(cfg)
	if err != nil {
		printer.Error("failed to construct node: %s", err)
		os.Exit(1)
	}

	printer.Info("peer id: %s", n.Host().ID().String())

	bridge := hostapi.New(n)
	go func() {
		printer.Network("host api listening on %s", apiAddrFlag)
		if err := bridge.ListenAndServe(apiAddrFlag); err != nil {
			printer.Warning("host api stopped: %s", err)
		}
	}()
	go bridge.Watch(n.Events())
	go watchEvents(printer, n)

	ctx, cancel := context.WithCancel(context.Background())
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		printer.Warning("stop signal received, shutting down")
		cancel()
	}()

	if err := n.Run(ctx); err != nil {
		printer.Error("node exited: %s", err)
		os.Exit(1)
	}

	printer.Success("node shut down")
}

func watchEvents(printer ui.Printer, n *node.Node) {
	for ev := range n.Events() {
		switch ev.Kind {
		case node.EventListening:
			printer.Network("listening on %s", strings.Join(ev.Addresses, ", "))
		case node.EventPeerConnected:
			printer.Network("peer connected: %s", ev.PeerID)
		case node.EventPeerDisconnected:
			printer.Warning("peer disconnected: %s", ev.PeerID)
		case node.EventBlockFinalised:
			printer.Block("block %d finalised", ev.BlockHeight)
		case node.EventChainSynced:
			printer.Success("chain synced to length %d", ev.ChainLength)
		}
	}
}

func parseDiscoveryMode(s string) (node.DiscoveryMode, error) {
	switch strings.ToLower(s) {
	case "dht":
		return node.DiscoveryDHTOnly, nil
	case "local":
		return node.DiscoveryLocalOnly, nil
	case "both", "":
		return node.DiscoveryBoth, nil
	default:
		return 0, fmt.Errorf("unknown discovery mode %q", s)
	}
}

func parseMode(s string) (node.Mode, error) {
	switch strings.ToLower(s) {
	case "full", "":
		return node.ModeFull, nil
	case "gossip":
		return node.ModeGossip, nil
	default:
		return 0, fmt.Errorf("unknown mode %q", s)
	}
}

func parseSyncStrategy() (syncpolicy.Strategy, error) {
	switch strings.ToLower(syncStrategyFlag) {
	case "ondemand", "":
		return syncpolicy.NewOnDemand(), nil
	case "timerange":
		return syncpolicy.NewTimeRange(syncFromFlag, syncToFlag), nil
	case "sizelimit":
		return syncpolicy.NewSizeLimit(syncMaxBytesFlag), nil
	default:
		return syncpolicy.Strategy{}, fmt.Errorf("unknown sync strategy %q", syncStrategyFlag)
	}
}

func parsePortRange(s string) (node.PortRange, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return node.PortRange{}, fmt.Errorf("invalid port range %q, expected FROM-TO", s)
	}
	var from, to uint16
	if _, err := fmt.Sscanf(parts[0], "%d", &from); err != nil {
		return node.PortRange{}, fmt.Errorf("invalid port range %q: %w", s, err)
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &to); err != nil {
		return node.PortRange{}, fmt.Errorf("invalid port range %q: %w", s, err)
	}
	return node.PortRange{From: from, To: to}, nil
}
