// SPDX-License-Identifier: MPL-2.0

package svcconfig

import (
	"fmt"
	"net/netip"
	"runtime"
)

const (
	// DefaultGitHubURL is the API endpoint used when the configuration
	// does not override it.
	DefaultGitHubURL = "https://api.github.com"

	// DefaultHeartbeatPort is the port peers use for liveness traffic.
	DefaultHeartbeatPort uint16 = 5563
)

// NetCfg is the cluster/network configuration surface decoded from a service
// configuration document. It is consumed by dispatch and routing subsystems;
// the hook engine never reads it.
type NetCfg struct {
	// WorkerCount sizes the dispatcher worker pool. Defaults to the
	// number of CPUs.
	WorkerCount int

	// GitHubURL, GitHubClientID, and GitHubClientSecret configure the
	// OAuth application used for authentication.
	GitHubURL          string
	GitHubClientID     string
	GitHubClientSecret string

	// RouteAddrs lists the router addresses this node connects to.
	RouteAddrs []netip.AddrPort

	// HeartbeatPort is the port peers use for liveness traffic.
	HeartbeatPort uint16

	// Shards lists the shard IDs this node is responsible for.
	Shards []uint32
}

// DefaultNetCfg returns a NetCfg populated with defaults only.
func DefaultNetCfg() NetCfg {
	return NetCfg{
		WorkerCount:   runtime.NumCPU(),
		GitHubURL:     DefaultGitHubURL,
		HeartbeatPort: DefaultHeartbeatPort,
	}
}

// DecodeNetCfg decodes the cluster/network surface from a snapshot. Every
// field is optional and falls back to its default; present fields of the
// wrong shape surface the decoder's typed errors.
func DecodeNetCfg(s *Snapshot) (NetCfg, error) {
	cfg := DefaultNetCfg()

	var err error
	if cfg.WorkerCount, err = FieldOr(s, "worker_count", cfg.WorkerCount); err != nil {
		return cfg, err
	}
	if cfg.GitHubURL, err = FieldOr(s, "github.url", cfg.GitHubURL); err != nil {
		return cfg, err
	}
	if cfg.GitHubClientID, err = FieldOr(s, "github.client_id", cfg.GitHubClientID); err != nil {
		return cfg, err
	}
	if cfg.GitHubClientSecret, err = FieldOr(s, "github.client_secret", cfg.GitHubClientSecret); err != nil {
		return cfg, err
	}
	if cfg.HeartbeatPort, err = FieldOr(s, "heartbeat_port", cfg.HeartbeatPort); err != nil {
		return cfg, err
	}

	if addrs, ok, addrErr := FieldParseSlice(s, "routers", netip.ParseAddrPort); addrErr != nil {
		return cfg, addrErr
	} else if ok {
		cfg.RouteAddrs = addrs
	}

	if shards, ok, shardErr := FieldSlice[uint32](s, "shards"); shardErr != nil {
		return cfg, shardErr
	} else if ok {
		cfg.Shards = shards
	}

	return cfg, nil
}

// AddrString formats a router address the way peers expect to dial it.
func AddrString(addr netip.AddrPort) string {
	return fmt.Sprintf("tcp://%s:%d", addr.Addr(), addr.Port())
}
