// SPDX-License-Identifier: MPL-2.0

package svcconfig

import (
	"errors"
	"runtime"
	"testing"
)

func TestDecodeNetCfgDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := DecodeNetCfg(parseSnapshot(t, ``))
	if err != nil {
		t.Fatalf("DecodeNetCfg() error: %v", err)
	}

	if cfg.WorkerCount != runtime.NumCPU() {
		t.Errorf("WorkerCount = %d, want NumCPU (%d)", cfg.WorkerCount, runtime.NumCPU())
	}
	if cfg.GitHubURL != DefaultGitHubURL {
		t.Errorf("GitHubURL = %q, want %q", cfg.GitHubURL, DefaultGitHubURL)
	}
	if cfg.HeartbeatPort != DefaultHeartbeatPort {
		t.Errorf("HeartbeatPort = %d, want %d", cfg.HeartbeatPort, DefaultHeartbeatPort)
	}
	if len(cfg.RouteAddrs) != 0 || len(cfg.Shards) != 0 {
		t.Errorf("RouteAddrs/Shards = %v/%v, want empty", cfg.RouteAddrs, cfg.Shards)
	}
}

func TestDecodeNetCfgFull(t *testing.T) {
	t.Parallel()

	cfg, err := DecodeNetCfg(parseSnapshot(t, `
worker_count = 12
heartbeat_port = 6000
routers = ["10.0.0.1:5562", "10.0.0.2:5562"]
shards = [0, 64, 127]

[github]
url = "https://github.example.com/api"
client_id = "abc"
client_secret = "shh"
`))
	if err != nil {
		t.Fatalf("DecodeNetCfg() error: %v", err)
	}

	if cfg.WorkerCount != 12 {
		t.Errorf("WorkerCount = %d, want 12", cfg.WorkerCount)
	}
	if cfg.HeartbeatPort != 6000 {
		t.Errorf("HeartbeatPort = %d, want 6000", cfg.HeartbeatPort)
	}
	if len(cfg.RouteAddrs) != 2 {
		t.Fatalf("RouteAddrs = %v, want 2 entries", cfg.RouteAddrs)
	}
	if got, want := AddrString(cfg.RouteAddrs[0]), "tcp://10.0.0.1:5562"; got != want {
		t.Errorf("AddrString = %q, want %q", got, want)
	}
	if len(cfg.Shards) != 3 || cfg.Shards[2] != 127 {
		t.Errorf("Shards = %v, want [0 64 127]", cfg.Shards)
	}
	if cfg.GitHubClientID != "abc" || cfg.GitHubClientSecret != "shh" {
		t.Errorf("GitHub credentials = (%q, %q), want (abc, shh)", cfg.GitHubClientID, cfg.GitHubClientSecret)
	}
	if cfg.GitHubURL != "https://github.example.com/api" {
		t.Errorf("GitHubURL = %q, want override", cfg.GitHubURL)
	}
}

func TestDecodeNetCfgBadRouter(t *testing.T) {
	t.Parallel()

	_, err := DecodeNetCfg(parseSnapshot(t, `routers = ["nope"]`))
	if !errors.Is(err, ErrInvalidArray) {
		t.Fatalf("DecodeNetCfg() error = %v, want ErrInvalidArray", err)
	}
}

func TestDecodeNetCfgBadWorkerCount(t *testing.T) {
	t.Parallel()

	_, err := DecodeNetCfg(parseSnapshot(t, `worker_count = "many"`))
	if !errors.Is(err, ErrInvalidField) {
		t.Fatalf("DecodeNetCfg() error = %v, want ErrInvalidField", err)
	}
}
