package main

import (
	"testing"

	"github.com/social-production/network/internal/node"
	"github.com/social-production/network/internal/syncpolicy"
)

func TestParseDiscoveryMode(t *testing.T) {
	cases := map[string]node.DiscoveryMode{
		"dht":   node.DiscoveryDHTOnly,
		"local": node.DiscoveryLocalOnly,
		"both":  node.DiscoveryBoth,
		"":      node.DiscoveryBoth,
		"DHT":   node.DiscoveryDHTOnly,
	}
	for in, want := range cases {
		got, err := parseDiscoveryMode(in)
		if err != nil {
			t.Fatalf("parseDiscoveryMode(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("parseDiscoveryMode(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := parseDiscoveryMode("bogus"); err == nil {
		t.Fatal("expected an error for an unknown discovery mode")
	}
}

func TestParseMode(t *testing.T) {
	if got, err := parseMode("gossip"); err != nil || got != node.ModeGossip {
		t.Fatalf("parseMode(gossip) = %v, %v", got, err)
	}
	if got, err := parseMode(""); err != nil || got != node.ModeFull {
		t.Fatalf("parseMode(\"\") = %v, %v, want ModeFull default", got, err)
	}
	if _, err := parseMode("bogus"); err == nil {
		t.Fatal("expected an error for an unknown mode")
	}
}

func TestParseSyncStrategy(t *testing.T) {
	syncStrategyFlag = "timerange"
	syncFromFlag = 10
	syncToFlag = 20
	strat, err := parseSyncStrategy()
	if err != nil {
		t.Fatalf("parseSyncStrategy: %v", err)
	}
	if strat.Kind != syncpolicy.TimeRange || strat.From != 10 || strat.To != 20 {
		t.Fatalf("strat = %+v, want TimeRange(10, 20)", strat)
	}

	syncStrategyFlag = "bogus"
	if _, err := parseSyncStrategy(); err == nil {
		t.Fatal("expected an error for an unknown sync strategy")
	}
}

func TestParsePortRange(t *testing.T) {
	pr, err := parsePortRange("4000-4010")
	if err != nil {
		t.Fatalf("parsePortRange: %v", err)
	}
	if pr.From != 4000 || pr.To != 4010 {
		t.Fatalf("pr = %+v, want {4000 4010}", pr)
	}

	if _, err := parsePortRange("not-a-range"); err == nil {
		t.Fatal("expected an error for a malformed port range")
	}
}
