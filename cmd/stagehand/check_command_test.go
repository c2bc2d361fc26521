package main

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestCheckCommandDecisions(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"check", "--output", "json", "Episode One", "Brand New Talk", "Live Q&A"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	var decisions []struct {
		Title   string `json:"title"`
		Allowed bool   `json:"allowed"`
		Reason  string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(out), &decisions); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(decisions) != 3 {
		t.Fatalf("got %d decisions, want 3", len(decisions))
	}
	want := []struct {
		allowed bool
		reason  string
	}{
		{false, "already_processed"},
		{true, "not_processed"},
		{false, "denylisted"},
	}
	for i, w := range want {
		if decisions[i].Allowed != w.allowed || decisions[i].Reason != w.reason {
			t.Fatalf("decision %d = %+v, want allowed=%v reason=%s", i, decisions[i], w.allowed, w.reason)
		}
	}
}

func TestCheckCommandTableAndFailRefused(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"check", "Brand New Talk"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	requireContains(t, out, "not_processed")
	requireContains(t, out, "1 title allowed, 0 refused")

	_, _, err = runCLI(t, []string{"check", "--fail-refused", "Episode One"}, env.configPath)
	if !errors.Is(err, errRefused) {
		t.Fatalf("check error = %v, want errRefused", err)
	}
}

func TestCheckCommandPreflight(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	requireContains(t, out, "Artifact root")
	requireContains(t, out, "Catalog")
	requireContains(t, out, "State directory")
}
