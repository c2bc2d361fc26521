package main

import (
	"encoding/json"
	"errors"
	"testing"

	"stagehand/internal/testsupport"
)

func TestHistoryCommand(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithJournal(true))

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No passes recorded")

	if _, _, err := runCLI(t, []string{"run"}, env.configPath); err != nil {
		t.Fatalf("run: %v", err)
	}

	out, _, err = runCLI(t, []string{"history", "--output", "json"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var runs []struct {
		ID     string         `json:"id"`
		Status string         `json:"status"`
		Counts map[string]int `json:"counts"`
	}
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode runs: %v\n%s", err, out)
	}
	if len(runs) != 1 || runs[0].Status != "completed" || runs[0].Counts["moved"] != 1 {
		t.Fatalf("unexpected runs %+v", runs)
	}

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, runs[0].ID[:8])
	requireContains(t, out, "completed")

	out, _, err = runCLI(t, []string{"history", runs[0].ID[:8]}, env.configPath)
	if err != nil {
		t.Fatalf("history run: %v", err)
	}
	requireContains(t, out, runs[0].ID)
	requireContains(t, out, "Episode One.mp3")

	out, _, err = runCLI(t, []string{"history", "--kind", "deleted", runs[0].ID}, env.configPath)
	if err != nil {
		t.Fatalf("history run: %v", err)
	}
	requireContains(t, out, "No events")

	if _, _, err := runCLI(t, []string{"history", "ffffffff-none"}, env.configPath); err == nil {
		t.Fatal("expected unknown run error")
	}
	if _, _, err := runCLI(t, []string{"history", "--kind", "exploded"}, env.configPath); err == nil {
		t.Fatal("expected unknown kind error")
	}
}

func TestHistoryCommandJournalDisabled(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithJournal(false))

	_, _, err := runCLI(t, []string{"history"}, env.configPath)
	if !errors.Is(err, errJournalDisabled) {
		t.Fatalf("history error = %v, want errJournalDisabled", err)
	}
}
