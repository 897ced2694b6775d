// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"context"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/leapstack-labs/queryforge/internal/audit"
	"github.com/leapstack-labs/queryforge/internal/cli/config"
	"github.com/leapstack-labs/queryforge/internal/cli/output"
	intconfig "github.com/leapstack-labs/queryforge/internal/config"
	"github.com/leapstack-labs/queryforge/pkg/core"
)

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// Project is a temporary configuration with its own audit store.
type Project struct {
	Config    *intconfig.Loaded
	AuditPath string
}

// SetupTestProject creates a configuration whose audit store lives in a temp dir.
func SetupTestProject(t *testing.T) *Project {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.db")
	cfg := &intconfig.Config{
		Env:       "test",
		LogLevel:  "info",
		LogFormat: "text",
		Server:    intconfig.ServerConfig{Port: intconfig.DefaultPort},
		Warehouse: intconfig.WarehouseConfig{MaxRows: intconfig.DefaultMaxRows, ReadOnly: true},
		Audit:     intconfig.AuditConfig{Path: path},
	}
	return &Project{Config: &intconfig.Loaded{Config: cfg}, AuditPath: path}
}

// Context returns a command context carrying the project's configuration.
func (p *Project) Context() context.Context {
	return config.WithConfig(context.Background(), p.Config)
}

// Seed records events in the project's audit store.
func (p *Project) Seed(t *testing.T, events ...core.AuditEvent) {
	t.Helper()
	store, err := audit.OpenAndMigrate(p.AuditPath)
	if err != nil {
		t.Fatalf("failed to open audit store: %v", err)
	}
	defer func() { _ = store.Close() }()

	for i := range events {
		if err := store.Record(context.Background(), &events[i]); err != nil {
			t.Fatalf("failed to seed event: %v", err)
		}
	}
}
