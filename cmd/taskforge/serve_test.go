// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskForge Contributors

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestServeCmd_Properties(t *testing.T) {
	cmd := NewServeCmd()

	if cmd.Use != "serve" {
		t.Errorf("Use = %q, want %q", cmd.Use, "serve")
	}

	for _, flag := range []string{"server.listen", "observability.listen", "database.url", "environment", "log.format"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("serve command missing --%s flag", flag)
		}
	}
}

func TestServeCmd_MissingSecretFailsFast(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskforge.yaml")
	if err := os.WriteFile(path, []byte("environment: development\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"serve", "--config", path})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected startup failure without signing secret")
	}
	if !strings.Contains(err.Error(), "signing_secret") {
		t.Errorf("error should name the missing setting, got: %v", err)
	}
}

func TestServeCmd_BadEnvironmentFailsFast(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskforge.yaml")
	content := "environment: staging\nauth:\n  signing_secret: test-secret\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"serve", "--config", path})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected startup failure with unknown environment")
	}
	if !strings.Contains(err.Error(), "environment") {
		t.Errorf("error should name the bad setting, got: %v", err)
	}
}
