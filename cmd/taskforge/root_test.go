// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskForge Contributors

package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCmd_Properties(t *testing.T) {
	cmd := NewRootCmd()

	if cmd.Use != "taskforge" {
		t.Errorf("Use = %q, want %q", cmd.Use, "taskforge")
	}

	if cmd.PersistentFlags().Lookup("config") == nil {
		t.Error("root command missing --config flag")
	}

	want := map[string]bool{"serve": false, "migrate": false, "status": false}
	for _, sub := range cmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRootCmd_Help(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetArgs([]string{"--help"})

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	output := buf.String()
	for _, phrase := range []string{"serve", "migrate", "status"} {
		if !strings.Contains(output, phrase) {
			t.Errorf("Help missing phrase %q", phrase)
		}
	}
}
