package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"pricedesk/internal/domain"
	"pricedesk/internal/service"
)

func TestPrintResolved(t *testing.T) {
	resolver := service.NewItemResolver([]domain.SchemaItem{
		{Defindex: 18, Name: "Rocket Launcher", ProperName: true},
		{Defindex: 5021, Name: "Mann Co. Supply Crate Key"},
	})

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	err := printResolved(cmd, resolver, []string{"Mann Co. Supply Crate Key", "Flamethrower"})
	if err == nil || !strings.Contains(err.Error(), "1 of 2") {
		t.Errorf("expected one failure, got %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), out.String())
	}
	if lines[0] != "Mann Co. Supply Crate Key\t5021\tMann Co. Supply Crate Key" {
		t.Errorf("line 0: %q", lines[0])
	}
	if lines[1] != "Flamethrower\tcould not find an item with that name" {
		t.Errorf("line 1: %q", lines[1])
	}
}

func TestVersionSkipsConfig(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out.String(), "pricedesk dev") {
		t.Errorf("got %q", out.String())
	}
}
