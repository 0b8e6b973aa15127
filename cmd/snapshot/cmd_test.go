package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/GregMSThompson/stocks-snapshot/internal/config"
)

func TestPageCmd_PrintsPage(t *testing.T) {
	cfg := &config.Config{FontURL: "https://fonts.example/inter.css"}
	cmd := newPageCmd(cfg)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"AAPL", "--api-key", "demo"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	page := out.String()
	for _, want := range []string{`data-symbol="AAPL"`, `"apiKey":"demo"`, `"symbol":"AAPL"`, `href="https://fonts.example/inter.css"`} {
		if !strings.Contains(page, want) {
			t.Fatalf("expected %q in page\n%s", want, page)
		}
	}
}

func TestWatchCmd_RequiresSymbol(t *testing.T) {
	cmd := newWatchCmd(&config.Config{})
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error without a symbol")
	}
}
