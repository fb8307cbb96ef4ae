package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestCLI_Portfolio(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	yaml := "storage:\n  kv:\n    driver: file\n    path: " + filepath.Join(dir, "data") + "\n  history:\n    driver: none\nlog:\n  level: error\n"
	if err := os.WriteFile(cfgPath, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "--config", cfgPath, "portfolio", "add", "600519", "贵州茅台", "--cost", "1500", "--shares", "100")
	if err != nil {
		t.Fatalf("portfolio add error = %v", err)
	}
	if !strings.Contains(out, "已添加 600519") {
		t.Errorf("portfolio add output = %q", out)
	}

	out, err = runCLI(t, "--config", cfgPath, "portfolio", "list")
	if err != nil {
		t.Fatalf("portfolio list error = %v", err)
	}
	if !strings.Contains(out, "贵州茅台") || !strings.Contains(out, "150,000") {
		t.Errorf("portfolio list output = %q", out)
	}

	if _, err := runCLI(t, "--config", cfgPath, "portfolio", "add", "", "空代码"); err == nil {
		t.Error("portfolio add with empty symbol should fail")
	}

	if _, err := runCLI(t, "--config", cfgPath, "portfolio", "rm", "no-such-id"); err == nil {
		t.Error("portfolio rm unknown id should fail")
	}

	if _, err := os.Stat(filepath.Join(dir, "data", "userPortfolio.json")); err != nil {
		t.Errorf("portfolio file not written: %v", err)
	}
}

func TestCLI_Version(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(out, "alpha_insight dev") {
		t.Errorf("version output = %q", out)
	}
}
