//go:build mage

// Package main contains Mage build targets for citation-graph developer tooling.
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "citation-graph"
	cmdPkg  = "./cmd/citation-graph"

	demoID = "1706.03762"
)

// projectDirs lists the working directories the CLI expects.
var projectDirs = []string{
	".secrets",
	"output",
}

// Init creates the working directories and an empty .env template.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		env := "OPENAI_API_KEY=\nOPENAI_BASE_URL=https://api.deepseek.com\nOPENAI_MODEL_NAME=deepseek-chat\nSEMANTIC_SCHOLAR_API_KEY=\n"
		if err := os.WriteFile(".env", []byte(env), 0o600); err != nil {
			return fmt.Errorf("writing .env: %w", err)
		}
		fmt.Println("   .env")
	}
	fmt.Println("Project initialized.")
	return nil
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Demo builds the CLI and renders the one-shot graph of the Transformer paper
// into output/.
func Demo() error {
	mg.Deps(Build, Init)
	return sh.RunV(filepath.Join(binDir, binName), "top", demoID, "-n", "5", "--output-dir", "output")
}

// Stats prints project metrics: Go production/test LOC and documentation word count.
func Stats() error {
	prodLines, testLines, err := countGoLines(".")
	if err != nil {
		return err
	}
	docWords, err := countDocWords(".")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Words (documentation):           %d\n", docWords)
	return nil
}

// countGoLines counts non-blank lines in production and test Go files,
// skipping the reference corpus.
func countGoLines(root string) (prod, test int, err error) {
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := 0
		for _, line := range bytes.Split(data, []byte("\n")) {
			if len(bytes.TrimSpace(line)) > 0 {
				n++
			}
		}
		if strings.HasSuffix(path, "_test.go") {
			test += n
		} else {
			prod += n
		}
		return nil
	})
	return prod, test, err
}

// countDocWords counts words in top-level Markdown files.
func countDocWords(root string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(root, "*.md"))
	if err != nil {
		return 0, err
	}
	total := 0
	for _, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", m, err)
		}
		total += len(strings.Fields(string(data)))
	}
	return total, nil
}

func skipDir(path string) bool {
	base := filepath.Base(path)
	return base != "." && (strings.HasPrefix(base, "_") || strings.HasPrefix(base, ".") || base == binDir)
}
