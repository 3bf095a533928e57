package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/consensuslabs/chronicle/pkg/story"
)

func main() {
	rounds := flag.Int("rounds", 0, "expected round count (0 disables the check)")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [-rounds N] <theme.json> [theme.json ...]\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, filename := range flag.Args() {
		if err := validateFile(filename, *rounds); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("%s is valid\n", filename)
	}
	if failed {
		os.Exit(1)
	}
}

func validateFile(filename string, rounds int) error {
	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return fmt.Errorf("theme file must have .json extension: %s", baseName)
	}

	id := strings.TrimSuffix(baseName, ".json")
	if !validFilenameRegex.MatchString(id) {
		return fmt.Errorf("theme filename %q must be lowercase snake_case", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var t story.Theme
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&t); err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}
	t.ID = id

	if err := t.Validate(rounds); err != nil {
		return fmt.Errorf("file %s: %w", filename, err)
	}
	return nil
}

var validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
