package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

const ruleWidth = 72

func rule(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("─", ruleWidth))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// openInput opens path for reading; "-" reads stdin.
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func percent(v float64) string {
	return fmt.Sprintf("%3.0f%%", v*100)
}
