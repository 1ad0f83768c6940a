//go:build blackbox

package blackbox

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func contains(s, sub string) bool { return strings.Contains(s, sub) }

var runIDPattern = regexp.MustCompile(`Run ID:\s+(\S+)`)

func runID(t *testing.T, out string) string {
	t.Helper()

	m := runIDPattern.FindStringSubmatch(out)
	if len(m) != 2 {
		t.Fatalf("no run id in output:\n%s", out)
	}
	return m[1]
}

func samplePrices(t *testing.T) string {
	t.Helper()

	p, err := filepath.Abs("../../testdata/fx_sample.csv")
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()

	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

func replaceAll(s, old, new string) string { return strings.ReplaceAll(s, old, new) }

func readFile(t *testing.T, path string) string {
	t.Helper()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}
