// Package testutil provides golden file testing utilities.
package testutil

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var update = flag.Bool("update", false, "update golden files")

// CompareGolden compares actual with the golden file content; line endings are ignored.
// With -update the golden file is rewritten instead.
func CompareGolden(t *testing.T, goldenPath string, actual string) {
	t.Helper()

	if *update {
		writeGolden(t, goldenPath, actual)
		return
	}

	expected := normalize(readGolden(t, goldenPath))
	actual = normalize(actual)
	if actual == expected {
		return
	}

	line, want, got := firstDifference(expected, actual)
	t.Errorf("Golden file mismatch for %s at line %d\nwant: %q\ngot:  %q\n\nrun with -update to accept:\n%s",
		goldenPath, line, want, got, actual)
}

// CompareGoldenBytes is CompareGolden for serialized output
func CompareGoldenBytes(t *testing.T, goldenPath string, actual []byte) {
	t.Helper()
	CompareGolden(t, goldenPath, string(actual))
}

// CompareGoldenLines compares a golden file holding one value per line
func CompareGoldenLines(t *testing.T, goldenPath string, actual []string) {
	t.Helper()
	CompareGolden(t, goldenPath, strings.Join(actual, "\n")+"\n")
}

func normalize(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// firstDifference returns the 1-based number and contents of the first differing line
func firstDifference(expected, actual string) (int, string, string) {
	wantLines := strings.Split(expected, "\n")
	gotLines := strings.Split(actual, "\n")

	for i := 0; i < max(len(wantLines), len(gotLines)); i++ {
		var want, got string
		if i < len(wantLines) {
			want = wantLines[i]
		}
		if i < len(gotLines) {
			got = gotLines[i]
		}
		if want != got || i >= len(wantLines) || i >= len(gotLines) {
			return i + 1, want, got
		}
	}
	return 0, "", ""
}

func readGolden(t *testing.T, goldenPath string) string {
	t.Helper()

	content, err := os.ReadFile(goldenPath)
	if err != nil {
		t.Fatalf("Failed to read golden file %s: %v", goldenPath, err)
	}
	return string(content)
}

func writeGolden(t *testing.T, goldenPath string, actual string) {
	t.Helper()

	dir := filepath.Dir(goldenPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("Failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(goldenPath, []byte(actual), 0o644); err != nil {
		t.Fatalf("Failed to update golden file %s: %v", goldenPath, err)
	}
	t.Logf("Updated golden file: %s", goldenPath)
}
