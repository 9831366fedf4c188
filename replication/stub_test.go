package replication

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStubRoundTrip(t *testing.T) {
	dir := t.TempDir()
	if StubExists(dir) {
		t.Fatal("stub should not exist in a fresh directory")
	}
	if err := WriteStub(dir, BackendTagFlint, "db_0"); err != nil {
		t.Fatal(err)
	}
	if !StubExists(dir) {
		t.Fatal("stub should exist after WriteStub")
	}
	tag, subdir, err := ReadStub(dir)
	if err != nil {
		t.Fatal(err)
	}
	if tag != BackendTagFlint || subdir != "db_0" {
		t.Fatalf("got tag=%q subdir=%q, want tag=%q subdir=%q", tag, subdir, BackendTagFlint, "db_0")
	}
}

func TestStubRejectsUnknownTag(t *testing.T) {
	dir := t.TempDir()
	content := "brass db_0\n"
	if err := os.WriteFile(filepath.Join(dir, StubFileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	_, _, err := ReadStub(dir)
	if _, ok := err.(*FeatureUnavailable); !ok {
		t.Fatalf("got %v (%T), want *FeatureUnavailable", err, err)
	}
}

func TestStubIgnoresCommentsAndBlankLines(t *testing.T) {
	dir := t.TempDir()
	content := "# comment\n\nflint db_1\n"
	if err := os.WriteFile(filepath.Join(dir, StubFileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	tag, subdir, err := ReadStub(dir)
	if err != nil {
		t.Fatal(err)
	}
	if tag != "flint" || subdir != "db_1" {
		t.Fatalf("got tag=%q subdir=%q", tag, subdir)
	}
}

func TestNextOfflineName(t *testing.T) {
	cases := []struct{ live, want string }{
		{"", "db_0"},
		{"db", "db_0"},
		{"db_0", "db_1"},
		{"db_1", "db_0"},
	}
	for _, c := range cases {
		got := nextOfflineName(c.live)
		if got != c.want {
			t.Errorf("nextOfflineName(%q) = %q, want %q", c.live, got, c.want)
		}
	}
}
