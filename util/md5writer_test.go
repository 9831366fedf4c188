package util

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

func TestMD5Writer(t *testing.T) {
	const input = "hello1 hello2 hello3 hello4 hello5"
	goal, _ := hex.DecodeString("3df5ff7e5cfa1d4ee32df4afff7b3c2c")

	hw := NewMD5WriterPlain()
	if _, err := hw.Write([]byte(input)); err != nil {
		t.Fatal(err)
	}
	if !hw.Check(goal) {
		t.Errorf("got %x, want %x", hw.Sum(), goal)
	}
	if !hw.Check(nil) {
		t.Error("an empty goal should always match")
	}
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "sample.txt")
	if err := os.WriteFile(name, []byte("xapian replica"), 0644); err != nil {
		t.Fatal(err)
	}
	sum, err := HashFile(name)
	if err != nil {
		t.Fatal(err)
	}
	want, err := HashFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(sum, want) {
		t.Errorf("hashing the same file twice gave different results")
	}
}
