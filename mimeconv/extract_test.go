package mimeconv

import (
	"io/ioutil"
	"path/filepath"
	"testing"
)

func TestConvertUnknownExtensionReturnsUnknownType(t *testing.T) {
	e := NewExtractor()
	dir := t.TempDir()
	path := filepath.Join(dir, "file.zzz")
	if err := ioutil.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	_, status := e.Convert(path, "", Options{})
	if status != UnknownType {
		t.Fatalf("expected UnknownType, got %s", status)
	}
}

func TestConvertNoExtensionReturnsUnknownType(t *testing.T) {
	e := NewExtractor()
	dir := t.TempDir()
	path := filepath.Join(dir, "noext")
	if err := ioutil.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	_, status := e.Convert(path, "", Options{})
	if status != UnknownType {
		t.Fatalf("expected UnknownType, got %s", status)
	}
}

func TestConvertIgnoredExtension(t *testing.T) {
	e := NewExtractor()
	dir := t.TempDir()
	path := filepath.Join(dir, "picture.gif")
	if err := ioutil.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	_, status := e.Convert(path, "", Options{})
	if status != Ignored {
		t.Fatalf("expected Ignored, got %s", status)
	}
}

func TestConvertRegisteredEmptyTemplateIsFilterMissing(t *testing.T) {
	e := NewExtractor()
	e.Resolver.SetMimetype("xyz", "application/x-made-up")
	e.Registry.SetCommand("application/x-made-up", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "file.xyz")
	if err := ioutil.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	_, status := e.Convert(path, "", Options{})
	if status != FilterMissing {
		t.Fatalf("expected FilterMissing, got %s", status)
	}
}

func TestConvertUnregisteredMimeWithNoBuiltinIsUnknownType(t *testing.T) {
	e := NewExtractor()
	e.Resolver.SetMimetype("xyz", "application/x-made-up")

	dir := t.TempDir()
	path := filepath.Join(dir, "file.xyz")
	if err := ioutil.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	_, status := e.Convert(path, "", Options{})
	if status != UnknownType {
		t.Fatalf("expected UnknownType, got %s", status)
	}
}

func TestConvertLowercasesExtensionBeforeResolution(t *testing.T) {
	e := NewExtractor()
	dir := t.TempDir()
	lower := filepath.Join(dir, "readme.txt")
	upper := filepath.Join(dir, "README.TXT")
	body := []byte("hello world")
	if err := ioutil.WriteFile(lower, body, 0644); err != nil {
		t.Fatal(err)
	}
	if err := ioutil.WriteFile(upper, body, 0644); err != nil {
		t.Fatal(err)
	}
	f1, s1 := e.Convert(lower, "", Options{})
	f2, s2 := e.Convert(upper, "", Options{})
	if s1 != OK || s2 != OK {
		t.Fatalf("expected OK, got %s and %s", s1, s2)
	}
	if f1.MimeType != f2.MimeType {
		t.Fatalf("expected identical MIME resolution, got %q vs %q", f1.MimeType, f2.MimeType)
	}
}

func TestConvertPlainTextStripsUTF8BOM(t *testing.T) {
	e := NewExtractor()
	dir := t.TempDir()
	path := filepath.Join(dir, "readme.txt")
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Hi")...)
	if err := ioutil.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	fields, status := e.Convert(path, "", Options{})
	if status != OK {
		t.Fatalf("expected OK, got %s", status)
	}
	if fields.Body != "Hi" {
		t.Fatalf("expected body %q, got %q", "Hi", fields.Body)
	}
	if len(fields.MD5) != 16 {
		t.Fatalf("expected a populated MD5, got %v", fields.MD5)
	}
}

func TestConvertTypeHintWithoutDotIsUsedAsCanonicalMime(t *testing.T) {
	e := NewExtractor()
	dir := t.TempDir()
	// no extension at all; an extension-table lookup would report
	// UnknownType, but a bare MIME type hint must be honored directly.
	path := filepath.Join(dir, "noext")
	if err := ioutil.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	fields, status := e.Convert(path, "text/plain", Options{})
	if status != OK {
		t.Fatalf("expected OK, got %s", status)
	}
	if fields.MimeType != "text/plain" {
		t.Fatalf("expected mime type %q, got %q", "text/plain", fields.MimeType)
	}
}

func TestConvertTypeHintWithDotResolvesThroughExtensionTable(t *testing.T) {
	e := NewExtractor()
	dir := t.TempDir()
	path := filepath.Join(dir, "noext")
	if err := ioutil.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	fields, status := e.Convert(path, ".txt", Options{})
	if status != OK {
		t.Fatalf("expected OK, got %s", status)
	}
	if fields.MimeType != "text/plain" {
		t.Fatalf("expected mime type %q, got %q", "text/plain", fields.MimeType)
	}
}

func TestConvertUnknownTypeHintWithDotIsUnknownType(t *testing.T) {
	e := NewExtractor()
	dir := t.TempDir()
	path := filepath.Join(dir, "noext")
	if err := ioutil.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	_, status := e.Convert(path, ".zzz", Options{})
	if status != UnknownType {
		t.Fatalf("expected UnknownType, got %s", status)
	}
}

func TestConvertPostScriptWithoutTmpDirIsTmpdirUnavailable(t *testing.T) {
	e := NewExtractor()
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.ps")
	if err := ioutil.WriteFile(path, []byte("%!PS"), 0644); err != nil {
		t.Fatal(err)
	}
	_, status := e.Convert(path, "", Options{})
	if status != TmpdirUnavailable {
		t.Fatalf("expected TmpdirUnavailable, got %s", status)
	}
}
