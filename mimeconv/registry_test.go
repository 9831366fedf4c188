package mimeconv

import "testing"

func TestRegistryLookupUnregistered(t *testing.T) {
	reg := NewRegistry()
	if _, ok := reg.Lookup("application/x-nope"); ok {
		t.Fatal("expected unregistered mime to report not-registered")
	}
}

func TestRegistrySetAndLookup(t *testing.T) {
	reg := NewRegistry()
	reg.SetCommand("application/x-made-up", "mycommand ")
	template, ok := reg.Lookup("application/x-made-up")
	if !ok || template != "mycommand " {
		t.Fatalf("got %q,%v want %q,true", template, ok, "mycommand ")
	}
}

func TestRegistryMarkFilterMissingMemoizesEmptyTemplate(t *testing.T) {
	reg := NewRegistry()
	reg.SetCommand("application/x-made-up", "mycommand ")
	reg.MarkFilterMissing("application/x-made-up")

	template, ok := reg.Lookup("application/x-made-up")
	if !ok {
		t.Fatal("expected mime to remain registered after filter-missing")
	}
	if template != "" {
		t.Fatalf("expected empty template after filter-missing, got %q", template)
	}
}

func TestRegistryInstancesDoNotShareState(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()
	a.SetCommand("application/x-made-up", "a-command ")
	if _, ok := b.Lookup("application/x-made-up"); ok {
		t.Fatal("expected registries to be independent instances")
	}
}

func TestBuiltinFamilyCoversTableEntries(t *testing.T) {
	cases := []string{
		"text/html",
		"application/vnd.ms-outlook",
		"text/plain",
		"text/csv",
		"application/pdf",
		"application/postscript",
		"application/vnd.oasis.opendocument.text",
		"application/vnd.sun.xml.writer",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.template",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"application/x-abiword",
		"application/x-abiword-compressed",
		"text/rtf",
		"text/x-perl",
		"application/x-dvi",
		"application/vnd.ms-excel",
		"application/vnd.ms-xpsdocument",
		"image/svg+xml",
		"application/x-debian-package",
		"application/x-redhat-package-manager",
	}
	for _, mime := range cases {
		if _, ok := builtinFamily(mime); !ok {
			t.Errorf("expected %q to be a builtin family", mime)
		}
	}
}

func TestBuiltinFamilyRejectsUnknown(t *testing.T) {
	if _, ok := builtinFamily("application/x-totally-made-up"); ok {
		t.Fatal("expected unknown mime to not match a builtin family")
	}
}
