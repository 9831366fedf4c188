package replication

import (
	"bufio"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
)

// StubFileName is the name of the stub-pointer file inside a replica
// directory, preserved from the original on-disk format so pre-existing
// replicas remain loadable.
const StubFileName = "XAPIANDB"

// BackendTagFlint is the only backend tag this build accepts. The stub
// format keeps a tag prefix on each line as a future-extension point; any
// other tag is a FeatureUnavailable error.
const BackendTagFlint = "flint"

// StubExists reports whether dir already has a stub-pointer file, letting a
// caller distinguish a freshly created replica directory from one with an
// existing live database.
func StubExists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, StubFileName))
	return err == nil
}

// ReadStub reads the stub-pointer file in dir and returns the backend tag
// and subdirectory name it names. Blank lines and lines starting with '#'
// are ignored, matching spec.md §4.3.
func ReadStub(dir string) (tag, subdir string, err error) {
	data, err := ioutil.ReadFile(filepath.Join(dir, StubFileName))
	if err != nil {
		return "", "", NewDatabaseOpeningError("read stub pointer", err)
	}
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.SplitN(line, " ", 2)
		if len(fields) != 2 {
			continue
		}
		tag, subdir = fields[0], strings.TrimSpace(fields[1])
		if tag != BackendTagFlint {
			return "", "", NewFeatureUnavailable(fmt.Sprintf("unsupported backend tag %q", tag))
		}
		return tag, subdir, nil
	}
	return "", "", NewDatabaseOpeningError("stub pointer has no entry", nil)
}

// WriteStub rewrites the stub-pointer file in dir to name subdir, using the
// given backend tag. The rewrite is write-to-temp-then-rename so a reader
// never observes a missing or half-written stub; a rename failure is fatal,
// per spec.md §4.3.
func WriteStub(dir, tag, subdir string) error {
	target := filepath.Join(dir, StubFileName)
	tmp := target + ".tmp"
	content := fmt.Sprintf("%s %s\n", tag, subdir)
	if err := ioutil.WriteFile(tmp, []byte(content), 0644); err != nil {
		return NewDatabaseOpeningError("write stub temp file", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return NewDatabaseOpeningError("rename stub temp file into place", err)
	}
	return nil
}
