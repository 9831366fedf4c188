// Command mimeconvert runs the MIME-dispatch engine against one or more
// files and prints the extracted fields, for manual inspection and for
// testing handler command templates without standing up the full indexing
// pipeline.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ndlib/dbreplicate/mimeconv"
)

var (
	tmpDir           = flag.String("tmpdir", os.TempDir(), "temp directory for PostScript-to-PDF conversion")
	ignoreExclusions = flag.Bool("ignore-exclusions", false, "ignore meta robots noindex when extracting HTML")
	commandsFile     = flag.String("commands", "", "optional file of mimetype=command lines to register as external handlers")
	typeHint         = flag.String("type", "", "override the MIME type derived from the file extension")
	asJSON           = flag.Bool("json", false, "print the full Fields record as JSON instead of just the body")

	usage = `
mimeconvert [-commands file] [-type mime] [-json] file [file...]

Converts each file argument to plain text via the MIME-dispatch engine and
prints the result.
`
)

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Print(usage)
		os.Exit(1)
	}

	extractor := mimeconv.NewExtractor()
	if *commandsFile != "" {
		if err := registerCommands(extractor.Registry, *commandsFile); err != nil {
			log.Fatalf("load commands file: %s", err)
		}
	}

	opts := mimeconv.Options{
		IgnoreExclusions: *ignoreExclusions,
		TmpDir:           *tmpDir,
	}

	status := 0
	for _, path := range flag.Args() {
		fields, result := extractor.Convert(path, *typeHint, opts)
		if result != mimeconv.OK {
			fmt.Fprintf(os.Stderr, "%s: %s\n", path, result)
			status = 1
			continue
		}
		printFields(path, fields)
	}
	os.Exit(status)
}

func printFields(path string, fields mimeconv.Fields) {
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(fields); err != nil {
			log.Printf("%s: encode: %s", path, err)
		}
		return
	}
	fmt.Printf("=== %s (%s) ===\n", path, fields.MimeType)
	if fields.Title != "" {
		fmt.Printf("title: %s\n", fields.Title)
	}
	if fields.Author != "" {
		fmt.Printf("author: %s\n", fields.Author)
	}
	fmt.Println(fields.Body)
}

// registerCommands loads "mimetype=command" lines from filename and
// registers each as an external-command template on reg, letting a
// mimeconvert user exercise the external-command route without editing
// code.
func registerCommands(reg *mimeconv.Registry, filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.IndexByte(line, '=')
		if idx < 0 {
			continue
		}
		mime := strings.TrimSpace(line[:idx])
		command := line[idx+1:]
		reg.SetCommand(mime, command)
	}
	return scanner.Err()
}
