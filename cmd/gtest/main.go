// gtest compiles every example program in-process and compares the result
// with the golden JSON file stored next to it.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/pterm/pterm"

	"github.com/xplshn/tacc/pkg/compiler"
	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/util"
)

// Golden is the recorded outcome of compiling one source file.
type Golden struct {
	File        string   `json:"file"`
	SourceHash  string   `json:"source_hash"`
	Flags       []string `json:"flags,omitempty"`
	TAC         []string `json:"tac,omitempty"`
	Error       string   `json:"error,omitempty"`
	Fingerprint string   `json:"fingerprint,omitempty"`
}

type FileTestResult struct {
	File     string        `json:"file"`
	Status   string        `json:"status"` // PASS, FAIL, SKIP, ERROR
	Message  string        `json:"message,omitempty"`
	Diff     string        `json:"diff,omitempty"`
	Duration time.Duration `json:"duration"`
}

var (
	testFiles   = flag.String("test-files", "examples/*.mini", "Glob pattern(s) for files to test (space-separated).")
	skipFiles   = flag.String("skip-files", "", "Files to skip (space-separated).")
	generate    = flag.Bool("generate", false, "Write golden files instead of comparing against them.")
	outputJSON  = flag.String("output", ".test_results.json", "Output file for the JSON test report.")
	jsonDir     = flag.String("dir", "", "Directory to store/read golden JSON files (defaults to source file dir).")
	compileArgs = flag.String("flags", "", "Feature/warning flags passed to every compilation, e.g. \"-Ftree-tac -Wno-all\".")
	jobs        = flag.Int("j", 4, "Number of parallel test jobs.")
	verbose     = flag.Bool("v", false, "Enable verbose logging.")
)

func main() {
	flag.Parse()
	log.SetFlags(0)
	// Warnings are not part of the recorded outcome.
	util.SetOutput(io.Discard)

	files, err := expandGlobPatterns(*testFiles)
	if err != nil {
		log.Fatalf("%s Invalid glob pattern(s): %v\n", pterm.FgRed.Sprint("[ERROR]"), err)
	}
	if len(files) == 0 {
		log.Println("No test files found matching the pattern(s).")
		return
	}

	skipList := make(map[string]bool)
	for _, f := range strings.Fields(*skipFiles) {
		skipList[f] = true
	}

	tasks := make(chan string, len(files))
	resultsChan := make(chan *FileTestResult, len(files))
	var wg sync.WaitGroup

	for i := 0; i < max(*jobs, 1); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range tasks {
				resultsChan <- testFile(file)
			}
		}()
	}

	// Files with identical content are compiled once.
	seenHashes := make(map[string]string)
	for _, file := range files {
		if skipList[file] {
			resultsChan <- &FileTestResult{File: file, Status: "SKIP", Message: "Explicitly skipped"}
			continue
		}
		hash, err := hashFile(file)
		if err != nil {
			resultsChan <- &FileTestResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Failed to read file for hashing: %v", err)}
			continue
		}
		if original, seen := seenHashes[hash]; seen {
			resultsChan <- &FileTestResult{File: file, Status: "SKIP", Message: fmt.Sprintf("Content is identical to %s", original)}
			continue
		}
		seenHashes[hash] = file
		tasks <- file
	}
	close(tasks)

	wg.Wait()
	close(resultsChan)

	var allResults []*FileTestResult
	for result := range resultsChan {
		allResults = append(allResults, result)
	}
	sort.Slice(allResults, func(i, j int) bool { return allResults[i].File < allResults[j].File })

	printSummary(allResults)
	if err := writeJSONReport(allResults); err != nil {
		log.Printf("%s Could not write report: %v\n", pterm.FgYellow.Sprint("[WARN]"), err)
	}
	for _, r := range allResults {
		if r.Status == "FAIL" || r.Status == "ERROR" {
			os.Exit(1)
		}
	}
}

func getJSONPath(sourceFile string) string {
	name := "." + filepath.Base(sourceFile) + ".json"
	if *jsonDir != "" {
		return filepath.Join(*jsonDir, name)
	}
	return filepath.Join(filepath.Dir(sourceFile), name)
}

// hashFile computes the xxhash of a file's content
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum64()), nil
}

// record compiles file and captures the outcome in the golden format.
func record(file string) (*Golden, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	cfg := config.NewConfig()
	flags := strings.Fields(*compileArgs)
	for _, f := range flags {
		if err := cfg.ApplyFlag(f); err != nil {
			return nil, err
		}
	}

	g := &Golden{
		File:       filepath.Base(file),
		SourceHash: fmt.Sprintf("%x", xxhash.Sum64(src)),
		Flags:      flags,
	}
	res, err := compiler.Compile(file, string(src), compiler.Options{Config: cfg})
	if err != nil {
		var ce *util.CompileError
		if !errors.As(err, &ce) {
			return nil, err
		}
		g.Error = ce.Error()
		return g, nil
	}
	g.TAC = res.Lines
	g.Fingerprint = fmt.Sprintf("%016x", res.Fingerprint())
	return g, nil
}

func testFile(file string) *FileTestResult {
	start := time.Now()
	result := func(status, msg, diff string) *FileTestResult {
		return &FileTestResult{File: file, Status: status, Message: msg, Diff: diff, Duration: time.Since(start)}
	}

	got, err := record(file)
	if err != nil {
		return result("ERROR", err.Error(), "")
	}
	goldenFile := getJSONPath(file)

	if *generate {
		data, err := json.MarshalIndent(got, "", "  ")
		if err != nil {
			return result("ERROR", fmt.Sprintf("Failed to marshal golden data: %v", err), "")
		}
		if *jsonDir != "" {
			if err := os.MkdirAll(*jsonDir, 0755); err != nil {
				return result("ERROR", err.Error(), "")
			}
		}
		if err := os.WriteFile(goldenFile, append(data, '\n'), 0644); err != nil {
			return result("ERROR", err.Error(), "")
		}
		return result("PASS", "Golden file written to "+goldenFile, "")
	}

	data, err := os.ReadFile(goldenFile)
	if err != nil {
		return result("SKIP", "Cannot test without a corresponding .json golden file", "")
	}
	var want Golden
	if err := json.Unmarshal(data, &want); err != nil {
		return result("ERROR", fmt.Sprintf("Could not parse golden file %s: %v", goldenFile, err), "")
	}
	if want.SourceHash != got.SourceHash && *verbose {
		log.Printf("[%s] source changed since the golden file was written", file)
	}
	// The hash of the source is informative only.
	want.SourceHash = got.SourceHash
	if diff := cmp.Diff(&want, got); diff != "" {
		return result("FAIL", "Output differs from golden file (-want +got)", diff)
	}
	return result("PASS", "Output matches golden file", "")
}

func expandGlobPatterns(patterns string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range strings.Fields(patterns) {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func printSummary(results []*FileTestResult) {
	counts := make(map[string]int)
	for _, r := range results {
		counts[r.Status]++
		var status string
		switch r.Status {
		case "PASS":
			status = pterm.FgGreen.Sprint("[PASS]")
		case "FAIL":
			status = pterm.FgRed.Sprint("[FAIL]")
		case "SKIP":
			status = pterm.FgYellow.Sprint("[SKIP]")
		default:
			status = pterm.FgMagenta.Sprint("[" + r.Status + "]")
		}
		if r.Status == "PASS" && !*verbose {
			continue
		}
		fmt.Printf("%s %s: %s (%s)\n", status, r.File, r.Message, r.Duration.Round(time.Microsecond))
		if r.Diff != "" {
			fmt.Println(r.Diff)
		}
	}
	fmt.Printf("\n%s %d passed, %d failed, %d skipped, %d errors\n",
		pterm.Bold.Sprint("Summary:"), counts["PASS"], counts["FAIL"], counts["SKIP"], counts["ERROR"])
}

func writeJSONReport(results []*FileTestResult) error {
	report := make(map[string]*FileTestResult, len(results))
	for _, r := range results {
		report[r.File] = r
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	path := *outputJSON
	if *jsonDir != "" {
		path = filepath.Join(*jsonDir, *outputJSON)
	}
	return os.WriteFile(path, data, 0644)
}
