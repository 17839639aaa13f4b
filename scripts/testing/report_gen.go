// Generates JSON and Markdown test reports from `go test -json` output,
// joined with the TestPurpose/Scope/Security/Expected/Test Case ID doc
// headers carried by every test in the tree. CI gates on the exit code.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const modulePath = "github.com/tenantgov/tenantgov"

// Annotation holds the doc-comment header parsed from a test function.
type Annotation struct {
	Name       string `json:"name"`
	Purpose    string `json:"purpose,omitempty"`
	Scope      string `json:"scope,omitempty"`
	Security   string `json:"security,omitempty"`
	Expected   string `json:"expected,omitempty"`
	TestCaseID string `json:"test_case_id,omitempty"`
	Package    string `json:"package"`
	Category   string `json:"category"`
	Suite      string `json:"suite"` // UT, SYSTEM, E2E
}

type testEvent struct {
	Action  string  `json:"Action"`
	Package string  `json:"Package"`
	Test    string  `json:"Test"`
	Elapsed float64 `json:"Elapsed"`
	Output  string  `json:"Output"`
}

// Result is one test's merged outcome and annotation.
type Result struct {
	Name       string     `json:"name"`
	Status     string     `json:"status"`
	Elapsed    float64    `json:"elapsed_seconds"`
	Package    string     `json:"package"`
	Failure    string     `json:"failure_reason,omitempty"`
	Annotation Annotation `json:"annotation"`
}

// Report is the top-level document written to JSON and Markdown.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`
	Total       int       `json:"total"`
	Passed      int       `json:"passed"`
	Failed      int       `json:"failed"`
	Skipped     int       `json:"skipped"`
	Results     []Result  `json:"results"`
}

// categoryOrder fixes the section order of the Markdown report.
var categoryOrder = []string{
	"AuthN", "Tenant", "Provisioning", "Rules", "Audit", "Credential",
	"Auth API", "Tenant API", "API", "Store", "SYSTEM", "E2E", "Other",
}

func main() {
	inputPath := flag.String("input", "", "Path to go test -json output file")
	outJSON := flag.String("out-json", "", "Path for the JSON report")
	outMD := flag.String("out-md", "", "Path for the Markdown report")
	title := flag.String("title", "Test Report", "Report title")
	onlyCats := flag.String("categories", "", "Comma-separated categories to include (default all)")
	suite := flag.String("suite", "", "Restrict to one suite (UT, SYSTEM, E2E)")
	flag.Parse()

	if *inputPath == "" || *outJSON == "" || *outMD == "" {
		fmt.Println("Usage: report_gen -input <json_file> -out-json <path> -out-md <path>")
		os.Exit(1)
	}

	annotations := scanAnnotations()
	results := mergeEvents(*inputPath, annotations)
	results = filterResults(results, *onlyCats, *suite)

	report := summarize(results)
	writeJSON(report, *outJSON)
	writeMarkdown(report, *outMD, *title)

	if report.Failed > 0 {
		fmt.Printf("report_gen: %d tests failed\n", report.Failed)
		os.Exit(1)
	}
}

// scanAnnotations walks the tree and parses the doc headers of every Test
// function, keyed by "<import path>.<test name>".
func scanAnnotations() map[string]Annotation {
	out := make(map[string]Annotation)
	fset := token.NewFileSet()

	filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, "_test.go") {
			return nil
		}
		node, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
		if err != nil {
			return nil
		}

		pkg := importPath(path)
		for _, decl := range node.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || !strings.HasPrefix(fn.Name.Name, "Test") {
				continue
			}
			a := Annotation{
				Name:     fn.Name.Name,
				Package:  pkg,
				Suite:    suiteOf(pkg),
				Category: categoryOf(pkg, fn.Name.Name),
			}
			if fn.Doc != nil {
				for _, c := range fn.Doc.List {
					text := strings.TrimSpace(strings.TrimPrefix(c.Text, "//"))
					for field, dst := range map[string]*string{
						"TestPurpose:":  &a.Purpose,
						"Scope:":        &a.Scope,
						"Security:":     &a.Security,
						"Expected:":     &a.Expected,
						"Test Case ID:": &a.TestCaseID,
					} {
						if rest, ok := strings.CutPrefix(text, field); ok {
							*dst = strings.TrimSpace(rest)
						}
					}
				}
			}
			out[pkg+"."+fn.Name.Name] = a
		}
		return nil
	})
	return out
}

func importPath(filePath string) string {
	dir := filepath.ToSlash(filepath.Dir(filePath))
	dir = strings.TrimPrefix(dir, "./")
	if dir == "." {
		return modulePath
	}
	return modulePath + "/" + dir
}

func suiteOf(pkg string) string {
	rel := strings.TrimPrefix(pkg, modulePath+"/")
	if after, ok := strings.CutPrefix(rel, "tests/"); ok {
		if name, _, _ := strings.Cut(after, "/"); name != "" {
			return strings.ToUpper(name)
		}
	}
	return "UT"
}

func categoryOf(pkg, testName string) string {
	rel := strings.TrimPrefix(pkg, modulePath+"/")
	switch {
	case strings.Contains(rel, "transport/http"):
		if strings.Contains(testName, "Auth") {
			return "Auth API"
		}
		if strings.Contains(testName, "Tenant") {
			return "Tenant API"
		}
		return "API"
	case strings.Contains(rel, "store"):
		return "Store"
	case strings.Contains(rel, "admin"):
		return "AuthN"
	case strings.Contains(rel, "provisioning"):
		return "Provisioning"
	case strings.Contains(rel, "tenant"):
		return "Tenant"
	case strings.Contains(rel, "rules"):
		return "Rules"
	case strings.Contains(rel, "audit"):
		return "Audit"
	case strings.Contains(rel, "credential"):
		return "Credential"
	}
	if s := suiteOf(pkg); s != "UT" {
		return s
	}
	return "Other"
}

// mergeEvents folds the go test -json event stream into per-test results,
// seeding from the annotation scan so tests that never ran show as "not run".
func mergeEvents(path string, annotations map[string]Annotation) []Result {
	states := make(map[string]*Result, len(annotations))
	for key, a := range annotations {
		states[key] = &Result{Name: a.Name, Package: a.Package, Status: "not run", Annotation: a}
	}

	file, err := os.Open(path)
	if err != nil {
		fmt.Printf("report_gen: cannot open %s: %v\n", path, err)
		return nil
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var ev testEvent
		if json.Unmarshal(scanner.Bytes(), &ev) != nil || ev.Test == "" {
			continue
		}

		key := ev.Package + "." + ev.Test
		res, ok := states[key]
		if !ok {
			res = &Result{Name: ev.Test, Package: ev.Package, Annotation: subtestAnnotation(ev, annotations)}
			states[key] = res
		}

		switch ev.Action {
		case "pass", "fail":
			res.Status = ev.Action
			res.Elapsed = ev.Elapsed
		case "skip":
			res.Status = "skip"
		case "output":
			if res.Status == "fail" || res.Status == "" {
				res.Failure += ev.Output
			}
		}
	}

	list := make([]Result, 0, len(states))
	for _, r := range states {
		list = append(list, *r)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Package != list[j].Package {
			return list[i].Package < list[j].Package
		}
		return list[i].Name < list[j].Name
	})
	return list
}

// subtestAnnotation inherits a subtest's annotation from its parent test.
func subtestAnnotation(ev testEvent, annotations map[string]Annotation) Annotation {
	if parent, _, found := strings.Cut(ev.Test, "/"); found {
		if a, ok := annotations[ev.Package+"."+parent]; ok {
			a.Name = ev.Test
			a.Purpose += " (subtest: " + ev.Test + ")"
			return a
		}
	}
	return Annotation{
		Name:     ev.Test,
		Package:  ev.Package,
		Suite:    suiteOf(ev.Package),
		Category: "Other",
	}
}

func filterResults(results []Result, onlyCats, suite string) []Result {
	keepCat := func(string) bool { return true }
	if onlyCats != "" {
		allowed := make(map[string]bool)
		for _, c := range strings.Split(onlyCats, ",") {
			allowed[strings.TrimSpace(c)] = true
		}
		keepCat = func(c string) bool { return allowed[c] }
	}

	out := results[:0]
	for _, r := range results {
		if !keepCat(r.Annotation.Category) {
			continue
		}
		if suite != "" && !strings.EqualFold(r.Annotation.Suite, suite) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func summarize(results []Result) Report {
	report := Report{GeneratedAt: time.Now(), Results: results, Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case "pass":
			report.Passed++
		case "fail":
			report.Failed++
		case "skip":
			report.Skipped++
		}
	}
	return report
}

func writeJSON(report Report, path string) {
	data, _ := json.MarshalIndent(report, "", "  ")
	os.MkdirAll(filepath.Dir(path), 0755)
	os.WriteFile(path, data, 0644)
}

func writeMarkdown(report Report, path, title string) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# TenantGov %s\n\n", title)
	fmt.Fprintf(&sb, "**Generated:** %s  \n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	status := "PASSED"
	if report.Failed > 0 {
		status = "FAILED"
	}
	fmt.Fprintf(&sb, "**Status:** %s\n\n", status)

	rate := 0.0
	if report.Total > 0 {
		rate = float64(report.Passed) / float64(report.Total) * 100
	}
	sb.WriteString("| Total | Passed | Failed | Skipped | Pass Rate |\n")
	sb.WriteString("|-------|--------|--------|---------|-----------|\n")
	fmt.Fprintf(&sb, "| %d | %d | %d | %d | %.1f%% |\n\n",
		report.Total, report.Passed, report.Failed, report.Skipped, rate)

	byCategory := make(map[string][]Result)
	for _, r := range report.Results {
		byCategory[r.Annotation.Category] = append(byCategory[r.Annotation.Category], r)
	}

	for _, cat := range categoryOrder {
		tests := byCategory[cat]
		if len(tests) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "## %s\n\n", cat)
		sb.WriteString("| ID | Test | Status | Purpose | Security |\n")
		sb.WriteString("|----|------|--------|---------|----------|\n")
		for _, t := range tests {
			security := t.Annotation.Security
			if security != "" {
				security = "**" + security + "**"
			}
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s |\n",
				t.Annotation.TestCaseID, t.Name, t.Status, t.Annotation.Purpose, security)
		}
		sb.WriteString("\n")
	}

	if report.Failed > 0 {
		sb.WriteString("## Failure Details\n\n")
		for _, t := range report.Results {
			if t.Status != "fail" {
				continue
			}
			fmt.Fprintf(&sb, "### %s (%s)\n```\n%s\n```\n\n", t.Name, t.Package, t.Failure)
		}
	}

	os.MkdirAll(filepath.Dir(path), 0755)
	os.WriteFile(path, []byte(sb.String()), 0644)
}
