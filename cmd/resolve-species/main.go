// resolve-species resolves species mentions offline against a catalog file
// and prints the matches as JSON.
//
// Usage: go run main.go -catalog=<file> [-input=<file>] [-domain=standard] [-html] [-overrides=<file>]
//
// The tool:
// 1. Reads one mention per line from -input (or stdin)
// 2. With -html, treats the input as a page and extracts mention lines first
// 3. Resolves the mentions against the chosen domain
// 4. Writes the match array to stdout and the reports to stderr
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/codyseavey/pogo-parser/backend/internal/services"
)

func main() {
	catalogPath := flag.String("catalog", "", "Path to species catalog JSON (required)")
	inputPath := flag.String("input", "", "Input file (default stdin)")
	domainName := flag.String("domain", services.DomainStandard, "Domain to resolve against: standard, shadow, mega or all")
	htmlInput := flag.Bool("html", false, "Treat input as HTML and extract mention lines")
	section := flag.String("section", "", "With -html, restrict extraction to \"#id\", \".class\" or a tag")
	overridesPath := flag.String("overrides", "", "JSON object of extra name overrides")
	quiet := flag.Bool("quiet", false, "Do not print resolution reports")
	flag.Parse()

	if *catalogPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -catalog is required")
		flag.Usage()
		os.Exit(1)
	}

	catalogService, err := services.NewCatalogService(*catalogPath)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	domain, err := catalogService.Domain(*domainName)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	overrides := map[string]string{}
	if *overridesPath != "" {
		data, err := os.ReadFile(*overridesPath)
		if err != nil {
			log.Fatalf("Failed to read overrides: %v", err)
		}
		if err := json.Unmarshal(data, &overrides); err != nil {
			log.Fatalf("Failed to parse overrides: %v", err)
		}
	}

	var reporter services.Reporter = services.LogReporter
	if *quiet {
		reporter = func(services.ResolutionReport) {}
	}
	matcher, err := services.NewSpeciesMatcher(catalogService.Catalog(), services.MatcherOptions{
		NameOverrides: overrides,
		Reporter:      reporter,
	})
	if err != nil {
		log.Fatalf("Failed to initialize matcher: %v", err)
	}

	in := io.Reader(os.Stdin)
	if *inputPath != "" {
		f, err := os.Open(*inputPath)
		if err != nil {
			log.Fatalf("Failed to open input: %v", err)
		}
		defer f.Close()
		in = f
	}

	mentions, err := readMentions(in, *htmlInput, *section)
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}

	matches := matcher.MatchMentions(mentions, domain)
	log.Printf("Resolved %d of %d mentions", len(matches), len(mentions))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(matches); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
}

func readMentions(r io.Reader, htmlInput bool, section string) ([]services.Mention, error) {
	if htmlInput {
		root, err := services.ParseHTML(r)
		if err != nil {
			return nil, err
		}
		node := services.SelectSection(root, section)
		if node == nil {
			return nil, fmt.Errorf("section %q not found", section)
		}
		return services.NewTextExtractor(services.ExtractorConfig{}).Extract(node), nil
	}

	var mentions []services.Mention
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		mentions = append(mentions, services.Mention{Text: scanner.Text()})
	}
	return mentions, scanner.Err()
}
