package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"time"

	"crosswarped.com/ligatag"
	"crosswarped.com/ligatag/internal/ruletable"
)

func main() {

	word := flag.String("word", "", "A single word to rewrite")
	file := flag.String("file", "", "The file to load words from, one per line")
	rulesFile := flag.String("rules", "", "The rule table to use (defaults to the built-in table)")
	enabled := flag.String("enable", "", "Comma-separated glyphs or sequences of the rules to enable (defaults to all)")
	search := flag.String("search", "", "Only print results containing this text, written plainly or with ligatures")
	exactCase := flag.Bool("exact-case", false, "Only search the words as written, not their upper/lower-case forms")
	maxChars := flag.Int("max", ligatag.MaxCharsInTag, "The maximum number of characters in a result")
	sortBy := flag.String("sort", "alpha", "Result order: alpha or length")
	unique := flag.Bool("unique", false, "Drop results repeated across words")
	workers := flag.Int("workers", 1, "The number of words enumerated concurrently")
	verbose := flag.Bool("v", false, "Log batch diagnostics to stderr")

	timeout := flag.Duration("timeout", 1*time.Minute, "The timeout for the batch")

	profile := flag.Bool("profile", false, "Profile the batch")
	profileFile := flag.String("profile-file", "cpu.pprof", "The file to write the CPU profile to")
	memoryProfileFile := flag.String("memory-profile-file", "mem.pprof", "The file to write the memory profile to")

	flag.Parse()

	if (*word == "") == (*file == "") {
		fmt.Println("Exactly one of -word and -file is required")
		os.Exit(1)
	}
	if *sortBy != "alpha" && *sortBy != "length" {
		fmt.Println("-sort must be alpha or length")
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	ligatag.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	rules, err := loadRules(*rulesFile, *enabled)
	if err != nil {
		fmt.Println("Error loading rules:", err)
		os.Exit(1)
	}

	mode := ligatag.CaseAll
	if *exactCase {
		mode = ligatag.CaseExact
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	var words []string
	if *word != "" {
		words = []string{*word}
	} else {
		fmt.Fprintln(os.Stderr, "Loading words from file...")
		if words, err = loadFromFile(ctx, *file); err != nil {
			fmt.Println("Error loading words from file:", err)
			os.Exit(1)
		}
	}

	fmt.Fprintln(os.Stderr, "Words:", len(words))
	fmt.Fprintln(os.Stderr, "Rules:", len(rules))

	var mf *os.File
	if *profile {
		f, err := os.Create(*profileFile)
		if err != nil {
			fmt.Println("Error creating profile file:", err)
			os.Exit(1)
		}
		defer f.Close()

		mf, err = os.Create(*memoryProfileFile)
		if err != nil {
			fmt.Println("Error creating memory profile file:", err)
			os.Exit(1)
		}
		defer mf.Close()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Println("Error starting CPU profile:", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	var runner ligatag.Runner
	results, err := runner.Run(ctx, ligatag.Job{
		Words: words,
		Rules: rules,
		Mode:  mode,
		OnProgress: func(percent int) {
			fmt.Fprintf(os.Stderr, "\rProgress: %3d%%", percent)
		},
		Params: ligatag.BatchParams{
			MaxCodepoints: *maxChars,
			Workers:       *workers,
		},
	})
	fmt.Fprintln(os.Stderr)

	if ligatag.IsCancelled(err) {
		fmt.Fprintln(os.Stderr, "Cancelled:", err)
		os.Exit(130)
	}
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}

	if *search != "" {
		if results, err = ligatag.MatchQuery(results, *search, rules, mode); err != nil {
			fmt.Println("Error searching results:", err)
			os.Exit(1)
		}
	}
	if *unique {
		results = dedupe(results)
	}
	if *sortBy == "length" {
		ligatag.SortByOriginalLength(results, rules)
	} else {
		ligatag.SortAlphabetical(results)
	}

	out := bufio.NewWriter(os.Stdout)
	for _, r := range results {
		fmt.Fprintln(out, r)
	}
	out.Flush()

	fmt.Fprintln(os.Stderr, "Results:", len(results))

	if mf != nil {
		if err := pprof.WriteHeapProfile(mf); err != nil {
			fmt.Println("Error writing memory profile:", err)
		}
	}
}

func loadRules(path, enabled string) (ligatag.Rules, error) {
	table := ruletable.Default()
	if path != "" {
		var err error
		if table, err = ruletable.LoadFile(path); err != nil {
			return nil, err
		}
	}

	var keys []string
	for _, s := range strings.Split(enabled, ",") {
		if s = strings.TrimSpace(s); s != "" {
			keys = append(keys, s)
		}
	}
	return ruletable.Select(table, keys)
}

// loadFromFile reads one word per line, skipping blank lines and '#' comments.
func loadFromFile(ctx context.Context, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		words = append(words, word)
	}
	return words, scanner.Err()
}

func dedupe(results []string) []string {
	seen := make(map[string]bool, len(results))
	out := results[:0]
	for _, r := range results {
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}
