package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"google.golang.org/api/iterator"

	"crosswarped.com/ligatag"
	"crosswarped.com/ligatag/internal/ruletable"
)

const maxWords = 500_000

type LigaturesRequest struct {
	Word          string   `json:"word"`
	Words         []string `json:"words"`
	WordScope     string   `json:"wordScope"`
	MatchAllCases *bool    `json:"matchAllCases"`
	MaxChars      int      `json:"maxChars"`
	Sort          string   `json:"sort"`
	// Rules lists the glyphs or sequences of the enabled rules; empty enables the whole table.
	Rules []string `json:"rules"`
	// Query keeps only results containing it, written plainly or with ligatures.
	Query string `json:"query"`
}

type LigaturesResponse struct {
	Success bool     `json:"success"`
	Results []string `json:"results"`
	Error   string   `json:"error,omitempty"`
}

func bigqueryProject() string {
	if p := os.Getenv("BIGQUERY_PROJECT"); p != "" {
		return p
	}
	return "ligatag"
}

func bigqueryTable() string {
	if t := os.Getenv("BIGQUERY_TABLE"); t != "" {
		return t
	}
	return "ligatag.words.all_words"
}

func getWords(ctx context.Context, scope string) ([]string, error) {
	client, err := bigquery.NewClient(ctx, bigqueryProject())
	if err != nil {
		return nil, fmt.Errorf("bigquery.NewClient: %w", err)
	}
	defer client.Close()

	q := client.Query(fmt.Sprintf("SELECT word FROM `%s` WHERE scope = @scope", bigqueryTable()))
	q.Parameters = []bigquery.QueryParameter{{Name: "scope", Value: scope}}
	q.Location = "US"

	job, err := q.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("q.Run: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("job.Wait: %w", err)
	}
	if err := status.Err(); err != nil {
		return nil, fmt.Errorf("status.Err: %w", err)
	}
	it, err := job.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("job.Read: %w", err)
	}

	var words []string
	for {
		var row []bigquery.Value
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("it.Next: %w", err)
		}
		word, ok := row[0].(string)
		if !ok {
			return nil, fmt.Errorf("row[0] is not a string: %v", row[0])
		}
		words = append(words, word)
	}
	return words, nil
}

// collectWords merges the request's words and trims blank entries, which the batch processor
// does not accept.
func collectWords(req LigaturesRequest) []string {
	var words []string
	for _, w := range append([]string{req.Word}, req.Words...) {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}

func execute(ctx context.Context, req LigaturesRequest) ([]string, error) {
	if req.MaxChars < 0 {
		return nil, fmt.Errorf("maxChars must not be negative")
	}
	if req.Sort != "" && req.Sort != "alpha" && req.Sort != "length" {
		return nil, fmt.Errorf("sort must be alpha or length")
	}

	rules, err := ruletable.Select(ruletable.Default(), req.Rules)
	if err != nil {
		return nil, fmt.Errorf("ruletable.Select: %w", err)
	}

	words := collectWords(req)
	if req.WordScope != "" {
		scoped, err := getWords(ctx, req.WordScope)
		if err != nil {
			return nil, fmt.Errorf("getWords: %w", err)
		}
		slog.Info("loaded words", "scope", req.WordScope, "count", len(scoped))
		words = append(words, collectWords(LigaturesRequest{Words: scoped})...)
	}

	if len(words) == 0 {
		return nil, fmt.Errorf("word or words must not be empty")
	}
	if len(words) > maxWords {
		return nil, fmt.Errorf("at most %d words are accepted, got %d", maxWords, len(words))
	}

	mode := ligatag.CaseAll
	if req.MatchAllCases != nil && !*req.MatchAllCases {
		mode = ligatag.CaseExact
	}

	deadline, ok := ctx.Deadline()
	timeout := 1 * time.Minute
	if ok {
		timeout = time.Until(deadline) - 5*time.Second
		slog.Info("setting timeout", "timeout", timeout)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results, err := ligatag.ProcessBatch(ctx, ligatag.Job{
		Words:  words,
		Rules:  rules,
		Mode:   mode,
		Params: ligatag.BatchParams{MaxCodepoints: req.MaxChars},
	})
	if err != nil {
		return nil, err
	}

	if req.Query != "" {
		if results, err = ligatag.MatchQuery(results, req.Query, rules, mode); err != nil {
			return nil, fmt.Errorf("ligatag.MatchQuery: %w", err)
		}
	}

	if req.Sort == "length" {
		ligatag.SortByOriginalLength(results, rules)
	} else {
		ligatag.SortAlphabetical(results)
	}
	return results, nil
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Content-Type", "application/json")
}

func ligatures(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	// Handle OPTIONS request for CORS preflight
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		fmt.Fprintf(w, `{"success": false, "error": "Method %s not allowed"}`, r.Method)
		return
	}

	var req LigaturesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("error parsing JSON body", "err", err)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(LigaturesResponse{
			Success: false,
			Error:   fmt.Sprintf("Invalid JSON: %v", err),
		})
		return
	}

	results, err := execute(r.Context(), req)

	response := LigaturesResponse{
		Success: err == nil,
		Results: results,
	}
	switch {
	case ligatag.IsCancelled(err):
		// Client went away or the deadline passed; nothing to report as a failure.
		response.Error = "Request cancelled before all words were processed"
		w.WriteHeader(http.StatusServiceUnavailable)
	case err != nil:
		slog.Error("execute failed", "err", err)
		response.Error = err.Error()
		w.WriteHeader(http.StatusBadRequest)
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("error marshaling response", "err", err)
	}
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)
	ligatag.SetLogger(logger)

	funcframework.RegisterHTTPFunction("/ligatures", ligatures)

	port := "8080"
	if envPort := os.Getenv("PORT"); envPort != "" {
		port = envPort
	}
	hostname := ""
	if localOnly := os.Getenv("LOCAL_ONLY"); localOnly == "true" {
		hostname = "127.0.0.1"
	}
	if err := funcframework.StartHostPort(hostname, port); err != nil {
		log.Fatalf("funcframework.StartHostPort: %v\n", err)
	}
}
