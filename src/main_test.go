package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExecute(t *testing.T) {
	exact := false
	tests := []struct {
		name    string
		req     LigaturesRequest
		want    []string
		wantErr bool
	}{
		{
			name: "single word with selected rules",
			req:  LigaturesRequest{Word: "staff", Rules: []string{"st", "ff"}, MatchAllCases: &exact},
			want: []string{"staﬀ", "ﬆaff", "ﬆaﬀ"},
		},
		{
			name: "blank entries are dropped",
			req:  LigaturesRequest{Words: []string{"  ", "", "oe"}, Rules: []string{"oe", "OE"}},
			want: []string{"OE", "oe", "Œ", "œ"},
		},
		{
			name: "sort by original length",
			req:  LigaturesRequest{Word: "staff", Rules: []string{"st", "ff"}, MatchAllCases: &exact, Sort: "length"},
			want: []string{"staﬀ", "ﬆaff", "ﬆaﬀ"}, // all estimate to five, ties stay alphabetical
		},
		{
			name: "rules selected by glyph",
			req:  LigaturesRequest{Word: "staff", Rules: []string{"ﬆ"}, MatchAllCases: &exact},
			want: []string{"ﬆaff"},
		},
		{
			name: "query keeps matching results",
			req:  LigaturesRequest{Words: []string{"staff", "oe"}, Rules: []string{"ﬆ", "ﬀ", "oe"}, MatchAllCases: &exact, Query: "ff"},
			want: []string{"staﬀ", "ﬆaff", "ﬆaﬀ"},
		},
		{
			name:    "no words",
			req:     LigaturesRequest{Words: []string{" "}},
			wantErr: true,
		},
		{
			name:    "unknown rule",
			req:     LigaturesRequest{Word: "staff", Rules: []string{"zz"}},
			wantErr: true,
		},
		{
			name:    "bad sort",
			req:     LigaturesRequest{Word: "staff", Sort: "random"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := execute(t.Context(), tt.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("execute() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLigaturesHandler(t *testing.T) {
	t.Run("preflight", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ligatures(rec, httptest.NewRequest(http.MethodOptions, "/ligatures", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Access-Control-Allow-Origin = %q", got)
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ligatures(rec, httptest.NewRequest(http.MethodGet, "/ligatures", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rec.Code)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ligatures(rec, httptest.NewRequest(http.MethodPost, "/ligatures", strings.NewReader("{")))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		body := `{"word": "staff", "rules": ["st", "ff"], "matchAllCases": false}`
		rec := httptest.NewRecorder()
		ligatures(rec, httptest.NewRequest(http.MethodPost, "/ligatures", strings.NewReader(body)))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
		}

		var resp LigaturesResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatal(err)
		}
		want := LigaturesResponse{Success: true, Results: []string{"staﬀ", "ﬆaff", "ﬆaﬀ"}}
		if diff := cmp.Diff(want, resp); diff != "" {
			t.Errorf("response mismatch (-want +got):\n%s", diff)
		}
	})
}
