package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"llm-investment-agent/internal/types"
)

const searchPage = `<html><body>
<article>
  <h3><a href="./articles/abc">IonQ &amp; partner announce record growth</a></h3>
  <div class="vr1PYe">Reuters</div>
  <time datetime="2024-05-01T10:00:00Z"></time>
</article>
<article>
  <h4><a href="https://example.com/b">Analyst   downgrades <b>IonQ</b></a></h4>
</article>
<article><p>no title here</p></article>
</body></html>`

func TestScraperCompanyNews(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(searchPage))
	}))
	defer srv.Close()

	s := NewScraper(ScraperConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, map[string]string{"IONQ": "IonQ"})
	items, err := s.CompanyNews(context.Background(), "IONQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotQuery != "IonQ stock" {
		t.Errorf("Expected search by company name, got %q", gotQuery)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[0].Headline != "IonQ & partner announce record growth" {
		t.Errorf("Unexpected headline %q", items[0].Headline)
	}
	if items[0].Source != "Reuters" {
		t.Errorf("Expected source Reuters, got %q", items[0].Source)
	}
	if items[0].URL != srv.URL+"/articles/abc" {
		t.Errorf("Expected relative link to be made absolute, got %q", items[0].URL)
	}
	if items[0].Datetime != 1714557600 {
		t.Errorf("Expected parsed datetime, got %d", items[0].Datetime)
	}
	if items[1].Headline != "Analyst downgrades IonQ" {
		t.Errorf("Expected whitespace collapsed, got %q", items[1].Headline)
	}
	if items[1].Source != "GoogleNews" {
		t.Errorf("Expected fallback source, got %q", items[1].Source)
	}
}

func TestScraperMaxItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchPage))
	}))
	defer srv.Close()

	s := NewScraper(ScraperConfig{BaseURL: srv.URL, MaxItems: 1}, nil)
	items, err := s.CompanyNews(context.Background(), "IONQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("Expected 1 item, got %d", len(items))
	}
}

func TestScraperHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	s := NewScraper(ScraperConfig{BaseURL: srv.URL}, nil)
	if _, err := s.CompanyNews(context.Background(), "IBM"); err == nil {
		t.Error("Expected error for forbidden response")
	}
}

func TestCleanText(t *testing.T) {
	cases := map[string]string{
		"plain headline":                    "plain headline",
		"  spaced \n\t out  ":               "spaced out",
		"<p>IBM <b>beats</b> estimates</p>": "IBM beats estimates",
		"AT&amp;T &amp; IBM":                "AT&T & IBM",
		"":                                  "",
	}
	for in, want := range cases {
		if got := CleanText(in); got != want {
			t.Errorf("CleanText(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCleanNeverNil(t *testing.T) {
	out := Clean(nil)
	if out == nil {
		t.Fatal("Expected non-nil slice")
	}

	in := []types.NewsItem{{Headline: "<i>x</i>", Summary: "a  b"}}
	out = Clean(in)
	if out[0].Headline != "x" || out[0].Summary != "a b" {
		t.Errorf("Unexpected cleaned item %+v", out[0])
	}
	if !strings.Contains(in[0].Headline, "<i>") {
		t.Error("Expected input to be left untouched")
	}
}
