package musicbrainz

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"earmark/internal/config"
	"earmark/internal/testsupport"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := testsupport.NewConfig(t, func(c *config.Config) {
		c.MusicBrainz.BaseURL = srv.URL
	})
	client := New(cfg, nil, nil)
	client.retryDelay = 0
	client.rateEvery = 0
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, body string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprint(w, body); err != nil {
		t.Errorf("write response: %v", err)
	}
}

func TestSearchPrefersExactTitleMatch(t *testing.T) {
	var gotAgent, gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		gotQuery = r.URL.Query().Get("query")
		writeJSON(t, w, `{"release-groups": [
			{"id": "rg-live", "title": "Discovery Live", "primary-type": "Album",
			 "artist-credit": [{"name": "Daft Punk"}]},
			{"id": "rg-studio", "title": "Discovery", "primary-type": "Album",
			 "artist-credit": [{"name": "Daft Punk"}]}
		]}`)
	})

	result, err := client.Search(context.Background(), "Daft Punk", "Discovery")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.MBID != "rg-studio" {
		t.Errorf("picked %s, want the exact title match", result.MBID)
	}
	if result.Confidence != ConfidenceExact {
		t.Errorf("confidence = %v, want %v", result.Confidence, ConfidenceExact)
	}
	if result.Artist != "Daft Punk" {
		t.Errorf("artist = %q", result.Artist)
	}
	if gotAgent == "" {
		t.Error("request carried no User-Agent header")
	}
	if want := `releasegroup:"Discovery" AND artist:"Daft Punk"`; gotQuery != want {
		t.Errorf("query = %q, want %q", gotQuery, want)
	}
}

func TestSearchAcceptsSubstringOverlap(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, `{"release-groups": [
			{"id": "rg-1", "title": "Random Access Memories (Drumless)", "primary-type": "Album"}
		]}`)
	})

	result, err := client.Search(context.Background(), "Daft Punk", "Random Access Memories")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.MBID != "rg-1" || result.Confidence != ConfidencePartial {
		t.Errorf("got %s at %v, want rg-1 at %v", result.MBID, result.Confidence, ConfidencePartial)
	}
}

func TestSearchFallsBackToFirstResult(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, `{"release-groups": [
			{"id": "rg-a", "title": "Homework", "primary-type": "Album"},
			{"id": "rg-b", "title": "Human After All", "primary-type": "Album"}
		]}`)
	})

	result, err := client.Search(context.Background(), "Daft Punk", "Discovery")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.MBID != "rg-a" || result.Confidence != ConfidencePartial {
		t.Errorf("got %s at %v, want the first result at %v", result.MBID, result.Confidence, ConfidencePartial)
	}
}

func TestSearchNoResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, `{"release-groups": []}`)
	})

	_, err := client.Search(context.Background(), "Nobody", "Nothing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSearchEmptyInputSkipsRequest(t *testing.T) {
	requests := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
	})

	if _, err := client.Search(context.Background(), "", "Discovery"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if requests != 0 {
		t.Errorf("made %d requests for empty input", requests)
	}
}

func TestSearchFillsTypesViaLookup(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/release-group/") {
			writeJSON(t, w, `{"id": "rg-ep", "title": "Slow Rush", "primary-type": "EP",
				"secondary-types": ["Remix"]}`)
			return
		}
		writeJSON(t, w, `{"release-groups": [
			{"id": "rg-ep", "title": "Slow Rush", "artist-credit": [{"name": "Tame Impala"}]}
		]}`)
	})

	result, err := client.Search(context.Background(), "Tame Impala", "Slow Rush")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.PrimaryType != "EP" {
		t.Errorf("primary type = %q, want EP from the follow-up lookup", result.PrimaryType)
	}
	if result.Confidence != ConfidenceExact {
		t.Errorf("confidence = %v, want the search tier to stick", result.Confidence)
	}
	if result.Artist != "Tame Impala" {
		t.Errorf("artist = %q, want the search credit kept", result.Artist)
	}
}

func TestLookup(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/release-group/f5093c06" {
			t.Errorf("path = %s", r.URL.Path)
		}
		writeJSON(t, w, `{"id": "f5093c06", "title": "Random Access Memories",
			"primary-type": "Album", "secondary-types": []}`)
	})

	result, err := client.Lookup(context.Background(), "f5093c06")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if result.Confidence != ConfidenceLookup {
		t.Errorf("confidence = %v, want %v", result.Confidence, ConfidenceLookup)
	}
	if result.PrimaryType != "Album" {
		t.Errorf("primary type = %q", result.PrimaryType)
	}
}

func TestLookupNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	_, err := client.Lookup(context.Background(), "stale-mbid")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRetriesServerErrors(t *testing.T) {
	requests := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		writeJSON(t, w, `{"release-groups": [{"id": "rg-1", "title": "Dummy", "primary-type": "Album"}]}`)
	})

	result, err := client.Search(context.Background(), "Portishead", "Dummy")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if requests != 2 {
		t.Errorf("made %d requests, want a retry after the first failure", requests)
	}
	if result.MBID != "rg-1" {
		t.Errorf("picked %s", result.MBID)
	}
}

func TestSearchReadsCache(t *testing.T) {
	requests := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
	})
	client.cache = &fakeCache{entries: map[string][]byte{
		searchCacheKey("Portishead", "Dummy"): []byte(`{"release-groups": [
			{"id": "rg-cached", "title": "Dummy", "primary-type": "Album"}
		]}`),
	}}

	result, err := client.Search(context.Background(), "Portishead", "Dummy")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if requests != 0 {
		t.Errorf("made %d requests despite a cached response", requests)
	}
	if result.MBID != "rg-cached" {
		t.Errorf("picked %s, want the cached group", result.MBID)
	}
}

func TestSearchStoresResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, `{"release-groups": [{"id": "rg-1", "title": "Dummy", "primary-type": "Album"}]}`)
	})
	cache := &fakeCache{entries: map[string][]byte{}}
	client.cache = cache

	if _, err := client.Search(context.Background(), "Portishead", "Dummy"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	key := searchCacheKey("Portishead", "Dummy")
	if _, ok := cache.entries[key]; !ok {
		t.Fatalf("response not stored under %s, cache holds %d entries", key, len(cache.entries))
	}
	if want := 720 * time.Hour; cache.lastTTL != want {
		t.Errorf("ttl = %v, want %v", cache.lastTTL, want)
	}
}

func TestSearchCacheKeyDistinguishesNonLatinNames(t *testing.T) {
	a := searchCacheKey("フィッシュマンズ", "Long Season")
	b := searchCacheKey("スーパーカー", "Long Season")
	if a == b {
		t.Fatalf("distinct artists share cache key %s", a)
	}
}

type fakeCache struct {
	entries map[string][]byte
	lastTTL time.Duration
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	payload, ok := f.entries[key]
	return payload, ok, nil
}

func (f *fakeCache) Set(_ context.Context, key string, payload []byte, ttl time.Duration) error {
	f.entries[key] = payload
	f.lastTTL = ttl
	return nil
}
