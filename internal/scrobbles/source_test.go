package scrobbles

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeFetcher struct {
	records []Record
	err     error
	calls   int
}

func (f *fakeFetcher) TopAlbums(context.Context, FetchOptions) ([]Record, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

type fakeCache struct {
	entries map[string][]byte
	lastKey string
	lastTTL time.Duration
	getErr  error
	setErr  error
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	payload, ok := f.entries[key]
	return payload, ok, nil
}

func (f *fakeCache) Set(_ context.Context, key string, payload []byte, ttl time.Duration) error {
	f.sets++
	f.lastKey = key
	f.lastTTL = ttl
	if f.setErr != nil {
		return f.setErr
	}
	f.entries[key] = payload
	return nil
}

var testOpts = FetchOptions{User: "listener", Period: "overall", Limit: 100}

func TestSourceFetchPopulatesCache(t *testing.T) {
	fetcher := &fakeFetcher{records: []Record{
		{Artist: "Radiohead", Title: "In Rainbows", PlayCount: 147},
		{Artist: "The Beatles", Title: "Abbey Road", PlayCount: 52},
	}}
	cache := newFakeCache()
	source := NewSource(fetcher, cache, 6*time.Hour, nil)

	records, err := source.Fetch(context.Background(), testOpts, false)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if fetcher.calls != 1 {
		t.Fatalf("expected 1 fetcher call, got %d", fetcher.calls)
	}
	if cache.sets != 1 {
		t.Fatalf("expected 1 cache write, got %d", cache.sets)
	}
	if cache.lastKey != "lastfm:listener:overall:100" {
		t.Fatalf("unexpected cache key %q", cache.lastKey)
	}
	if cache.lastTTL != 6*time.Hour {
		t.Fatalf("unexpected cache ttl %v", cache.lastTTL)
	}

	again, err := source.Fetch(context.Background(), testOpts, false)
	if err != nil {
		t.Fatalf("second Fetch failed: %v", err)
	}
	if fetcher.calls != 1 {
		t.Fatalf("expected cache hit, fetcher called %d times", fetcher.calls)
	}
	if len(again) != 2 || again[0] != records[0] || again[1] != records[1] {
		t.Fatalf("cached records differ: %+v", again)
	}
}

func TestSourceRefreshBypassesCache(t *testing.T) {
	fetcher := &fakeFetcher{records: []Record{{Artist: "Low", Title: "Things We Lost in the Fire", PlayCount: 31}}}
	cache := newFakeCache()
	source := NewSource(fetcher, cache, time.Hour, nil)

	if _, err := source.Fetch(context.Background(), testOpts, false); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if _, err := source.Fetch(context.Background(), testOpts, true); err != nil {
		t.Fatalf("refresh Fetch failed: %v", err)
	}
	if fetcher.calls != 2 {
		t.Fatalf("expected refresh to hit the API, fetcher called %d times", fetcher.calls)
	}
	if cache.sets != 2 {
		t.Fatalf("expected refresh to rewrite the cache, got %d writes", cache.sets)
	}
}

func TestSourceDiscardsUnreadableEntry(t *testing.T) {
	fetcher := &fakeFetcher{records: []Record{{Artist: "Broadcast", Title: "Tender Buttons", PlayCount: 18}}}
	cache := newFakeCache()
	cache.entries[cacheKey(testOpts)] = []byte("{not json")
	source := NewSource(fetcher, cache, time.Hour, nil)

	records, err := source.Fetch(context.Background(), testOpts, false)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if fetcher.calls != 1 {
		t.Fatalf("expected fallthrough to fetcher, called %d times", fetcher.calls)
	}
	if len(records) != 1 || records[0].Title != "Tender Buttons" {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestSourceCacheFailuresAreNonFatal(t *testing.T) {
	fetcher := &fakeFetcher{records: []Record{{Artist: "Stereolab", Title: "Dots and Loops", PlayCount: 44}}}
	cache := newFakeCache()
	cache.getErr = errors.New("disk gone")
	cache.setErr = errors.New("disk still gone")
	source := NewSource(fetcher, cache, time.Hour, nil)

	records, err := source.Fetch(context.Background(), testOpts, false)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
}

func TestSourceNilCache(t *testing.T) {
	fetcher := &fakeFetcher{records: []Record{{Artist: "Can", Title: "Future Days", PlayCount: 27}}}
	source := NewSource(fetcher, nil, time.Hour, nil)

	for i := 0; i < 2; i++ {
		if _, err := source.Fetch(context.Background(), testOpts, false); err != nil {
			t.Fatalf("Fetch %d failed: %v", i, err)
		}
	}
	if fetcher.calls != 2 {
		t.Fatalf("expected every fetch to hit the API, got %d calls", fetcher.calls)
	}
}

func TestSourceFetcherErrorPropagates(t *testing.T) {
	wantErr := errors.New("rate limited")
	fetcher := &fakeFetcher{err: wantErr}
	source := NewSource(fetcher, newFakeCache(), time.Hour, nil)

	if _, err := source.Fetch(context.Background(), testOpts, false); !errors.Is(err, wantErr) {
		t.Fatalf("expected fetcher error, got %v", err)
	}
}

func TestCacheKeySanitizesUser(t *testing.T) {
	key := cacheKey(FetchOptions{User: "Some User!", Period: "7day", Limit: 500})
	if key != "lastfm:some_user:7day:500" {
		t.Fatalf("unexpected cache key %q", key)
	}
}
