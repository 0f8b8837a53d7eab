// Package schedule serves the upstream race calendar through a TTL-bounded
// cache with ordered endpoint fallback.
package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrUnavailable is returned when every configured endpoint failed. An
// existing stale cache entry is retained, not evicted.
var ErrUnavailable = errors.New("schedule unavailable")

// Entry is one normalized race fixture.
type Entry struct {
	Round    int
	Name     string
	Circuit  string
	Locality string
	Country  string
	Date     time.Time
	// StartAt combines date and the upstream start time when one is given.
	StartAt time.Time
}

// DefaultEndpoints are ergast-style bases tried in priority order.
var DefaultEndpoints = []string{
	"https://api.jolpi.ca/ergast/f1",
	"https://ergast.com/api/f1",
}

const (
	// DefaultTTL is the freshness window; older entries count as absent.
	DefaultTTL = 24 * time.Hour

	// requestTimeout bounds each individual upstream call.
	requestTimeout = 10 * time.Second
)

type cacheEntry struct {
	fetchedAt time.Time
	entries   []Entry
}

// Service fetches and caches race fixtures. One cache entry per logical
// query: "next" for the next fixture, "season:<year>" per season.
type Service struct {
	client    *http.Client
	endpoints []string
	ttl       time.Duration

	mu       sync.Mutex
	cache    map[string]cacheEntry
	inflight map[string]chan struct{}

	now func() time.Time
}

func NewService(endpoints []string, ttl time.Duration) *Service {
	if len(endpoints) == 0 {
		endpoints = DefaultEndpoints
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		client:    &http.Client{Timeout: requestTimeout},
		endpoints: endpoints,
		ttl:       ttl,
		cache:     make(map[string]cacheEntry),
		inflight:  make(map[string]chan struct{}),
		now:       time.Now,
	}
}

// GetNext returns the next upcoming fixture, from cache when fresh.
func (s *Service) GetNext(ctx context.Context) (*Entry, error) {
	entries, err := s.lookup(ctx, "next", "current/next.json")
	if err != nil {
		return nil, err
	}
	return &entries[0], nil
}

// GetSchedule returns the full fixture list for a season, from cache when fresh.
func (s *Service) GetSchedule(ctx context.Context, season int) ([]Entry, error) {
	return s.lookup(ctx, "season:"+strconv.Itoa(season), strconv.Itoa(season)+".json")
}

// LastKnownSchedule returns the cached season data regardless of freshness.
func (s *Service) LastKnownSchedule(season int) ([]Entry, bool) {
	return s.lastKnown("season:" + strconv.Itoa(season))
}

// LastKnownNext returns the cached next fixture regardless of freshness.
func (s *Service) LastKnownNext() (*Entry, bool) {
	entries, ok := s.lastKnown("next")
	if !ok {
		return nil, false
	}
	return &entries[0], true
}

func (s *Service) lastKnown(key string) ([]Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.cache[key]
	if !ok || len(entry.entries) == 0 {
		return nil, false
	}
	return entry.entries, true
}

// lookup serves the key from a fresh cache entry, or refreshes it through
// the endpoint chain. Concurrent callers for the same key share one fetch.
func (s *Service) lookup(ctx context.Context, key, path string) ([]Entry, error) {
	for {
		s.mu.Lock()
		if entry, ok := s.cache[key]; ok && s.now().Sub(entry.fetchedAt) < s.ttl {
			s.mu.Unlock()
			return entry.entries, nil
		}
		if wait, ok := s.inflight[key]; ok {
			s.mu.Unlock()
			select {
			case <-wait:
				continue // re-check the cache the flight filled
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		done := make(chan struct{})
		s.inflight[key] = done
		s.mu.Unlock()

		entries, err := s.fetch(ctx, path)

		s.mu.Lock()
		delete(s.inflight, key)
		if err == nil {
			s.cache[key] = cacheEntry{fetchedAt: s.now(), entries: entries}
		}
		s.mu.Unlock()
		close(done)

		if err != nil {
			return nil, err
		}
		return entries, nil
	}
}

// fetch walks the endpoint chain in priority order. The first well-formed,
// non-empty response wins; an empty fixture list counts as endpoint failure.
func (s *Service) fetch(ctx context.Context, path string) ([]Entry, error) {
	for _, base := range s.endpoints {
		entries, err := s.fetchOne(ctx, base, path)
		if err != nil {
			log.Printf("schedule endpoint %s: %v", base, err)
			continue
		}
		return entries, nil
	}
	return nil, ErrUnavailable
}

func (s *Service) fetchOne(ctx context.Context, base, path string) ([]Entry, error) {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	url := strings.TrimSuffix(base, "/") + "/" + path
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch: unexpected status %d", resp.StatusCode)
	}

	var payload ergastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	entries := normalize(payload)
	if len(entries) == 0 {
		return nil, errors.New("no fixtures in response")
	}
	return entries, nil
}

// ergastResponse mirrors the upstream JSON shape.
type ergastResponse struct {
	MRData struct {
		RaceTable struct {
			Races []struct {
				Round    string `json:"round"`
				RaceName string `json:"raceName"`
				Date     string `json:"date"`
				Time     string `json:"time"`
				Circuit  struct {
					CircuitName string `json:"circuitName"`
					Location    struct {
						Locality string `json:"locality"`
						Country  string `json:"country"`
					} `json:"Location"`
				} `json:"Circuit"`
			} `json:"Races"`
		} `json:"RaceTable"`
	} `json:"MRData"`
}

func normalize(payload ergastResponse) []Entry {
	races := payload.MRData.RaceTable.Races
	entries := make([]Entry, 0, len(races))
	for _, race := range races {
		date, err := time.Parse("2006-01-02", race.Date)
		if err != nil {
			continue
		}
		round, _ := strconv.Atoi(race.Round)
		entry := Entry{
			Round:    round,
			Name:     race.RaceName,
			Circuit:  race.Circuit.CircuitName,
			Locality: race.Circuit.Location.Locality,
			Country:  race.Circuit.Location.Country,
			Date:     date,
			StartAt:  date,
		}
		if race.Time != "" {
			if t, err := time.Parse("15:04:05Z", race.Time); err == nil {
				entry.StartAt = time.Date(date.Year(), date.Month(), date.Day(),
					t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
			}
		}
		entries = append(entries, entry)
	}
	return entries
}
