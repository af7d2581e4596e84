package session

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/fr4nk3nst1ner/hwenhancer/internal/models"
)

// Storage keys shared with the browser extension's sessionStorage layout
const (
	KeyFetching = "hw_is_fetching"
	KeyItems    = "hw_jobs_data"
)

// ErrCorruptState is returned when the persisted item sequence is not valid JSON
var ErrCorruptState = errors.New("persisted session data is corrupt")

// State is the accumulation state of a crawl: the fetching flag and the
// ordered sequence of scraped items.
type State struct {
	backend Backend
	log     *zap.SugaredLogger
}

// NewState wraps a backend. A nil logger disables logging.
func NewState(backend Backend, log *zap.SugaredLogger) *State {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &State{backend: backend, log: log}
}

// Fetching reports whether a multi-page crawl is in progress
func (s *State) Fetching(ctx context.Context) (bool, error) {
	val, _, err := s.backend.Get(ctx, KeyFetching)
	if err != nil {
		return false, err
	}
	return val == "true", nil
}

// SetFetching persists the crawl flag
func (s *State) SetFetching(ctx context.Context, fetching bool) error {
	val := "false"
	if fetching {
		val = "true"
	}
	s.log.Debugw("Setting fetch flag", "fetching", fetching)
	return s.backend.Set(ctx, KeyFetching, val)
}

// Items returns the accumulated sequence. A missing key is an empty sequence.
func (s *State) Items(ctx context.Context) ([]models.ScrapedItem, error) {
	val, ok, err := s.backend.Get(ctx, KeyItems)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return decodeItems(val)
}

// ResetItems replaces the accumulated sequence with an empty one
func (s *State) ResetItems(ctx context.Context) error {
	return s.backend.Set(ctx, KeyItems, "[]")
}

// ClearItems removes the accumulated sequence entirely
func (s *State) ClearItems(ctx context.Context) error {
	return s.backend.Delete(ctx, KeyItems)
}

// Discard drops the accumulated sequence and stops a crawl in progress, so
// the next page load starts idle instead of resuming into an empty sequence.
func (s *State) Discard(ctx context.Context) error {
	if err := s.SetFetching(ctx, false); err != nil {
		return err
	}
	return s.ClearItems(ctx)
}

// Append adds items to the end of the persisted sequence as one
// read-modify-write and returns the new total.
func (s *State) Append(ctx context.Context, items []models.ScrapedItem) (int, error) {
	total := 0
	err := s.backend.Update(ctx, KeyItems, func(old string, ok bool) (string, error) {
		var stored []models.ScrapedItem
		if ok {
			var err error
			if stored, err = decodeItems(old); err != nil {
				return "", err
			}
		}
		stored = append(stored, items...)
		total = len(stored)
		return encodeItems(stored)
	})
	if err != nil {
		return 0, err
	}
	s.log.Debugw("Appended items", "count", len(items), "total", total)
	return total, nil
}

// End clears the whole session, as closing the browser tab would
func (s *State) End(ctx context.Context) error {
	return s.backend.Clear(ctx)
}

func decodeItems(val string) ([]models.ScrapedItem, error) {
	if val == "" {
		return nil, nil
	}
	var items []models.ScrapedItem
	if err := json.Unmarshal([]byte(val), &items); err != nil {
		return nil, errors.WithHint(errors.Mark(errors.Wrap(err, "failed to decode "+KeyItems), ErrCorruptState),
			"run `hwenhancer reset` to discard the stored listings and stop the crawl")
	}
	return items, nil
}

func encodeItems(items []models.ScrapedItem) (string, error) {
	if items == nil {
		items = []models.ScrapedItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode "+KeyItems)
	}
	return string(data), nil
}
