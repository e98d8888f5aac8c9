package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/alexivanou/wetter-proxy/internal/geocoding"
	"github.com/alexivanou/wetter-proxy/internal/model"
	"go.uber.org/zap"
)

const (
	DefaultDebounce = 300 * time.Millisecond
	MinQueryLength  = 2

	FallbackErrorMessage = "failed to fetch weather data"
	NetworkErrorMessage  = "network error"
)

// Backend is what the controller needs from the proxy
type Backend interface {
	Weather(ctx context.Context, city string) (*model.Weather, error)
	Suggest(ctx context.Context, query string) ([]model.Suggestion, error)
}

// Phase is the coarse lookup state derived from State
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseShowingResult
	PhaseShowingError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseShowingResult:
		return "showing-result"
	case PhaseShowingError:
		return "showing-error"
	default:
		return "idle"
	}
}

// State is a snapshot of everything the UI renders
type State struct {
	Text        string
	Suggestions []model.Suggestion
	Weather     *model.Weather
	Loading     bool
	Error       string
}

func (s State) Phase() Phase {
	switch {
	case s.Loading:
		return PhaseLoading
	case s.Error != "":
		return PhaseShowingError
	case s.Weather != nil:
		return PhaseShowingResult
	default:
		return PhaseIdle
	}
}

// Option configures a Controller
type Option func(*Controller)

func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.debounce = d }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithOnChange registers a callback invoked with a fresh snapshot after every state change.
// It runs outside the controller lock, possibly from a timer goroutine.
func WithOnChange(fn func(State)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// Controller drives the search form: debounced autocomplete plus weather lookup.
// Every request carries a sequence number; only the latest one may touch the state.
type Controller struct {
	backend  Backend
	debounce time.Duration
	onChange func(State)
	logger   *zap.Logger

	mu            sync.Mutex
	state         State
	timer         *time.Timer
	suggestSeq    uint64
	cancelSuggest context.CancelFunc
	searchSeq     uint64
	cancelSearch  context.CancelFunc
	closed        bool
}

func NewController(backend Backend, opts ...Option) *Controller {
	c := &Controller{
		backend:  backend,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// State returns a snapshot of the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Input handles a change of the input text
func (c *Controller) Input(text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state.Text = text
	c.state.Weather = nil
	c.invalidateSuggestLocked()

	query := strings.TrimSpace(text)
	if utf8.RuneCountInString(query) >= MinQueryLength {
		seq := c.suggestSeq
		c.timer = time.AfterFunc(c.debounce, func() { c.runSuggest(seq, query) })
	} else {
		c.state.Suggestions = nil
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// Select picks the i-th suggestion and looks up its weather
func (c *Controller) Select(ctx context.Context, i int) error {
	c.mu.Lock()
	if i < 0 || i >= len(c.state.Suggestions) {
		n := len(c.state.Suggestions)
		c.mu.Unlock()
		return fmt.Errorf("no suggestion %d (have %d)", i, n)
	}
	s := c.state.Suggestions[i]
	c.mu.Unlock()

	c.SelectSuggestion(ctx, s)
	return nil
}

// SelectSuggestion sets the text to the suggested city and looks up its weather
func (c *Controller) SelectSuggestion(ctx context.Context, s model.Suggestion) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state.Text = s.City
	c.state.Suggestions = nil
	c.invalidateSuggestLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	c.Search(ctx)
}

// Search looks up the weather for the current text. It blocks until the
// request finishes or is superseded by a newer Search.
func (c *Controller) Search(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.searchSeq++
	seq := c.searchSeq
	if c.cancelSearch != nil {
		c.cancelSearch()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	c.cancelSearch = cancel
	c.state.Loading = true
	c.state.Error = ""
	city := c.state.Text
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)

	result, err := c.backend.Weather(reqCtx, city)
	cancel()

	c.mu.Lock()
	if seq != c.searchSeq {
		c.mu.Unlock()
		c.logger.Debug("discarding superseded weather response", zap.String("city", city))
		return
	}
	c.cancelSearch = nil

	var apiErr *APIError
	switch {
	case err == nil:
		c.state.Weather = result
	case errors.As(err, &apiErr):
		c.state.Weather = nil
		c.state.Error = apiErr.Message
		if c.state.Error == "" {
			c.state.Error = FallbackErrorMessage
		}
	default:
		c.logger.Debug("weather request failed", zap.String("city", city), zap.Error(err))
		c.state.Weather = nil
		c.state.Error = NetworkErrorMessage
	}
	c.state.Loading = false
	snap = c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// Close stops the debounce timer and cancels in-flight requests
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.invalidateSuggestLocked()
	if c.cancelSearch != nil {
		c.cancelSearch()
		c.cancelSearch = nil
	}
}

func (c *Controller) runSuggest(seq uint64, query string) {
	c.mu.Lock()
	if seq != c.suggestSeq || c.closed {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	ctx, cancel := context.WithCancel(context.Background())
	c.cancelSuggest = cancel
	c.mu.Unlock()

	results, err := c.backend.Suggest(ctx, query)
	cancel()

	c.mu.Lock()
	if seq != c.suggestSeq {
		c.mu.Unlock()
		return
	}
	c.cancelSuggest = nil
	if err != nil {
		c.logger.Debug("suggest request failed", zap.String("query", query), zap.Error(err))
		c.state.Suggestions = nil
	} else {
		c.state.Suggestions = geocoding.Dedupe(results)
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// invalidateSuggestLocked stops the pending timer and makes any in-flight suggest stale
func (c *Controller) invalidateSuggestLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancelSuggest != nil {
		c.cancelSuggest()
		c.cancelSuggest = nil
	}
	c.suggestSeq++
}

func (c *Controller) snapshotLocked() State {
	snap := c.state
	if c.state.Suggestions != nil {
		snap.Suggestions = append([]model.Suggestion(nil), c.state.Suggestions...)
	}
	if c.state.Weather != nil {
		w := *c.state.Weather
		snap.Weather = &w
	}
	return snap
}

func (c *Controller) notify(s State) {
	if c.onChange != nil {
		c.onChange(s)
	}
}
