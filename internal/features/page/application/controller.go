package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"codepair/internal/features/page/domain"

	"go.uber.org/zap"
)

// ErrSuperseded is returned by Submit and Explain when a newer action (or a
// cancellation) made the response stale; the page was not updated.
var ErrSuperseded = errors.New("superseded by a newer request")

// GenerationAPI is the remote side of the page.
type GenerationAPI interface {
	Generate(ctx context.Context, prompt, language string) (*domain.GenerationResult, error)
	Explain(ctx context.Context, recursiveCode, iterativeCode string) (string, error)
}

// Highlighter performs the highlighting pass for one region.
type Highlighter interface {
	Highlight(class, code string) (string, error)
}

// Clipboard is the system clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

// Frame is what the view draws: the state plus the output of the last
// highlighting pass per region.
type Frame struct {
	State       domain.State
	Highlighted map[domain.Region]string
}

// View renders frames. Render is called with the controller lock held and
// must not call back into the controller.
type View interface {
	Render(frame Frame)
}

// Option configures a Controller.
type Option func(*Controller)

// WithHighlighter sets the highlighting pass. Without one, regions are shown as plain text.
func WithHighlighter(h Highlighter) Option {
	return func(c *Controller) { c.highlighter = h }
}

// WithClipboard sets the clipboard used by Copy.
func WithClipboard(cb Clipboard) Option {
	return func(c *Controller) { c.clipboard = cb }
}

// WithCopyResetDelay overrides how long copy buttons keep their confirmation label.
func WithCopyResetDelay(d time.Duration) Option {
	return func(c *Controller) { c.copyResetDelay = d }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

type copyTimer struct {
	timer *time.Timer
	seq   uint64
}

// Controller mediates between user actions and the two remote calls and
// keeps the page state consistent with the latest outcome. At most one
// generation and one explanation are in flight; a new one cancels the old.
type Controller struct {
	api            GenerationAPI
	view           View
	highlighter    Highlighter
	clipboard      Clipboard
	copyResetDelay time.Duration
	logger         *zap.Logger

	mu            sync.Mutex
	state         domain.State
	highlighted   map[domain.Region]string
	generationSeq uint64
	explainSeq    uint64
	cancelGen     context.CancelFunc
	cancelExplain context.CancelFunc
	copyTimers    map[domain.Region]*copyTimer
	copySeq       uint64
	closed        bool
}

// NewController creates a controller and renders the initial state.
func NewController(api GenerationAPI, view View, opts ...Option) *Controller {
	c := &Controller{
		api:            api,
		view:           view,
		copyResetDelay: domain.CopyResetDelay,
		logger:         zap.NewNop(),
		state:          domain.InitialState(),
		highlighted:    map[domain.Region]string{},
		copyTimers:     map[domain.Region]*copyTimer{},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.mu.Lock()
	c.renderLocked()
	c.mu.Unlock()
	return c
}

// State returns the current page state.
func (c *Controller) State() domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit sends one generation request for prompt and language and blocks
// until it settles. The returned error is the one shown in the banner.
func (c *Controller) Submit(ctx context.Context, prompt, language string) error {
	c.mu.Lock()
	if c.cancelGen != nil {
		c.cancelGen()
	}
	c.generationSeq++
	id := c.generationSeq
	reqCtx, cancel := context.WithCancel(ctx)
	c.cancelGen = cancel
	c.state = domain.BeginGeneration(c.state, id)
	c.renderLocked()
	c.mu.Unlock()
	defer cancel()

	c.logger.Debug("generation started", zap.Uint64("request_id", id), zap.String("language", language))
	result, err := c.api.Generate(reqCtx, prompt, language)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		next, ok := domain.FailGeneration(c.state, id, err.Error())
		if !ok {
			c.logger.Debug("stale generation failure ignored", zap.Uint64("request_id", id), zap.Error(err))
			return ErrSuperseded
		}
		c.state = next
		c.renderLocked()
		return err
	}

	next, ok := domain.CompleteGeneration(c.state, id, *result, language)
	if !ok {
		c.logger.Debug("stale generation result ignored", zap.Uint64("request_id", id))
		return ErrSuperseded
	}
	c.state = next
	c.highlightLocked()
	c.renderLocked()
	return nil
}

// CancelGeneration abandons the in-flight generation and returns the submit
// control to idle.
func (c *Controller) CancelGeneration() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelGen != nil {
		c.cancelGen()
		c.cancelGen = nil
	}
	c.state = domain.CancelGeneration(c.state)
	c.renderLocked()
}

// Explain sends the two displayed snippets, read verbatim at call time, and
// blocks until the explanation settles.
func (c *Controller) Explain(ctx context.Context) error {
	c.mu.Lock()
	recursiveCode := domain.RegionText(c.state, domain.RegionRecursive)
	iterativeCode := domain.RegionText(c.state, domain.RegionIterative)
	if c.cancelExplain != nil {
		c.cancelExplain()
	}
	c.explainSeq++
	id := c.explainSeq
	reqCtx, cancel := context.WithCancel(ctx)
	c.cancelExplain = cancel
	c.state = domain.BeginExplanation(c.state, id)
	c.renderLocked()
	c.mu.Unlock()
	defer cancel()

	text, err := c.api.Explain(reqCtx, recursiveCode, iterativeCode)

	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		next domain.State
		ok   bool
	)
	if err != nil {
		next, ok = domain.FailExplanation(c.state, id, err.Error())
	} else {
		next, ok = domain.CompleteExplanation(c.state, id, text)
	}
	if !ok {
		return ErrSuperseded
	}
	c.state = next
	c.renderLocked()
	return err
}

// Copy writes the text of region to the clipboard and relabels its button,
// "Copied!" on success and "Copy failed" otherwise. The label returns to
// "Copy" after the reset delay; clicking again restarts that button's timer.
func (c *Controller) Copy(region domain.Region) error {
	c.mu.Lock()
	text := domain.RegionText(c.state, region)
	c.mu.Unlock()

	var err error
	if c.clipboard == nil {
		err = errors.New("no clipboard configured")
	} else {
		err = c.clipboard.WriteAll(text)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return err
	}

	label := domain.CopiedLabel
	if err != nil {
		label = domain.CopyFailedLabel
		c.logger.Warn("clipboard write failed", zap.String("region", string(region)), zap.Error(err))
	}
	c.state = domain.SetCopyLabel(c.state, region, label)
	c.renderLocked()
	c.scheduleCopyResetLocked(region)
	return err
}

// Close stops pending label timers and cancels in-flight requests.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for region, t := range c.copyTimers {
		t.timer.Stop()
		delete(c.copyTimers, region)
	}
	if c.cancelGen != nil {
		c.cancelGen()
	}
	if c.cancelExplain != nil {
		c.cancelExplain()
	}
}

func (c *Controller) scheduleCopyResetLocked(region domain.Region) {
	if prev, ok := c.copyTimers[region]; ok {
		prev.timer.Stop()
	}
	c.copySeq++
	seq := c.copySeq
	c.copyTimers[region] = &copyTimer{
		seq: seq,
		timer: time.AfterFunc(c.copyResetDelay, func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			current, ok := c.copyTimers[region]
			if c.closed || !ok || current.seq != seq {
				return
			}
			delete(c.copyTimers, region)
			c.state = domain.SetCopyLabel(c.state, region, domain.CopyLabel)
			c.renderLocked()
		}),
	}
}

// highlightLocked runs the highlighting pass over every region.
func (c *Controller) highlightLocked() {
	c.highlighted = make(map[domain.Region]string, len(domain.Regions))
	for _, region := range domain.Regions {
		text := domain.RegionText(c.state, region)
		if c.highlighter == nil {
			c.highlighted[region] = text
			continue
		}
		out, err := c.highlighter.Highlight(c.state.Generation.HighlightClass, text)
		if err != nil {
			c.logger.Warn("highlighting failed, showing plain text",
				zap.String("region", string(region)), zap.Error(err))
			out = text
		}
		c.highlighted[region] = out
	}
}

func (c *Controller) renderLocked() {
	if c.view == nil {
		return
	}
	highlighted := make(map[domain.Region]string, len(c.highlighted))
	for k, v := range c.highlighted {
		highlighted[k] = v
	}
	c.view.Render(Frame{State: c.state, Highlighted: highlighted})
}
