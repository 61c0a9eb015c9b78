package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"codepair/internal/features/page/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type generateCall struct {
	prompt   string
	language string
}

type fakeAPI struct {
	mu           sync.Mutex
	generate     func(ctx context.Context, prompt, language string) (*domain.GenerationResult, error)
	explain      func(ctx context.Context, recursiveCode, iterativeCode string) (string, error)
	generateArgs []generateCall
	explainArgs  [][2]string
}

func (f *fakeAPI) Generate(ctx context.Context, prompt, language string) (*domain.GenerationResult, error) {
	f.mu.Lock()
	f.generateArgs = append(f.generateArgs, generateCall{prompt: prompt, language: language})
	fn := f.generate
	f.mu.Unlock()
	return fn(ctx, prompt, language)
}

func (f *fakeAPI) Explain(ctx context.Context, recursiveCode, iterativeCode string) (string, error) {
	f.mu.Lock()
	f.explainArgs = append(f.explainArgs, [2]string{recursiveCode, iterativeCode})
	fn := f.explain
	f.mu.Unlock()
	return fn(ctx, recursiveCode, iterativeCode)
}

func returning(result domain.GenerationResult) func(context.Context, string, string) (*domain.GenerationResult, error) {
	return func(context.Context, string, string) (*domain.GenerationResult, error) {
		return &result, nil
	}
}

type recordingView struct {
	mu     sync.Mutex
	frames []Frame
}

func (v *recordingView) Render(frame Frame) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.frames = append(v.frames, frame)
}

func (v *recordingView) last() Frame {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frames[len(v.frames)-1]
}

func (v *recordingView) phases() []domain.GenerationPhase {
	v.mu.Lock()
	defer v.mu.Unlock()
	var out []domain.GenerationPhase
	for _, f := range v.frames {
		out = append(out, f.State.Generation.Phase)
	}
	return out
}

type taggingHighlighter struct{}

func (taggingHighlighter) Highlight(class, code string) (string, error) {
	return "<" + class + ">" + code, nil
}

type fakeClipboard struct {
	mu   sync.Mutex
	text string
	err  error
}

func (c *fakeClipboard) WriteAll(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

func TestSubmit_Success(t *testing.T) {
	api := &fakeAPI{generate: returning(domain.GenerationResult{
		RecursiveSolution: "def f(n):\n    return f(n - 1)\n",
		IterativeSolution: "def g(n): pass",
	})}
	view := &recordingView{}
	c := NewController(api, view, WithHighlighter(taggingHighlighter{}))
	defer c.Close()

	require.NoError(t, c.Submit(context.Background(), "count down", "Python"))

	require.Len(t, api.generateArgs, 1)
	assert.Equal(t, generateCall{prompt: "count down", language: "Python"}, api.generateArgs[0])

	s := c.State()
	assert.Equal(t, domain.GenerationShowingResults, s.Generation.Phase)
	assert.Equal(t, "def f(n):\n    return f(n - 1)\n", s.Generation.Recursive)
	assert.Equal(t, "def g(n): pass", s.Generation.Iterative)
	assert.Equal(t, "language-python", s.Generation.HighlightClass)
	assert.True(t, s.Generation.ResultsVisible)
	assert.True(t, s.Generation.ExplainVisible)
	assert.False(t, s.Generation.LoaderVisible)
	assert.True(t, s.Generation.SubmitEnabled)
	assert.Equal(t, domain.SubmitLabel, s.Generation.SubmitLabel)

	last := view.last()
	assert.Equal(t, "<language-python>def g(n): pass", last.Highlighted[domain.RegionIterative])
	assert.Equal(t, []domain.GenerationPhase{
		domain.GenerationIdle, domain.GenerationLoading, domain.GenerationShowingResults,
	}, view.phases())
}

func TestSubmit_Failure(t *testing.T) {
	for _, msg := range []string{"bad prompt", "HTTP error! Status: 500"} {
		t.Run(msg, func(t *testing.T) {
			api := &fakeAPI{generate: func(context.Context, string, string) (*domain.GenerationResult, error) {
				return nil, errors.New(msg)
			}}
			c := NewController(api, &recordingView{})
			defer c.Close()

			err := c.Submit(context.Background(), "", "Go")
			require.Error(t, err)

			s := c.State()
			assert.Equal(t, domain.GenerationShowingError, s.Generation.Phase)
			assert.Equal(t, msg, s.Generation.Error)
			assert.True(t, s.Generation.ErrorVisible)
			assert.False(t, s.Generation.ResultsVisible)
			assert.False(t, s.Generation.LoaderVisible)
			assert.True(t, s.Generation.SubmitEnabled)
			assert.Equal(t, domain.SubmitLabel, s.Generation.SubmitLabel)
		})
	}
}

func TestSubmit_NewerSubmissionWins(t *testing.T) {
	started := make(chan struct{})
	api := &fakeAPI{generate: func(ctx context.Context, prompt, _ string) (*domain.GenerationResult, error) {
		if prompt == "first" {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return &domain.GenerationResult{RecursiveSolution: "second-r", IterativeSolution: "second-i"}, nil
	}}
	c := NewController(api, &recordingView{})
	defer c.Close()

	firstErr := make(chan error, 1)
	go func() { firstErr <- c.Submit(context.Background(), "first", "Go") }()
	<-started

	require.NoError(t, c.Submit(context.Background(), "second", "Go"))
	assert.ErrorIs(t, <-firstErr, ErrSuperseded)

	s := c.State()
	assert.Equal(t, domain.GenerationShowingResults, s.Generation.Phase)
	assert.Equal(t, "second-r", s.Generation.Recursive)
	assert.False(t, s.Generation.ErrorVisible, "the cancelled request does not surface an error")
}

func TestCancelGeneration(t *testing.T) {
	started := make(chan struct{})
	api := &fakeAPI{generate: func(ctx context.Context, _, _ string) (*domain.GenerationResult, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	c := NewController(api, &recordingView{})
	defer c.Close()

	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background(), "p", "Go") }()
	<-started

	c.CancelGeneration()
	assert.ErrorIs(t, <-done, ErrSuperseded)

	s := c.State()
	assert.Equal(t, domain.GenerationIdle, s.Generation.Phase)
	assert.True(t, s.Generation.SubmitEnabled)
	assert.False(t, s.Generation.LoaderVisible)
}

func TestExplain_SendsDisplayedCode(t *testing.T) {
	api := &fakeAPI{
		generate: returning(domain.GenerationResult{RecursiveSolution: "  rec()\n", IterativeSolution: "it()"}),
		explain: func(context.Context, string, string) (string, error) {
			return "Recursion calls itself.", nil
		},
	}
	c := NewController(api, &recordingView{})
	defer c.Close()

	require.NoError(t, c.Submit(context.Background(), "p", "Go"))
	require.NoError(t, c.Explain(context.Background()))

	require.Len(t, api.explainArgs, 1)
	assert.Equal(t, [2]string{"  rec()\n", "it()"}, api.explainArgs[0])

	e := c.State().Explanation
	assert.Equal(t, domain.ExplanationShown, e.Phase)
	assert.Equal(t, "Recursion calls itself.", e.Text)
	assert.True(t, e.Visible)
}

func TestExplain_ShowsMarkerThenError(t *testing.T) {
	view := &recordingView{}
	var sawMarker bool
	api := &fakeAPI{explain: func(context.Context, string, string) (string, error) {
		sawMarker = view.last().State.Explanation.Text == domain.ExplainingMarker
		return "", errors.New("Explanation failed: boom")
	}}
	c := NewController(api, view)
	defer c.Close()

	err := c.Explain(context.Background())
	require.Error(t, err)

	assert.True(t, sawMarker)
	assert.Equal(t, [2]string{"", ""}, api.explainArgs[0], "nothing generated yet")
	assert.Equal(t, domain.ExplanationFailed, c.State().Explanation.Phase)
	assert.Equal(t, "Error: Explanation failed: boom", c.State().Explanation.Text)
}

func TestCopy_SuccessRestoresLabel(t *testing.T) {
	api := &fakeAPI{generate: returning(domain.GenerationResult{RecursiveSolution: "r", IterativeSolution: "it"})}
	clip := &fakeClipboard{}
	c := NewController(api, &recordingView{}, WithClipboard(clip), WithCopyResetDelay(20*time.Millisecond))
	defer c.Close()

	require.NoError(t, c.Submit(context.Background(), "p", "Go"))
	require.NoError(t, c.Copy(domain.RegionIterative))

	clip.mu.Lock()
	assert.Equal(t, "it", clip.text)
	clip.mu.Unlock()
	assert.Equal(t, domain.CopiedLabel, c.State().Copy.Label(domain.RegionIterative))
	assert.Equal(t, domain.CopyLabel, c.State().Copy.Label(domain.RegionRecursive))

	assert.Eventually(t, func() bool {
		return c.State().Copy.Label(domain.RegionIterative) == domain.CopyLabel
	}, time.Second, 5*time.Millisecond)
}

func TestCopy_FailureIsVisible(t *testing.T) {
	clip := &fakeClipboard{err: errors.New("no display")}
	c := NewController(&fakeAPI{}, &recordingView{}, WithClipboard(clip), WithCopyResetDelay(20*time.Millisecond))
	defer c.Close()

	err := c.Copy(domain.RegionRecursive)
	require.Error(t, err)
	assert.Equal(t, domain.CopyFailedLabel, c.State().Copy.Label(domain.RegionRecursive))

	assert.Eventually(t, func() bool {
		return c.State().Copy.Label(domain.RegionRecursive) == domain.CopyLabel
	}, time.Second, 5*time.Millisecond)
}

func TestCopy_RepeatedClickRestartsTimer(t *testing.T) {
	clip := &fakeClipboard{}
	c := NewController(&fakeAPI{}, &recordingView{}, WithClipboard(clip), WithCopyResetDelay(80*time.Millisecond))
	defer c.Close()

	require.NoError(t, c.Copy(domain.RegionRecursive))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, c.Copy(domain.RegionRecursive))
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, domain.CopiedLabel, c.State().Copy.Label(domain.RegionRecursive),
		"the first timer must not restore the label early")
}

func TestClose_StopsPendingTimers(t *testing.T) {
	view := &recordingView{}
	c := NewController(&fakeAPI{}, view, WithClipboard(&fakeClipboard{}), WithCopyResetDelay(10*time.Millisecond))

	require.NoError(t, c.Copy(domain.RegionRecursive))
	c.Close()
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, domain.CopiedLabel, view.last().State.Copy.Label(domain.RegionRecursive))
}
