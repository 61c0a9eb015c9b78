// Package domain models the page as an explicit state value. Every
// transition is a pure function from one State to the next; responses
// carrying a request id that is no longer current are ignored.
package domain

import (
	"strings"
	"time"
)

// GenerationPhase is the lifecycle of the generate action.
type GenerationPhase string

const (
	GenerationIdle           GenerationPhase = "idle"
	GenerationLoading        GenerationPhase = "loading"
	GenerationShowingResults GenerationPhase = "showing-results"
	GenerationShowingError   GenerationPhase = "showing-error"
)

// ExplanationPhase is the lifecycle of the explain action.
type ExplanationPhase string

const (
	ExplanationIdle    ExplanationPhase = "idle"
	ExplanationPending ExplanationPhase = "explaining"
	ExplanationShown   ExplanationPhase = "showing-explanation"
	ExplanationFailed  ExplanationPhase = "showing-error"
)

// Region identifies a code display region.
type Region string

const (
	RegionRecursive Region = "recursive-code"
	RegionIterative Region = "non-recursive-code"
)

// Regions lists every display region in page order.
var Regions = []Region{RegionRecursive, RegionIterative}

// Labels and markers shown on the page.
const (
	SubmitLabel            = "Generate"
	SubmittingLabel        = "Generating..."
	ExplainingMarker       = "Explaining..."
	ExplanationErrorPrefix = "Error: "
	CopyLabel              = "Copy"
	CopiedLabel            = "Copied!"
	CopyFailedLabel        = "Copy failed"
)

// CopyResetDelay is how long a copy button keeps its confirmation label.
const CopyResetDelay = 2000 * time.Millisecond

// GenerationResult is a decoded /generate response. Empty fields are absent.
type GenerationResult struct {
	RecursiveSolution string
	IterativeSolution string
}

// GenerationState is everything the generate action shows.
type GenerationState struct {
	Phase          GenerationPhase
	RequestID      uint64
	Recursive      string
	Iterative      string
	HighlightClass string
	Error          string
	ErrorVisible   bool
	LoaderVisible  bool
	SubmitEnabled  bool
	SubmitLabel    string
	ResultsVisible bool
	ExplainVisible bool
}

// ExplanationState is everything the explain action shows.
type ExplanationState struct {
	Phase     ExplanationPhase
	RequestID uint64
	Text      string
	Visible   bool
}

// CopyButtons holds the label of each region's copy button.
type CopyButtons struct {
	Recursive string
	Iterative string
}

// Label returns the label of the button targeting region.
func (b CopyButtons) Label(region Region) string {
	if region == RegionIterative {
		return b.Iterative
	}
	return b.Recursive
}

func (b CopyButtons) with(region Region, label string) CopyButtons {
	if region == RegionIterative {
		b.Iterative = label
	} else {
		b.Recursive = label
	}
	return b
}

// State is the whole page.
type State struct {
	Generation  GenerationState
	Explanation ExplanationState
	Copy        CopyButtons
}

// InitialState is the page right after load.
func InitialState() State {
	return State{
		Generation: GenerationState{
			Phase:         GenerationIdle,
			SubmitEnabled: true,
			SubmitLabel:   SubmitLabel,
		},
		Explanation: ExplanationState{Phase: ExplanationIdle},
		Copy:        CopyButtons{Recursive: CopyLabel, Iterative: CopyLabel},
	}
}

// BeginGeneration enters the loading state for request id. Previous results,
// the error banner and the explanation are hidden; any pending explanation is
// invalidated.
func BeginGeneration(s State, id uint64) State {
	g := s.Generation
	g.Phase = GenerationLoading
	g.RequestID = id
	g.LoaderVisible = true
	g.SubmitEnabled = false
	g.SubmitLabel = SubmittingLabel
	g.ResultsVisible = false
	g.ErrorVisible = false
	s.Generation = g
	s.Explanation = ExplanationState{Phase: ExplanationIdle}
	return s
}

// CompleteGeneration shows result for request id. language is the raw
// selector value; the highlight class uses its lowercased form. It reports
// false and leaves s unchanged when id is stale.
func CompleteGeneration(s State, id uint64, result GenerationResult, language string) (State, bool) {
	if !isCurrentGeneration(s, id) {
		return s, false
	}
	g := s.Generation
	g.Phase = GenerationShowingResults
	g.Recursive = orPlaceholder(result.RecursiveSolution, RecursivePlaceholder(language))
	g.Iterative = orPlaceholder(result.IterativeSolution, IterativePlaceholder(language))
	g.HighlightClass = HighlightClass(language)
	g.Error = ""
	g.ErrorVisible = false
	g.ResultsVisible = true
	g.ExplainVisible = true
	s.Generation = settle(g)
	return s, true
}

// FailGeneration shows message in the error banner for request id. It
// reports false and leaves s unchanged when id is stale.
func FailGeneration(s State, id uint64, message string) (State, bool) {
	if !isCurrentGeneration(s, id) {
		return s, false
	}
	g := s.Generation
	g.Phase = GenerationShowingError
	g.Error = message
	g.ErrorVisible = true
	g.ResultsVisible = false
	s.Generation = settle(g)
	return s, true
}

// CancelGeneration abandons the in-flight request; its response will be stale.
func CancelGeneration(s State) State {
	if s.Generation.Phase != GenerationLoading {
		return s
	}
	g := s.Generation
	g.Phase = GenerationIdle
	g.RequestID = 0
	s.Generation = settle(g)
	return s
}

// BeginExplanation shows the interim marker for request id.
func BeginExplanation(s State, id uint64) State {
	s.Explanation = ExplanationState{
		Phase:     ExplanationPending,
		RequestID: id,
		Text:      ExplainingMarker,
		Visible:   true,
	}
	return s
}

// CompleteExplanation replaces the marker with text.
func CompleteExplanation(s State, id uint64, text string) (State, bool) {
	if !isCurrentExplanation(s, id) {
		return s, false
	}
	s.Explanation.Phase = ExplanationShown
	s.Explanation.Text = text
	return s, true
}

// FailExplanation replaces the marker with an inline error, prefixed with
// "Error: ", and marks the explanation as failed.
func FailExplanation(s State, id uint64, message string) (State, bool) {
	if !isCurrentExplanation(s, id) {
		return s, false
	}
	s.Explanation.Phase = ExplanationFailed
	s.Explanation.Text = ExplanationErrorPrefix + message
	return s, true
}

// SetCopyLabel relabels the copy button targeting region.
func SetCopyLabel(s State, region Region, label string) State {
	s.Copy = s.Copy.with(region, label)
	return s
}

// RegionText returns the text currently displayed in region.
func RegionText(s State, region Region) string {
	if region == RegionIterative {
		return s.Generation.Iterative
	}
	return s.Generation.Recursive
}

// HighlightClass is the grammar selector class for language.
func HighlightClass(language string) string {
	return "language-" + strings.ToLower(language)
}

// RecursivePlaceholder is shown when the recursive solution is absent.
func RecursivePlaceholder(language string) string {
	return CommentLeader(language) + " Recursive code not found"
}

// IterativePlaceholder is shown when the iterative solution is absent.
func IterativePlaceholder(language string) string {
	return CommentLeader(language) + " Iterative code not found"
}

// CommentLeader returns the line comment token of language.
func CommentLeader(language string) string {
	switch strings.ToLower(language) {
	case "python", "ruby", "shell", "bash", "r", "perl":
		return "#"
	case "sql", "haskell", "lua":
		return "--"
	default:
		return "//"
	}
}

func isCurrentGeneration(s State, id uint64) bool {
	return id != 0 && s.Generation.Phase == GenerationLoading && s.Generation.RequestID == id
}

func isCurrentExplanation(s State, id uint64) bool {
	return id != 0 && s.Explanation.Phase == ExplanationPending && s.Explanation.RequestID == id
}

// settle leaves the loading state: loader hidden, submit restored.
func settle(g GenerationState) GenerationState {
	g.LoaderVisible = false
	g.SubmitEnabled = true
	g.SubmitLabel = SubmitLabel
	return g
}

func orPlaceholder(v, placeholder string) string {
	if v == "" {
		return placeholder
	}
	return v
}
