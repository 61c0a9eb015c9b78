package cli

import (
	"fmt"
	"io"
	"strings"

	"codepair/internal/features/page/application"
	"codepair/internal/features/page/domain"

	"github.com/charmbracelet/glamour"
)

// markdownRenderer turns the explanation markdown into terminal output.
type markdownRenderer func(markdown string) (string, error)

func glamourRenderer(style string) markdownRenderer {
	return func(markdown string) (string, error) {
		return glamour.Render(markdown, style)
	}
}

// terminalView prints what changed between two frames.
type terminalView struct {
	out      io.Writer
	errOut   io.Writer
	markdown markdownRenderer
	prev     *domain.State
}

func newTerminalView(out, errOut io.Writer, markdown markdownRenderer) *terminalView {
	return &terminalView{out: out, errOut: errOut, markdown: markdown}
}

// Render implements application.View.
func (v *terminalView) Render(frame application.Frame) {
	s := frame.State
	prev := domain.InitialState()
	if v.prev != nil {
		prev = *v.prev
	}
	v.prev = &s

	if s.Generation.Phase != prev.Generation.Phase || s.Generation.RequestID != prev.Generation.RequestID {
		v.renderGeneration(s.Generation, frame.Highlighted)
	}
	if s.Explanation.Phase != prev.Explanation.Phase || s.Explanation.Text != prev.Explanation.Text {
		v.renderExplanation(s.Explanation)
	}
	for _, region := range domain.Regions {
		if label := s.Copy.Label(region); label != prev.Copy.Label(region) && label != domain.CopyLabel {
			fmt.Fprintf(v.errOut, "[%s] %s\n", region, label)
		}
	}
}

func (v *terminalView) renderGeneration(g domain.GenerationState, highlighted map[domain.Region]string) {
	switch g.Phase {
	case domain.GenerationLoading:
		fmt.Fprintln(v.errOut, g.SubmitLabel)
	case domain.GenerationShowingError:
		fmt.Fprintln(v.errOut, g.Error)
	case domain.GenerationShowingResults:
		v.section("Recursive solution", regionOutput(highlighted, domain.RegionRecursive, g.Recursive))
		v.section("Iterative solution", regionOutput(highlighted, domain.RegionIterative, g.Iterative))
	}
}

func (v *terminalView) renderExplanation(e domain.ExplanationState) {
	if !e.Visible {
		return
	}
	switch e.Phase {
	case domain.ExplanationPending, domain.ExplanationFailed:
		fmt.Fprintln(v.errOut, e.Text)
	default:
		text := e.Text
		if v.markdown != nil {
			if rendered, err := v.markdown(text); err == nil {
				text = rendered
			}
		}
		v.section("Explanation", text)
	}
}

func (v *terminalView) section(title, body string) {
	fmt.Fprintf(v.out, "== %s ==\n%s\n", title, strings.TrimRight(body, "\n"))
}

func regionOutput(highlighted map[domain.Region]string, region domain.Region, plain string) string {
	if out, ok := highlighted[region]; ok {
		return out
	}
	return plain
}
