package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"codepair/internal/features/page/application"
	"codepair/internal/features/page/domain"
	"codepair/internal/features/page/infrastructure"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type generateOptions struct {
	server        string
	prompt        string
	language      string
	explain       bool
	copyRegion    string
	format        string
	style         string
	markdownStyle string
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Ask a running codepair server for a recursive and an iterative solution",
		Example: `  codepair generate --prompt "factorial of n" --language Python
  codepair generate --prompt "reverse a linked list" --language Go --explain --copy iterative`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.server, "server", "http://localhost:5001", "base URL of the codepair server")
	f.StringVarP(&opts.prompt, "prompt", "p", "", "problem description")
	f.StringVarP(&opts.language, "language", "l", "Python", "target language")
	f.BoolVar(&opts.explain, "explain", false, "also request an explanation of both snippets")
	f.StringVar(&opts.copyRegion, "copy", "", "copy a snippet to the clipboard: recursive or iterative")
	f.StringVar(&opts.format, "format", infrastructure.FormatTerminal, "highlight output: terminal or html")
	f.StringVar(&opts.style, "style", "monokai", "chroma style for highlighting")
	f.StringVar(&opts.markdownStyle, "markdown-style", "dark", "glamour style for the explanation")
	return cmd
}

func runGenerate(cmd *cobra.Command, opts *generateOptions) error {
	region, err := parseRegion(opts.copyRegion)
	if err != nil {
		return err
	}

	highlighter, err := infrastructure.NewChromaHighlighter(opts.format, opts.style)
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	if verbose {
		if logger, err = newLogger(true); err != nil {
			return err
		}
		defer logger.Sync()
	}

	view := newTerminalView(cmd.OutOrStdout(), cmd.ErrOrStderr(), glamourRenderer(opts.markdownStyle))
	ctrl := application.NewController(
		infrastructure.NewAPIClient(opts.server, nil),
		view,
		application.WithHighlighter(highlighter),
		application.WithClipboard(infrastructure.SystemClipboard{}),
		application.WithLogger(logger),
	)
	defer ctrl.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Failures are already shown by the view.
	if err := ctrl.Submit(ctx, opts.prompt, opts.language); err != nil {
		cmd.SilenceErrors = true
		return err
	}

	if opts.explain {
		if err := ctrl.Explain(ctx); err != nil {
			cmd.SilenceErrors = true
			return err
		}
	}

	if region != "" {
		if err := ctrl.Copy(region); err != nil {
			cmd.SilenceErrors = true
			return err
		}
	}
	return nil
}

func parseRegion(name string) (domain.Region, error) {
	switch name {
	case "":
		return "", nil
	case "recursive":
		return domain.RegionRecursive, nil
	case "iterative":
		return domain.RegionIterative, nil
	default:
		return "", fmt.Errorf("unknown region %q: must be recursive or iterative", name)
	}
}
