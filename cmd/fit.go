package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/formfit/formfit/api/schemas"
	"github.com/formfit/formfit/internal/config"
	"github.com/formfit/formfit/internal/host"
	"github.com/formfit/formfit/internal/host/cdp"
	"github.com/formfit/formfit/internal/host/headless"
	"github.com/formfit/formfit/internal/observability"
	"github.com/formfit/formfit/internal/report"
	"github.com/formfit/formfit/internal/sizing"
)

// newFitCmd creates and configures the `fit` command.
func newFitCmd() *cobra.Command {
	fitCmd := &cobra.Command{
		Use:   "fit [inputs...]",
		Short: "Resizes form controls in HTML files or live pages to fit their content",
		Long: `Fit processes each input, sizes every matching form control to its
content, and writes the resulting document back out. Inputs are HTML file
paths ("-" for stdin) or http(s) URLs, which are loaded in a browser.`,
		Args: cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags so they override config file and env values.
			bindings := map[string]string{
				"sizing.base_selector":       "selector",
				"sizing.filter_selector":     "filter",
				"sizing.arrow_width":         "arrow-width",
				"browser.headless":           "headless",
				"browser.navigation_timeout": "timeout",
				"output.path":                "output",
				"output.report_path":         "report",
				"concurrency":                "concurrency",
			}
			for key, flag := range bindings {
				if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
					return err
				}
			}
			return nil
		},
		RunE: runFit,
	}

	fitCmd.Flags().StringP("selector", "s", sizing.DefaultBaseSelector, "Selector for controls to size")
	fitCmd.Flags().String("filter", sizing.DefaultFilterSelector, "Additional selector every control must match")
	fitCmd.Flags().String("arrow-width", sizing.DefaultArrowWidth, "Fallback width reserved for the select dropdown arrow")
	fitCmd.Flags().StringP("output", "o", "", "Output file (directory with multiple inputs); defaults to stdout")
	fitCmd.Flags().String("report", "", "Write a JSON sizing report to this path")
	fitCmd.Flags().IntP("concurrency", "j", 4, "Number of inputs processed in parallel")
	fitCmd.Flags().Bool("headless", true, "Run the browser headless for URL inputs")
	fitCmd.Flags().Duration("timeout", 90*time.Second, "Navigation timeout for URL inputs")

	return fitCmd
}

func runFit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := observability.GetLogger()

	cfg, err := config.NewConfigFromViper(viper.GetViper())
	if err != nil {
		return err
	}

	eng := sizing.New(cfg.Sizing().EngineConfig(), logger.Named("sizing"))

	var reporter report.Reporter
	if cfg.Output().ReportPath != "" {
		reporter, err = report.New(cfg.Output().ReportPath)
		if err != nil {
			return err
		}
	}

	multi := len(args) > 1
	if multi && cfg.Output().Path == "" {
		return fmt.Errorf("multiple inputs require --output to name a directory")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency())
	for _, input := range args {
		input := input
		g.Go(func() error {
			docReport, err := processInput(gctx, eng, cfg, input, multi, logger)
			if reporter != nil {
				if werr := reporter.Write(docReport); werr != nil {
					logger.Warn("failed to record document report", zap.String("input", input), zap.Error(werr))
				}
			}
			return err
		})
	}

	runErr := g.Wait()
	if reporter != nil {
		if err := reporter.Close(); err != nil {
			logger.Error("failed to finalize report", zap.Error(err))
			runErr = errors.Join(runErr, err)
		}
	}
	if runErr == nil {
		logger.Info("All inputs processed", zap.Int("inputs", len(args)))
	}
	return runErr
}

// processInput sizes one input end to end and writes the resulting document.
func processInput(ctx context.Context, eng *sizing.Engine, cfg config.Interface, input string, multi bool, logger *zap.Logger) (schemas.DocumentReport, error) {
	logger.Info("Processing input", zap.String("input", input))

	if isURL(input) {
		return processURL(ctx, eng, cfg, input, multi, logger)
	}
	return processFile(eng, cfg, input, multi, logger)
}

func processFile(eng *sizing.Engine, cfg config.Interface, input string, multi bool, logger *zap.Logger) (schemas.DocumentReport, error) {
	var r io.Reader
	if input == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(input)
		if err != nil {
			return schemas.DocumentReport{Source: input, Timestamp: time.Now().UTC()},
				fmt.Errorf("opening %s: %w", input, err)
		}
		defer f.Close()
		r = f
	}

	doc, err := headless.Parse(r)
	if err != nil {
		return schemas.DocumentReport{Source: input, Timestamp: time.Now().UTC()},
			fmt.Errorf("parsing %s: %w", input, err)
	}

	docReport, sizeErr := sizeDocument(eng, doc, input)

	out, err := outputWriter(input, cfg.Output().Path, multi)
	if err != nil {
		return docReport, errors.Join(sizeErr, err)
	}
	defer out.Close()
	if err := doc.Render(out); err != nil {
		return docReport, errors.Join(sizeErr, fmt.Errorf("writing output for %s: %w", input, err))
	}
	return docReport, sizeErr
}

func processURL(ctx context.Context, eng *sizing.Engine, cfg config.Interface, input string, multi bool, logger *zap.Logger) (schemas.DocumentReport, error) {
	doc, cancel, err := cdp.Open(ctx, input, cdp.Options{
		Headless:          cfg.Browser().Headless,
		NavigationTimeout: cfg.Browser().NavigationTimeout,
		IgnoreTLSErrors:   cfg.Browser().IgnoreTLSErrors,
		Args:              cfg.Browser().Args,
		Logger:            logger.Named("cdp"),
	})
	if err != nil {
		return schemas.DocumentReport{Source: input, Timestamp: time.Now().UTC()}, err
	}
	defer cancel()

	docReport, sizeErr := sizeDocument(eng, doc, input)

	html, err := doc.HTML()
	if err != nil {
		return docReport, errors.Join(sizeErr, err)
	}
	out, err := outputWriter(input, cfg.Output().Path, multi)
	if err != nil {
		return docReport, errors.Join(sizeErr, err)
	}
	defer out.Close()
	if _, err := io.WriteString(out, html); err != nil {
		return docReport, errors.Join(sizeErr, fmt.Errorf("writing output for %s: %w", input, err))
	}
	return docReport, sizeErr
}

// sizeDocument fits every matching control and collects per-control results.
// A failing control does not stop the rest.
func sizeDocument(eng *sizing.Engine, doc host.Document, source string) (schemas.DocumentReport, error) {
	docReport := schemas.DocumentReport{
		Source:    source,
		Timestamp: time.Now().UTC(),
	}

	els, err := doc.QuerySelectorAll(eng.Config().BaseSelector)
	if err != nil {
		return docReport, fmt.Errorf("resolving controls in %s: %w", source, err)
	}
	docReport.Matched = len(els)

	var errs []error
	for _, el := range els {
		resizeErr := eng.Resize(el)
		result := controlResult(el, resizeErr)
		if result.Applied {
			docReport.Resized++
		}
		docReport.Controls = append(docReport.Controls, result)
		if resizeErr != nil {
			errs = append(errs, fmt.Errorf("%s <%s>: %w", source, el.TagName(), resizeErr))
		}
	}
	return docReport, errors.Join(errs...)
}

var kindSchema = map[sizing.Kind]schemas.ControlKind{
	sizing.KindTextArea:       schemas.KindTextArea,
	sizing.KindSingleLineText: schemas.KindSingleLineText,
	sizing.KindSelection:      schemas.KindSelection,
}

func controlResult(el host.Element, resizeErr error) schemas.ControlResult {
	result := schemas.ControlResult{
		Tag:    el.TagName(),
		Kind:   kindSchema[sizing.Classify(el)],
		Width:  el.StyleValue("width"),
		Height: el.StyleValue("height"),
	}
	result.ID, _ = el.Attr("id")
	result.Name, _ = el.Attr("name")
	if resizeErr != nil {
		result.Error = resizeErr.Error()
	} else {
		result.Applied = result.Width != "" || result.Height != ""
	}
	return result
}

func isURL(input string) bool {
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// outputWriter resolves where a processed document lands: stdout when no
// output is configured, a file for a single input, a file inside the output
// directory for multiple inputs.
func outputWriter(input, outputPath string, multi bool) (io.WriteCloser, error) {
	if outputPath == "" {
		return nopWriteCloser{os.Stdout}, nil
	}
	path := outputPath
	if multi {
		if err := os.MkdirAll(outputPath, 0o755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
		path = filepath.Join(outputPath, outputName(input))
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, nil
}

// outputName derives a file name for an input: the base name for files, a
// sanitized host and path for URLs.
func outputName(input string) string {
	if input == "-" {
		return "stdin.html"
	}
	if isURL(input) {
		u, err := url.Parse(input)
		if err != nil {
			return "page.html"
		}
		name := u.Host + strings.ReplaceAll(u.Path, "/", "_")
		name = strings.Trim(name, "_")
		if name == "" {
			name = "page"
		}
		return name + ".html"
	}
	return filepath.Base(input)
}
