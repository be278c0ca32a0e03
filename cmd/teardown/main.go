// Command teardown runs the editorial annotation pipeline over a
// directory of page screenshots and writes the annotated images plus
// verdict, playbook and batch summary JSON.
//
// Each screenshot may carry a sibling .txt file with the scraped page
// text; screenshots without one go through the vision text-extraction
// fallback.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/redpenlabs/teardown/internal/config"
	"github.com/redpenlabs/teardown/internal/llm"
	"github.com/redpenlabs/teardown/internal/teardown"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	flagConfig      string
	flagInput       string
	flagOut         string
	flagContentType string
	flagContext     string
	flagDebug       bool
)

func main() {
	root := &cobra.Command{
		Use:     "teardown",
		Short:   "Annotate page screenshots with editorial verdicts",
		Version: fmt.Sprintf("%s (commit %s)", Version, GitCommit),
		RunE:    run,
	}

	root.Flags().StringVar(&flagConfig, "config", "", "path to YAML config (defaults apply when empty)")
	root.Flags().StringVar(&flagInput, "input", ".", "directory of page screenshots")
	root.Flags().StringVar(&flagOut, "out", "out", "output directory")
	root.Flags().StringVar(&flagContentType, "content-type", "profile", `content type: "profile" or "post"`)
	root.Flags().StringVar(&flagContext, "context", "", "extra context passed to the diagnosis")
	root.Flags().BoolVar(&flagDebug, "debug", false, "enable debug logging")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger(flagDebug)
	if err != nil {
		return err
	}
	defer logger.Sync()
	log := logger.Sugar()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := llm.NewGeminiClient(ctx, cfg.LLM)
	if err != nil {
		return err
	}

	engine, err := teardown.NewEngine(cfg, client, log)
	if err != nil {
		return err
	}

	items, err := discoverItems(flagInput, flagContentType, flagContext)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("no screenshots found in %s", flagInput)
	}

	if err := os.MkdirAll(flagOut, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	batch := engine.Run(ctx, items)

	for _, result := range batch.Results {
		if err := writeResult(flagOut, result); err != nil {
			log.Errorw("failed to write result", "item", result.ItemID, "error", err)
		}
	}
	if err := writeJSON(filepath.Join(flagOut, "summary.json"), batch); err != nil {
		return err
	}

	log.Infow("done", "run", batch.RunID,
		"succeeded", batch.Succeeded, "failed", batch.Failed, "out", flagOut)
	if batch.Failed > 0 {
		return fmt.Errorf("%d of %d items failed", batch.Failed, len(items))
	}
	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// discoverItems scans a directory for page screenshots. A sibling .txt
// file with the same stem supplies the scraped source text.
func discoverItems(dir, contentType, extraContext string) ([]teardown.Item, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var items []teardown.Item
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		switch ext {
		case ".png", ".jpg", ".jpeg", ".gif":
		default:
			continue
		}

		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		sourceText := ""
		if data, err := os.ReadFile(filepath.Join(dir, stem+".txt")); err == nil {
			sourceText = string(data)
		}

		items = append(items, teardown.Item{
			ID:           stem,
			ImagePath:    filepath.Join(dir, entry.Name()),
			SourceText:   sourceText,
			ContentType:  contentType,
			ExtraContext: extraContext,
		})
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// writeResult writes the annotated PNG plus verdict and playbook JSON
// for one completed item. Failed items appear only in the summary.
func writeResult(dir string, result *teardown.ItemResult) error {
	if result.Failed() {
		return nil
	}

	pngPath := filepath.Join(dir, result.ItemID+"_annotated.png")
	if err := os.WriteFile(pngPath, result.AnnotatedPNG, 0o644); err != nil {
		return fmt.Errorf("failed to write annotation: %w", err)
	}

	if err := writeJSON(filepath.Join(dir, result.ItemID+"_verdict.json"), result.Verdict); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, result.ItemID+"_playbook.json"), result.Playbook)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
