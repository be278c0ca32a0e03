// Package config holds the explicit configuration object shared by the
// teardown pipeline components. Every threshold, denylist and color that
// influences behavior lives here so that components can be constructed
// with overridden values in tests.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// OCRConfig controls the region extractor.
type OCRConfig struct {
	// Language is the Tesseract language code (e.g. "eng").
	Language string `yaml:"language"`

	// MinConfidence drops words below this OCR confidence (0-100).
	MinConfidence float64 `yaml:"min_confidence"`
}

// RegionsConfig controls line grouping and chrome filtering.
type RegionsConfig struct {
	// LineTolerance is the vertical-center tolerance, in pixels, for
	// merging words into one visual line.
	LineTolerance int `yaml:"line_tolerance"`

	// HeaderCutoff drops merged lines lying wholly above this y
	// coordinate (navigation bars, logos).
	HeaderCutoff int `yaml:"header_cutoff"`

	// MinLineWidth and MinLineHeight drop merged lines smaller than
	// this box size (OCR noise).
	MinLineWidth  int `yaml:"min_line_width"`
	MinLineHeight int `yaml:"min_line_height"`
}

// GenerationConfig controls the quality-gated verdict/playbook loop.
type GenerationConfig struct {
	// MaxAttempts is the total generation budget, including the first
	// attempt. Exhausting it is a hard failure.
	MaxAttempts int `yaml:"max_attempts"`

	// MaxVerdictWords caps the one-sentence verdict length.
	MaxVerdictWords int `yaml:"max_verdict_words"`

	// Denylist rejects any candidate containing one of these phrases,
	// case-insensitive, in any generated field.
	Denylist []string `yaml:"denylist"`

	// CostWords: the consequence field must contain at least one.
	CostWords []string `yaml:"cost_words"`

	// WeakOpeners reject verdicts that start with hedging.
	WeakOpeners []string `yaml:"weak_openers"`

	// GenericGaps reject core-gap statements that say nothing.
	GenericGaps []string `yaml:"generic_gaps"`
}

// EvidenceConfig controls evidence selection.
type EvidenceConfig struct {
	// Backend selects the Selector implementation: "llm" or "positional".
	Backend string `yaml:"backend"`

	// MaxEvidence is k, the evidence cap per item.
	MaxEvidence int `yaml:"max_evidence"`

	// MaxCandidates caps how many lines are presented to the model.
	MaxCandidates int `yaml:"max_candidates"`
}

// RenderConfig controls the hand-drawn renderer.
type RenderConfig struct {
	// Jitter is the per-vertex perturbation magnitude in pixels.
	Jitter int `yaml:"jitter"`

	// StrokeWidth is the pen stroke width in pixels.
	StrokeWidth int `yaml:"stroke_width"`

	// PenColor and InkColor are hex colors for marks and note text.
	PenColor string `yaml:"pen_color"`
	InkColor string `yaml:"ink_color"`

	// Banner enables the fixed-position verdict band at the top.
	Banner bool `yaml:"banner"`
}

// LLMConfig controls the Gemini client.
type LLMConfig struct {
	// APIKey is read from the GEMINI_API_KEY environment variable when
	// empty; it is never written back to the config file.
	APIKey string `yaml:"-"`

	Model       string  `yaml:"model"`
	VisionModel string  `yaml:"vision_model"`
	Temperature float32 `yaml:"temperature"`

	// MinRequestIntervalMS paces successive model calls to respect
	// provider quotas. Zero disables pacing.
	MinRequestIntervalMS int `yaml:"min_request_interval_ms"`
}

// BatchConfig controls multi-item runs.
type BatchConfig struct {
	// Parallelism bounds concurrent item pipelines. 1 = sequential.
	Parallelism int `yaml:"parallelism"`
}

// Config is the root configuration object passed into constructors.
type Config struct {
	OCR        OCRConfig        `yaml:"ocr"`
	Regions    RegionsConfig    `yaml:"regions"`
	Generation GenerationConfig `yaml:"generation"`
	Evidence   EvidenceConfig   `yaml:"evidence"`
	Render     RenderConfig     `yaml:"render"`
	LLM        LLMConfig        `yaml:"llm"`
	Batch      BatchConfig      `yaml:"batch"`
}

// Default returns the configuration used when no file overrides it.
func Default() Config {
	return Config{
		OCR: OCRConfig{
			Language:      "eng",
			MinConfidence: 0,
		},
		Regions: RegionsConfig{
			LineTolerance: 15,
			HeaderCutoff:  60,
			MinLineWidth:  20,
			MinLineHeight: 8,
		},
		Generation: GenerationConfig{
			MaxAttempts:     3,
			MaxVerdictWords: 25,
			Denylist: []string{
				"no change needed",
				"looks good",
				"well done",
				"great job",
				"add a hook",
				"improve engagement",
				"consider adding",
				"you might want to",
				"try adding",
				"boost your",
				"optimize your",
				"enhance your",
				"level up",
				"take it to the next level",
				"pro tip",
				"best practice",
				"industry standard",
				"thought leader",
				"value proposition",
				"personal brand",
				"target audience",
			},
			CostWords: []string{
				"miss", "lose", "skip", "ignore", "scroll",
				"forget", "overlook", "pass", "won't", "don't",
			},
			WeakOpeners: []string{
				"this could", "maybe", "perhaps",
				"it seems", "it appears", "potentially",
			},
			GenericGaps: []string{
				"needs improvement", "could be better",
				"lacks clarity", "not optimized",
			},
		},
		Evidence: EvidenceConfig{
			Backend:       "llm",
			MaxEvidence:   2,
			MaxCandidates: 30,
		},
		Render: RenderConfig{
			Jitter:      3,
			StrokeWidth: 2,
			PenColor:    "#C41E3A",
			InkColor:    "#1A1A1A",
			Banner:      false,
		},
		LLM: LLMConfig{
			Model:                "gemini-2.5-flash",
			VisionModel:          "gemini-2.5-flash",
			Temperature:          0.7,
			MinRequestIntervalMS: 0,
		},
		Batch: BatchConfig{
			Parallelism: 1,
		},
	}
}

// Load reads a YAML config file over the defaults. The API key is taken
// from the GEMINI_API_KEY environment variable.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	if c.Generation.MaxAttempts < 1 {
		return fmt.Errorf("generation.max_attempts must be >= 1, got %d", c.Generation.MaxAttempts)
	}
	if c.Evidence.MaxEvidence < 1 {
		return fmt.Errorf("evidence.max_evidence must be >= 1, got %d", c.Evidence.MaxEvidence)
	}
	if c.Regions.LineTolerance < 0 {
		return fmt.Errorf("regions.line_tolerance must be >= 0, got %d", c.Regions.LineTolerance)
	}
	if c.Render.Jitter < 0 {
		return fmt.Errorf("render.jitter must be >= 0, got %d", c.Render.Jitter)
	}
	switch c.Evidence.Backend {
	case "llm", "positional":
	default:
		return fmt.Errorf("evidence.backend must be \"llm\" or \"positional\", got %q", c.Evidence.Backend)
	}
	if c.Batch.Parallelism < 1 {
		return fmt.Errorf("batch.parallelism must be >= 1, got %d", c.Batch.Parallelism)
	}
	return nil
}
