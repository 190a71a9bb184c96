// Package whisper runs the openai-whisper command line tool as a
// transcription engine.
package whisper

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kbukum/scribekit/errors"
	"github.com/kbukum/scribekit/lifecycle"
	"github.com/kbukum/scribekit/logger"
	"github.com/kbukum/scribekit/process"
	"github.com/kbukum/scribekit/provider"
	"github.com/kbukum/scribekit/transcription"
	"github.com/kbukum/scribekit/validation"
)

const (
	// ProviderName is the registered name for the whisper engine.
	ProviderName = "whisper"

	defaultBinary  = "whisper"
	defaultModel   = "base"
	defaultTimeout = 10 * time.Minute

	outputFormat = "json"
	stepName     = "transcription"
)

// Config holds configuration for the whisper engine.
type Config struct {
	Binary   string `yaml:"binary" mapstructure:"binary"`
	Model    string `yaml:"model" mapstructure:"model" validate:"required"`
	Language string `yaml:"language" mapstructure:"language"`
	// Device is passed as --device (cpu, cuda) when set.
	Device  string `yaml:"device" mapstructure:"device"`
	Threads int    `yaml:"threads" mapstructure:"threads" validate:"gte=0"`
	// SkipWordTimestamps disables per-word output. Confidence then falls
	// back to the per-segment default.
	SkipWordTimestamps bool          `yaml:"skip_word_timestamps" mapstructure:"skip_word_timestamps"`
	Timeout            time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	ExtraArgs          []string      `yaml:"extra_args" mapstructure:"extra_args"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Binary == "" {
		c.Binary = defaultBinary
	}
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// Engine invokes the whisper binary once per request.
type Engine struct {
	cfg    Config
	runner process.Runner
	log    *logger.Logger
}

var _ transcription.Engine = (*Engine)(nil)

// New creates a whisper engine. Unset config fields take their defaults.
func New(cfg Config, runner process.Runner) *Engine {
	cfg.ApplyDefaults()
	return &Engine{
		cfg:    cfg,
		runner: runner,
		log:    logger.WithComponent("whisper"),
	}
}

// Factory returns a provider.Factory that builds engines from base,
// overridden by any matching keys in the generic config map.
func Factory(base Config, runner process.Runner) provider.Factory[transcription.Engine] {
	return func(cfg map[string]any) (transcription.Engine, error) {
		wc := base
		if v, ok := cfg["binary"].(string); ok {
			wc.Binary = v
		}
		if v, ok := cfg["model"].(string); ok {
			wc.Model = v
		}
		if v, ok := cfg["language"].(string); ok {
			wc.Language = v
		}
		if v, ok := cfg["device"].(string); ok {
			wc.Device = v
		}
		if v, ok := cfg["timeout"].(time.Duration); ok {
			wc.Timeout = v
		}
		wc.ApplyDefaults()
		if err := wc.Validate(); err != nil {
			return nil, err
		}
		return New(wc, runner), nil
	}
}

// Name returns the provider name.
func (e *Engine) Name() string { return ProviderName }

// IsAvailable reports whether the whisper binary is on PATH.
func (e *Engine) IsAvailable(_ context.Context) bool {
	return process.Available(e.cfg.Binary)
}

// Execute transcribes req.AudioPath. The scratch directory and the output
// artifact are registered with req.Scope before the binary runs.
func (e *Engine) Execute(ctx context.Context, req transcription.Request) (*transcription.Output, error) {
	if req.AudioPath == "" {
		return nil, errors.InvalidInput("audio_path", "is required")
	}
	if req.Scope == nil {
		return nil, errors.Internal(fmt.Errorf("whisper: request has no resource scope"))
	}

	scratch, err := req.Scope.NewDir(ProviderName)
	if err != nil {
		return nil, err
	}
	artifact := req.Scope.Register(ExpectedOutputPath(scratch.Path, req.AudioPath))

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	cmd := process.Command{
		Binary: e.cfg.Binary,
		Args:   e.args(req, scratch.Path),
	}
	log := e.log.WithContext(ctx)
	log.Debug("running speech engine", logger.Fields(logger.FieldPath, req.AudioPath, "command", cmd.String()))

	res, err := e.runner.Run(ctx, cmd)
	if err != nil {
		return nil, e.runError(ctx, res, err)
	}

	out, err := readOutput(artifact)
	if err != nil {
		return nil, err
	}
	log.Debug("speech engine finished", logger.MergeWithDuration(logger.Fields(
		"segments", len(out.Segments),
		"language", out.Language,
	), res.Duration))
	return out, nil
}

func (e *Engine) args(req transcription.Request, outDir string) []string {
	model := e.cfg.Model
	if req.Model != "" {
		model = req.Model
	}
	lang := req.Language
	if lang == "" {
		lang = e.cfg.Language
	}

	args := []string{
		req.AudioPath,
		"--model", model,
		"--output_dir", outDir,
		"--output_format", outputFormat,
		"--verbose", "False",
	}
	if !transcription.IsAutoLanguage(lang) {
		args = append(args, "--language", lang)
	}
	if !e.cfg.SkipWordTimestamps {
		args = append(args, "--word_timestamps", "True")
	}
	if e.cfg.Device != "" {
		args = append(args, "--device", e.cfg.Device)
	}
	if e.cfg.Threads > 0 {
		args = append(args, "--threads", strconv.Itoa(e.cfg.Threads))
	}
	return append(args, e.cfg.ExtraArgs...)
}

func (e *Engine) runError(ctx context.Context, res *process.Result, err error) error {
	if ctxErr := errors.FromContext(ctx, stepName); ctxErr != nil {
		return ctxErr
	}
	if stderrors.Is(err, process.ErrNotFound) {
		return errors.EngineFailure("speech engine binary not found", err).
			WithDetail("binary", e.cfg.Binary)
	}

	appErr := errors.EngineFailure("speech engine exited with an error", err)
	if res != nil {
		appErr.WithDetails(map[string]any{
			"exit_code": res.ExitCode,
			"stderr":    res.StderrText(),
		})
	}
	return appErr
}

// ExpectedOutputPath is where whisper writes its JSON output for audioPath
// when run with outDir as --output_dir.
func ExpectedOutputPath(outDir, audioPath string) string {
	base := filepath.Base(audioPath)
	return filepath.Join(outDir, strings.TrimSuffix(base, filepath.Ext(base))+"."+outputFormat)
}

func readOutput(artifact *lifecycle.Resource) (*transcription.Output, error) {
	data, err := os.ReadFile(artifact.Path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.EngineFailure("no transcription output found", err).
				WithDetail(logger.FieldPath, artifact.Path)
		}
		return nil, errors.IOFailure("transcription output read", err)
	}

	var out transcription.Output
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.EngineFailure("malformed transcription output", err)
	}
	out.Text = strings.TrimSpace(out.Text)
	return &out, nil
}
