package job

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/scribekit/errors"
	"github.com/kbukum/scribekit/ingest"
	"github.com/kbukum/scribekit/lifecycle"
	"github.com/kbukum/scribekit/logger"
	"github.com/kbukum/scribekit/observability"
	"github.com/kbukum/scribekit/resilience"
	"github.com/kbukum/scribekit/transcription"
	"github.com/kbukum/scribekit/youtube"
)

// Ingestor produces registered audio files from sources.
type Ingestor interface {
	Ingest(ctx context.Context, scope *lifecycle.Scope, src ingest.Source) (*ingest.Audio, error)
}

// MetadataSource looks up remote video metadata.
type MetadataSource interface {
	Metadata(ctx context.Context, videoURL string) (*youtube.VideoMetadata, error)
}

// Option configures a Service.
type Option func(*Service)

// WithBulkhead caps concurrent jobs. Without one jobs are not limited.
func WithBulkhead(b *resilience.Bulkhead) Option {
	return func(s *Service) { s.bulkhead = b }
}

// WithMetrics records job, stage and confidence metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithMetadataSource enables GetRemoteVideoMetadata.
func WithMetadataSource(m MetadataSource) Option {
	return func(s *Service) { s.metadata = m }
}

// WithLogger replaces the default component logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// Service is the transcription core. It is safe for concurrent use; jobs
// share nothing but the scratch directory.
type Service struct {
	cfg      Config
	ingestor Ingestor
	engine   transcription.Engine
	scorer   transcription.Scorer
	metadata MetadataSource
	bulkhead *resilience.Bulkhead
	metrics  *observability.Metrics
	log      *logger.Logger
}

// NewService creates a Service. Unset config fields take their defaults.
func NewService(cfg Config, ingestor Ingestor, engine transcription.Engine, opts ...Option) *Service {
	cfg.ApplyDefaults()
	s := &Service{
		cfg:      cfg,
		ingestor: ingestor,
		engine:   engine,
		scorer:   transcription.NewScorer(cfg.Scoring),
		log:      logger.WithComponent("job"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TranscribeFromFile transcribes an uploaded file. The file is removed when
// the job ends, whatever the outcome.
func (s *Service) TranscribeFromFile(ctx context.Context, path, mimeType string, sizeBytes int64) (*transcription.Result, error) {
	return s.Run(ctx, ingest.UploadedFile{Path: path, MimeType: mimeType, SizeBytes: sizeBytes}).Outcome()
}

// TranscribeFromLiveRecording transcribes an in-memory recording. An empty
// format means the configured default container.
func (s *Service) TranscribeFromLiveRecording(ctx context.Context, data []byte, format string) (*transcription.Result, error) {
	return s.Run(ctx, ingest.LiveRecording{Data: data, Format: format}).Outcome()
}

// TranscribeFromRemoteVideo downloads and transcribes a remote video. The
// result carries the video metadata.
func (s *Service) TranscribeFromRemoteVideo(ctx context.Context, videoURL string) (*transcription.Result, error) {
	return s.Run(ctx, ingest.RemoteVideo{URL: videoURL}).Outcome()
}

// GetRemoteVideoMetadata returns title, length and author of a video
// without downloading it.
func (s *Service) GetRemoteVideoMetadata(ctx context.Context, videoURL string) (*youtube.VideoMetadata, error) {
	if s.metadata == nil {
		return nil, errors.ServiceUnavailable("remote video lookup")
	}
	ctx, span := observability.StartSpan(ctx, "youtube.metadata")
	defer span.End()

	meta, err := s.metadata.Metadata(ctx, videoURL)
	if err != nil {
		appErr := toAppError(err)
		observability.SetSpanError(ctx, appErr)
		return nil, appErr
	}
	return meta, nil
}

// Run executes one job. Inputs the source owns are claimed first; all
// resources are released before Run returns, including when the job is
// rejected or canceled while waiting for a slot.
func (s *Service) Run(ctx context.Context, src ingest.Source) (j *Job) {
	j = &Job{ID: uuid.NewString(), Source: src.Kind()}
	start := time.Now()

	ctx = logger.ContextWithJobID(ctx, j.ID)
	log := s.log.WithContext(ctx)
	ctx, op := observability.StartOperation(ctx, s.metrics, observability.SpanJob, j.ID, string(j.Source))
	scope := lifecycle.NewScope(s.cfg.ScratchDir, lifecycle.WithLogger(log))
	src.Claim(scope)

	defer func() {
		if r := recover(); r != nil {
			j.Result = nil
			j.Err = errors.Internal(fmt.Errorf("job panicked: %v", r))
		}
		j.CleanupErrors = scope.ReleaseAll()
		j.Resources = scope.Resources()
		j.Duration = time.Since(start)
		s.finish(ctx, op, log, j)
	}()

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	var err error
	if s.bulkhead == nil {
		j.Result, err = s.execute(ctx, op, scope, src)
	} else {
		j.Result, err = resilience.ExecuteWithResult(s.bulkhead, ctx, func() (*transcription.Result, error) {
			return s.execute(ctx, op, scope, src)
		})
		if resilience.IsRejection(err) {
			err = errors.ServiceUnavailable("transcription service").WithCause(err)
		}
	}
	if err != nil {
		j.Result = nil
		if _, ok := errors.AsAppError(err); !ok {
			if ctxErr := errors.FromContext(ctx, "transcription job"); ctxErr != nil {
				err = ctxErr
			}
		}
		j.Err = toAppError(err)
	}
	return j
}

func (s *Service) execute(ctx context.Context, op *observability.Operation, scope *lifecycle.Scope, src ingest.Source) (*transcription.Result, error) {
	stageCtx, end := op.Stage(ctx, observability.SpanIngest)
	audio, err := s.ingestor.Ingest(stageCtx, scope, src)
	end(stageStatus(err), err)
	if err != nil {
		return nil, err
	}

	stageCtx, end = op.Stage(ctx, observability.SpanEngine)
	out, err := s.engine.Execute(stageCtx, transcription.Request{
		AudioPath: audio.Path,
		Language:  s.cfg.Language,
		Scope:     scope,
	})
	end(stageStatus(err), err)
	if err != nil {
		return nil, err
	}

	_, end = op.Stage(ctx, observability.SpanScore)
	confidence := s.scorer.Score(out)
	end(observability.OutcomeOK, nil)

	result := transcription.Assemble(out, confidence, sourceMetadata(audio.Metadata))
	if s.metrics != nil {
		s.metrics.RecordConfidence(ctx, string(audio.Source), confidence)
	}
	return &result, nil
}

func (s *Service) finish(ctx context.Context, op *observability.Operation, log *logger.Logger, j *Job) {
	fields := logger.MergeWithDuration(logger.Fields(
		logger.FieldSource, string(j.Source),
		"resources", len(j.Resources),
	), j.Duration)
	if len(j.CleanupErrors) > 0 {
		fields["cleanup_errors"] = len(j.CleanupErrors)
	}

	if j.Err != nil {
		op.End(ctx, string(j.Err.Code), j.Err)
		fields["kind"] = string(j.Err.Code)
		fields[logger.FieldError] = j.Err.Error()
		if j.Err.Code == errors.ErrCodeInvalidInput {
			log.Info("transcription rejected", fields)
		} else {
			log.Warn("transcription failed", fields)
		}
		return
	}

	op.End(ctx, observability.OutcomeOK, nil)
	fields["language"] = j.Result.Language
	fields["confidence"] = j.Result.Confidence
	log.Info("transcription completed", fields)
}

// HealthCheckers reports the engine's availability.
func (s *Service) HealthCheckers() []observability.HealthChecker {
	return []observability.HealthChecker{
		observability.AvailabilityCheck("engine."+s.engine.Name(), s.engine.IsAvailable),
	}
}

func stageStatus(err error) string {
	if err == nil {
		return observability.OutcomeOK
	}
	return string(errors.KindOf(err))
}

func toAppError(err error) *errors.AppError {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}
	return errors.Internal(err)
}

func sourceMetadata(m *youtube.VideoMetadata) *transcription.SourceMetadata {
	if m == nil {
		return nil
	}
	return &transcription.SourceMetadata{
		Title:         m.Title,
		LengthSeconds: m.LengthSeconds,
		Author:        m.Author,
	}
}
