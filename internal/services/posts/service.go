package posts

import (
	"context"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/Verdenroz/buff-ai/internal/domain/post"
	"github.com/Verdenroz/buff-ai/internal/metrics"
	"github.com/Verdenroz/buff-ai/pkg/errors"
	"github.com/Verdenroz/buff-ai/pkg/logger"
)

// DefaultLockTTL bounds how long a crashed run can block the next one
const DefaultLockTTL = 15 * time.Minute

// ErrAlreadyRunning is returned when another ingestion holds the lock
var ErrAlreadyRunning = errors.New("post ingestion already running")

// Scraper fetches the latest posts of the configured account
type Scraper interface {
	Scrape(ctx context.Context) ([]post.Post, error)
}

// Store is the subset of post.Service ingestion needs
type Store interface {
	NewPosts(ctx context.Context, authorKey string, posts []post.Post) ([]post.Post, error)
	Save(ctx context.Context, authorKey string, p *post.Post) error
}

// Classifier decides whether a post is worth keeping
type Classifier interface {
	IsRelevant(ctx context.Context, content string) (bool, error)
}

// Speech turns post text into audio
type Speech interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// AudioStore keeps narrations and hands out download links
type AudioStore interface {
	UploadAudio(ctx context.Context, authorKey string, p post.Post, audio []byte) (string, error)
	PresignGet(ctx context.Context, key string) (string, error)
}

// Notifier broadcasts a freshly saved post
type Notifier interface {
	NotifyPost(ctx context.Context, p post.Post, audioURL string) error
}

// Locker serializes ingestion runs across processes
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error
}

// Deps are the collaborators of the ingestion service. Speech, Audio,
// Notifier and Locker are optional.
type Deps struct {
	Scraper  Scraper
	Store    Store
	Filter   Classifier
	Speech   Speech
	Audio    AudioStore
	Notifier Notifier
	Locker   Locker
}

// Options tune a Service
type Options struct {
	AuthorKey string
	LockTTL   time.Duration
}

// IngestReport summarizes one ingestion run
type IngestReport struct {
	RunID    string        `json:"run_id"`
	Scraped  int           `json:"scraped"`
	New      int           `json:"new"`
	Relevant int           `json:"relevant"`
	Saved    int           `json:"saved"`
	Skipped  int           `json:"skipped"`
	Failed   int           `json:"failed"`
	Audio    int           `json:"audio"`
	Duration time.Duration `json:"duration"`
}

// Service runs the scrape, filter, narrate and store pipeline
type Service struct {
	deps      Deps
	authorKey string
	lockTTL   time.Duration
	log       *logger.Logger
}

// NewService validates deps and creates the ingestion service
func NewService(deps Deps, opts Options) (*Service, error) {
	if deps.Scraper == nil || deps.Store == nil || deps.Filter == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "scraper, store and filter are required")
	}

	authorKey := strings.ToLower(strings.TrimSpace(opts.AuthorKey))
	if authorKey == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "author key is required")
	}

	lockTTL := opts.LockTTL
	if lockTTL <= 0 {
		lockTTL = DefaultLockTTL
	}

	return &Service{
		deps:      deps,
		authorKey: authorKey,
		lockTTL:   lockTTL,
		log:       logger.Get().With("component", "post_ingest", "author", authorKey),
	}, nil
}

// AuthorKey returns the key posts are stored under
func (s *Service) AuthorKey() string {
	return s.authorKey
}

// Ingest runs one ingestion. Failures of a single post are logged and
// counted; only scraping and store lookups abort the run.
func (s *Service) Ingest(ctx context.Context) (*IngestReport, error) {
	report := &IngestReport{RunID: uuid.NewString()}
	start := time.Now()
	log := s.log.With("run_id", report.RunID)

	if s.deps.Locker != nil {
		lockKey := "ingest:" + s.authorKey
		ok, err := s.deps.Locker.AcquireLock(ctx, lockKey, s.lockTTL)
		if err != nil {
			return nil, errors.Wrap(err, "acquire ingestion lock")
		}
		if !ok {
			return nil, ErrAlreadyRunning
		}
		defer func() {
			// Release even when ctx was cancelled mid-run
			if err := s.deps.Locker.ReleaseLock(context.WithoutCancel(ctx), lockKey); err != nil {
				log.Warnf("failed to release ingestion lock: %v", err)
			}
		}()
	}

	scraped, err := s.deps.Scraper.Scrape(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "scrape posts")
	}
	report.Scraped = len(scraped)

	fresh, err := s.deps.Store.NewPosts(ctx, s.authorKey, scraped)
	if err != nil {
		return nil, errors.Wrap(err, "find new posts")
	}
	report.New = len(fresh)
	metrics.PostsIngested.WithLabelValues("duplicate").Add(float64(report.Scraped - report.New))

	for i := range fresh {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		s.ingestOne(ctx, log, &fresh[i], report)
	}

	report.Duration = time.Since(start)
	log.Infow("ingestion finished",
		"scraped", report.Scraped,
		"new", report.New,
		"relevant", report.Relevant,
		"saved", report.Saved,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"duration", report.Duration,
	)
	return report, nil
}

func (s *Service) ingestOne(ctx context.Context, log *logger.Logger, p *post.Post, report *IngestReport) {
	log = log.With("date", p.Date)

	relevant, err := s.deps.Filter.IsRelevant(ctx, p.Content)
	if err != nil {
		log.Warnf("skipping post, relevance check failed: %v", err)
		report.Failed++
		metrics.PostsIngested.WithLabelValues("failed").Inc()
		return
	}
	if !relevant {
		report.Skipped++
		metrics.PostsIngested.WithLabelValues("irrelevant").Inc()
		return
	}
	report.Relevant++

	p.TTS = s.narrate(ctx, log, *p)
	if p.TTS != "" {
		report.Audio++
	}

	if err := s.deps.Store.Save(ctx, s.authorKey, p); err != nil {
		log.Errorf("failed to save post: %v", err)
		report.Failed++
		metrics.PostsIngested.WithLabelValues("failed").Inc()
		return
	}
	report.Saved++
	metrics.PostsIngested.WithLabelValues("saved").Inc()

	s.notify(ctx, log, *p)
}

// narrate returns the blob key of the post's audio, or "" when it could not be produced
func (s *Service) narrate(ctx context.Context, log *logger.Logger, p post.Post) string {
	if s.deps.Speech == nil || s.deps.Audio == nil {
		return ""
	}

	audio, err := s.deps.Speech.Synthesize(ctx, p.Content)
	if err != nil {
		log.Warnf("speech synthesis failed, saving without audio: %v", err)
		return ""
	}

	key, err := s.deps.Audio.UploadAudio(ctx, s.authorKey, p, audio)
	if err != nil {
		log.Warnf("audio upload failed, saving without audio: %v", err)
		return ""
	}

	log.Debugf("narrated post into %s (%s)", key, humanize.Bytes(uint64(len(audio))))
	return key
}

func (s *Service) notify(ctx context.Context, log *logger.Logger, p post.Post) {
	if s.deps.Notifier == nil {
		return
	}

	var audioURL string
	if p.TTS != "" && s.deps.Audio != nil {
		url, err := s.deps.Audio.PresignGet(ctx, p.TTS)
		if err != nil {
			log.Warnf("failed to presign audio for alert: %v", err)
		} else {
			audioURL = url
		}
	}

	if err := s.deps.Notifier.NotifyPost(ctx, p, audioURL); err != nil {
		log.Warnf("failed to send post alert: %v", err)
	}
}
