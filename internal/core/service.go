package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// DefaultImportTimeout is the maximum duration for an import.
const DefaultImportTimeout = 2 * time.Minute

// ContentTypeCSV is the media type of exported documents.
const ContentTypeCSV = "text/csv; charset=utf-8"

// Options configures a Service. Zero values fall back to defaults.
type Options struct {
	ImportTimeout   time.Duration // Upper bound for one import
	LeaseWait       time.Duration // How long writers wait for the import lease
	MaxDocumentSize int64         // Largest document ImportReader accepts

	Backups      BackupStore // Optional object storage for backups
	BackupPrefix string      // Key prefix for backups

	Metrics *Metrics
	Audit   *AuditTrail
	Logger  *slog.Logger
	Now     func() time.Time
}

// Service provides the core business logic used by the web server and the CLI.
type Service struct {
	repo    Repository
	lease   *ImportLease
	audit   *AuditTrail
	metrics *Metrics
	logger  *slog.Logger
	now     func() time.Time

	importTimeout   time.Duration
	maxDocumentSize int64

	backups      BackupStore
	backupPrefix string
	lastBackup   string // Content of the last scheduled backup
	backedUp     bool   // A scheduled backup has been stored
}

// NewService creates a new Service over repo.
func NewService(repo Repository, opts Options) *Service {
	s := &Service{
		repo:            repo,
		lease:           NewImportLease(opts.LeaseWait),
		audit:           opts.Audit,
		metrics:         opts.Metrics,
		logger:          opts.Logger,
		now:             opts.Now,
		importTimeout:   opts.ImportTimeout,
		maxDocumentSize: opts.MaxDocumentSize,
		backups:         opts.Backups,
		backupPrefix:    opts.BackupPrefix,
	}
	if s.audit == nil {
		s.audit = NewAuditTrail(DefaultAuditCapacity)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.importTimeout <= 0 {
		s.importTimeout = DefaultImportTimeout
	}
	if s.maxDocumentSize <= 0 {
		s.maxDocumentSize = DefaultMaxDocumentSize
	}
	return s
}

// LeaseStatus reports who holds the import lease.
func (s *Service) LeaseStatus() ImportLeaseStatus {
	return s.lease.Status()
}

// WaitForDrain blocks until no import or edit is running.
func (s *Service) WaitForDrain(ctx context.Context) error {
	return s.lease.WaitForDrain(ctx)
}

// CompleteFileName is the download name of a sectioned export made at t.
func CompleteFileName(t time.Time) string {
	return "workout-complete-" + t.Local().Format("2006-01-02") + ".csv"
}

// ProgramFileName is the download name of a pretty-printed export made at t.
func ProgramFileName(t time.Time) string {
	return "workout-program-" + t.Local().Format("2006-01-02") + ".csv"
}

// ExportDocument encodes the whole program as a sectioned document.
func (s *Service) ExportDocument(ctx context.Context) (Export, error) {
	content, err := EncodeRepository(ctx, s.repo)
	if err != nil {
		return Export{}, err
	}
	s.metrics.observeExport("complete")
	s.audit.Record(ctx, AuditLogParams{Action: ActionExport})
	return Export{
		FileName:    CompleteFileName(s.now()),
		ContentType: ContentTypeCSV,
		Content:     content,
	}, nil
}

// ExportPrettyPrint renders the program as a flat sheet for reading.
func (s *Service) ExportPrettyPrint(ctx context.Context) (Export, error) {
	content, err := EncodePrettyRepository(ctx, s.repo)
	if err != nil {
		return Export{}, err
	}
	s.metrics.observeExport("pretty")
	s.audit.Record(ctx, AuditLogParams{Action: ActionPrettyExport})
	return Export{
		FileName:    ProgramFileName(s.now()),
		ContentType: ContentTypeCSV,
		Content:     content,
	}, nil
}

// DetectDocument classifies doc without importing it.
func (s *Service) DetectDocument(doc string) (Format, string) {
	f := DetectFormat(doc)
	return f, FormatDiagnostic(f)
}

// ImportReader reads a document from r and imports it.
func (s *Service) ImportReader(ctx context.Context, r io.Reader) (ImportResult, error) {
	doc, err := ReadDocument(r, s.maxDocumentSize)
	if err != nil {
		if errors.Is(err, ErrDocumentTooLarge) {
			return ImportResult{}, Wrap(KindValidation, "import.read", err)
		}
		return ImportResult{}, Wrap(KindInternal, "import.read", err)
	}
	return s.ImportDocument(ctx, doc)
}

// ImportDocument replaces the program with the one in doc.
//
// The import holds the lease for its whole run, so edits and other imports
// wait. On failure after the repository was cleared, the repository is left
// empty and the error says why.
func (s *Service) ImportDocument(ctx context.Context, doc string) (ImportResult, error) {
	importID := uuid.NewString()
	logger := s.logger.With("import_id", importID)

	if err := s.acquire(ctx, "import "+importID); err != nil {
		return ImportResult{ImportID: importID}, err
	}
	defer s.lease.Release()

	ctx, cancel := context.WithTimeout(ctx, s.importTimeout)
	defer cancel()

	var cleared bool
	dec := NewDecoder(s.repo, logger)
	dec.OnState = func(state DecodeState, section string) {
		s.metrics.observeState(state)
		if state == StateClearing {
			cleared = true
		}
	}

	logger.Info("import started", "bytes", len(doc))
	start := s.now()
	res, err := dec.Decode(ctx, doc)
	res.ImportID = importID
	res.Duration = s.now().Sub(start)
	s.metrics.observeImport(res, err)

	if err != nil {
		logger.Warn("import failed",
			"kind", KindOf(err).String(),
			"error", err,
			"problems", len(ProblemsOf(err)),
			"cleared", cleared,
		)
		if cleared {
			s.audit.Record(ctx, AuditLogParams{
				Action:   ActionImportRollback,
				ImportID: importID,
				Reason:   err.Error(),
			})
		}
		return res, err
	}

	logger.Info("import completed",
		"format", string(res.Format),
		"rows", res.Counts.Total(),
		"warnings", len(res.Warnings),
		"duration_ms", res.Duration.Milliseconds(),
	)
	s.audit.Record(ctx, AuditLogParams{
		Action:       ActionImport,
		ImportID:     importID,
		RowsAffected: res.Counts.Total(),
	})
	return res, nil
}

// AuditEntries returns recent audit entries, newest first.
func (s *Service) AuditEntries(filter AuditLogFilter) []AuditEntry {
	return s.audit.Entries(filter)
}

// acquire takes the import lease, tagging a busy lease as CONFLICT.
func (s *Service) acquire(ctx context.Context, holder string) error {
	err := s.lease.Acquire(ctx, holder)
	if errors.Is(err, ErrImportInProgress) {
		return Wrap(KindConflict, "lease", err)
	}
	return err
}

// mutate runs fn under the import lease and persists its effects.
func (s *Service) mutate(ctx context.Context, target string, fn func(ctx context.Context) error) error {
	if err := s.acquire(ctx, "edit "+target); err != nil {
		return err
	}
	defer s.lease.Release()

	if err := fn(ctx); err != nil {
		return err
	}
	if err := s.repo.Persist(ctx); err != nil {
		return Wrap(KindInternal, "persist", err)
	}
	s.audit.Record(ctx, AuditLogParams{Action: ActionEdit, Target: target})
	return nil
}
