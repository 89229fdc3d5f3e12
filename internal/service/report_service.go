package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/wikimedia/wmcs-edits/internal/classify"
	"github.com/wikimedia/wmcs-edits/internal/dblist"
	"github.com/wikimedia/wmcs-edits/internal/domain"
	"github.com/wikimedia/wmcs-edits/internal/report"
	"github.com/wikimedia/wmcs-edits/internal/storage"
)

// ReportService counts edits per open wiki and renders the report.
type ReportService struct {
	sets    dblist.SetResolver
	opener  storage.Opener
	table   *classify.Table
	timeout time.Duration
	logger  *zap.Logger
}

// NewReportService creates a new ReportService. A zero timeout disables the
// per-wiki deadline.
func NewReportService(sets dblist.SetResolver, opener storage.Opener, table *classify.Table, timeout time.Duration, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		sets:    sets,
		opener:  opener,
		table:   table,
		timeout: timeout,
		logger:  logger,
	}
}

// CountEdits counts total and internal edits of dbname inside the window.
// The connection is released before returning, whatever the outcome.
func (s *ReportService) CountEdits(ctx context.Context, dbname string, w domain.Window) (*domain.WikiEditStats, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	editLog, err := s.opener.Open(ctx, dbname)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := editLog.Close(); err != nil {
			s.logger.Warn("Closing connection failed", zap.String("wiki", dbname), zap.Error(err))
		}
	}()

	counter := classify.NewCounter(dbname, s.table)
	start, end := w.Bounds()
	if err := editLog.EachEditIP(ctx, start, end, counter.Observe); err != nil {
		return nil, err
	}
	return counter.Stats(), nil
}

// Collect counts every open wiki in turn. Wikis failing with a recoverable
// error are logged and left out of the report; any other error aborts the run.
func (s *ReportService) Collect(ctx context.Context, w domain.Window) (*domain.Report, error) {
	wikis, err := dblist.OpenWikis(s.sets)
	if err != nil {
		return nil, fmt.Errorf("listing open wikis: %w", err)
	}

	rep := domain.NewReport(w)
	for _, dbname := range wikis.Sorted() {
		s.logger.Info("Processing", zap.String("wiki", dbname))

		stats, err := s.CountEdits(ctx, dbname, w)
		if err != nil {
			if ctx.Err() != nil || !domain.IsRecoverable(err) {
				return nil, fmt.Errorf("counting %s: %w", dbname, err)
			}
			s.logger.Error("Skipping wiki", zap.String("wiki", dbname), zap.Error(err))
			rep.Skip(dbname)
			continue
		}
		rep.Add(stats)
	}

	total, internal := rep.Totals()
	s.logger.Info("Collected edit counts",
		zap.Stringer("window", w),
		zap.Int("wikis", len(rep.Stats)),
		zap.Int("skipped", len(rep.Skipped)),
		zap.Int64("total", total),
		zap.Int64("internal", internal))
	return rep, nil
}

// Run collects the report and writes it to out.
func (s *ReportService) Run(ctx context.Context, w domain.Window, out io.Writer) (*domain.Report, error) {
	rep, err := s.Collect(ctx, w)
	if err != nil {
		return nil, err
	}
	if err := report.Write(out, rep); err != nil {
		return nil, fmt.Errorf("writing report: %w", err)
	}
	return rep, nil
}
