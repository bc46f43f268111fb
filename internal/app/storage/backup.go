package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/adhocore/gronx"
	"github.com/rs/zerolog"

	"messenger/internal/pkg/logx"
	"messenger/internal/pkg/metrics"
)

const backupPrefix = "database-"

// BackupConfig controls scheduled document backups.
type BackupConfig struct {
	// Cron is a standard five-field cron expression. Empty means daily at 02:00.
	Cron string

	// Dir receives one timestamped JSON file per run.
	Dir string

	// Keep is the number of most recent backups retained. Zero keeps all.
	Keep int
}

// Backup copies the document held by a DocumentStore to local files on a
// cron schedule.
type Backup struct {
	src    DocumentStore
	cfg    BackupConfig
	now    func() time.Time
	logger zerolog.Logger
}

// NewBackup validates cfg and prepares the backup directory.
func NewBackup(src DocumentStore, cfg BackupConfig) (*Backup, error) {
	if cfg.Cron == "" {
		cfg.Cron = "0 2 * * *"
	}
	if !gronx.IsValid(cfg.Cron) {
		return nil, fmt.Errorf("invalid backup cron expression: %s", cfg.Cron)
	}
	if err := os.MkdirAll(cfg.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	return &Backup{
		src:    src,
		cfg:    cfg,
		now:    time.Now,
		logger: logx.Component("backup"),
	}, nil
}

// Run waits for each cron tick and backs the document up, until ctx is cancelled.
func (b *Backup) Run(ctx context.Context) {
	b.logger.Info().Str("cron", b.cfg.Cron).Str("dir", b.cfg.Dir).Msg("Backup scheduler started.")

	for {
		next, err := gronx.NextTickAfter(b.cfg.Cron, b.now().UTC(), false)
		if err != nil {
			b.logger.Error().Err(err).Msg("Failed to compute next backup tick.")
			next = b.now().Add(time.Minute)
		}

		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Backup scheduler stopped.")
			return
		case <-time.After(time.Until(next)):
			if _, err := b.RunOnce(ctx); err != nil {
				b.logger.Error().Err(err).Msg("Scheduled backup failed.")
			}
		}
	}
}

// RunOnce writes one backup file and prunes old ones. It returns the path
// of the new file.
func (b *Backup) RunOnce(ctx context.Context) (string, error) {
	doc, err := b.src.Load(ctx)
	if err != nil {
		metrics.BackupsTotal.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("failed to read document from %s: %w", b.src.Name(), err)
	}

	name := backupPrefix + b.now().UTC().Format("20060102T150405.000") + ".json"
	path := filepath.Join(b.cfg.Dir, name)
	if err := os.WriteFile(path, doc, 0o600); err != nil {
		metrics.BackupsTotal.WithLabelValues("failed").Inc()
		return "", err
	}
	metrics.BackupsTotal.WithLabelValues("ok").Inc()

	if err := b.prune(); err != nil {
		b.logger.Warn().Err(err).Msg("Failed to prune old backups.")
	}

	b.logger.Info().Str("path", path).Int("bytes", len(doc)).Msg("Document backed up.")
	return path, nil
}

func (b *Backup) prune() error {
	if b.cfg.Keep <= 0 {
		return nil
	}

	entries, err := os.ReadDir(b.cfg.Dir)
	if err != nil {
		return err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), backupPrefix) {
			names = append(names, e.Name())
		}
	}
	if len(names) <= b.cfg.Keep {
		return nil
	}

	// Timestamped names sort chronologically.
	slices.Sort(names)
	for _, name := range names[:len(names)-b.cfg.Keep] {
		if err := os.Remove(filepath.Join(b.cfg.Dir, name)); err != nil {
			return err
		}
	}
	return nil
}
