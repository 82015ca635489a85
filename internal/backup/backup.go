// Package backup shells out to the postgres client tools for binary database
// dumps. Only the data is dumped (custom format); schema is owned by the
// application's migrations.
package backup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/stockpos/stockpos/config"
)

// Runner executes pg_dump / pg_restore against the configured database.
type Runner struct {
	db  config.DBConfig
	dir string
}

func NewRunner(db config.DBConfig, dir string) *Runner {
	return &Runner{db: db, dir: dir}
}

// Dir returns the directory scheduled backups are written to.
func (r *Runner) Dir() string {
	return r.dir
}

// Backup writes a custom-format, data-only dump to path.
func (r *Runner) Backup(ctx context.Context, path string) error {
	cmd := exec.CommandContext(ctx, "pg_dump",
		"-U", r.db.User,
		"-h", r.db.Host,
		"-p", strconv.Itoa(r.db.Port),
		"-F", "c", "-b", "-a",
		"-f", path,
		r.db.Name,
	)
	cmd.Env = append(os.Environ(), "PGPASSWORD="+r.db.Passwd)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "pg_dump failed: %s", strings.TrimSpace(string(out)))
	}
	zap.L().Info("database backup written", zap.String("path", path))
	return nil
}

// Restore loads a dump produced by Backup into the configured database.
func (r *Runner) Restore(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return errors.Wrap(err, "backup file not accessible")
	}
	cmd := exec.CommandContext(ctx, "pg_restore",
		"-U", r.db.User,
		"-h", r.db.Host,
		"-p", strconv.Itoa(r.db.Port),
		"-d", r.db.Name,
		path,
	)
	cmd.Env = append(os.Environ(), "PGPASSWORD="+r.db.Passwd)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "pg_restore failed: %s", strings.TrimSpace(string(out)))
	}
	zap.L().Info("database restore completed", zap.String("path", path))
	return nil
}

// RunScheduled writes a timestamped dump into the backup directory and
// returns its path.
func (r *Runner) RunScheduled(ctx context.Context) (string, error) {
	name := fmt.Sprintf("%s-%s.dump", r.db.Name, time.Now().Format("20060102-150405"))
	path := filepath.Join(r.dir, name)
	if err := r.Backup(ctx, path); err != nil {
		return "", err
	}
	return path, nil
}

// Prune removes scheduled dumps older than keepDays.
func (r *Runner) Prune(keepDays int) error {
	if keepDays <= 0 {
		return nil
	}
	cutoff := time.Now().AddDate(0, 0, -keepDays)
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".dump") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(r.dir, entry.Name())
			if err := os.Remove(path); err != nil {
				zap.L().Warn("failed to prune old backup", zap.String("path", path), zap.Error(err))
			} else {
				zap.L().Info("pruned old backup", zap.String("path", path))
			}
		}
	}
	return nil
}
