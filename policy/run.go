package policy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"mmdu/config"
	"mmdu/logger"
)

// ErrNoMatches means the scan produced no report because the filter
// matched no objects. Callers treat this as an empty result.
var ErrNoMatches = errors.New("no objects matched the filter")

// ErrSourceUnavailable means the report could not be opened for any
// other reason.
var ErrSourceUnavailable = errors.New("policy report unavailable")

// Run applies the size policy to dir with mmapplypolicy and returns the
// path of the deferred list report. The caller has to call cleanup once
// the report has been consumed.
func Run(ctx context.Context, dir string, cfg *config.Config) (string, func(), error) {
	tmp, err := os.MkdirTemp(cfg.MMLocalWorkDir, "mmdu-*")
	if err != nil {
		return "", nil, fmt.Errorf("creating temp dir: %w", err)
	}
	cleanup := func() {
		if err := os.RemoveAll(tmp); err != nil {
			logger.Warnf("Failed to remove temp dir %s: %v", tmp, err)
		}
	}

	rules, err := Rules(cfg)
	if err != nil {
		cleanup()
		return "", nil, err
	}

	policyFile := filepath.Join(tmp, ".policy")
	if err := os.WriteFile(policyFile, []byte(rules), 0600); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("writing policy file: %w", err)
	}

	prefix := filepath.Join(tmp, "mmdu")

	cmd := exec.CommandContext(ctx, "mmapplypolicy", commandArgs(dir, policyFile, prefix, cfg)...)
	cmd.Stdout = io.Discard
	cmd.Stderr = os.Stderr

	logger.Debugf("Running %v", cmd.Args)

	if err := cmd.Run(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("mmapplypolicy unsuccessful: %w", err)
	}

	return fmt.Sprintf("%s.list.%s", prefix, ListName), cleanup, nil
}

// commandArgs builds the mmapplypolicy argument list. The report is
// deferred so this tool owns all post-processing.
func commandArgs(dir, policyFile, prefix string, cfg *config.Config) []string {
	args := []string{dir}

	if cfg.MMNodes != "" {
		args = append(args, "-N", cfg.MMNodes)
	}
	if cfg.MMGlobalWorkDir != "" {
		args = append(args, "-g", cfg.MMGlobalWorkDir)
	}
	if cfg.MMLocalWorkDir != "" {
		args = append(args, "-s", cfg.MMLocalWorkDir)
	}

	return append(args,
		"-P", policyFile,
		"-f", prefix,
		"-I", "defer",
		"-L", "0",
	)
}

// OpenReport opens a list report. A missing report after a filtered
// scan is the expected outcome of a filter without matches and maps to
// ErrNoMatches; any other failure maps to ErrSourceUnavailable.
func OpenReport(path string, filtered bool) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err == nil {
		return f, nil
	}
	if os.IsNotExist(err) && filtered {
		return nil, fmt.Errorf("%w: %s", ErrNoMatches, path)
	}
	return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
}
