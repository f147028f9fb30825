package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"

	"mmdu/config"
	"mmdu/logger"
	"mmdu/output"
	"mmdu/policy"
	"mmdu/usage"
)

// Run performs one full cycle for dir: apply the policy, consume the
// report, and write every requested output encoding.
func Run(ctx context.Context, dir string, cfg *config.Config) error {
	dir = filepath.Clean(dir)

	reportPath, cleanup, err := policy.Run(ctx, dir, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	var reader io.Reader

	report, err := policy.OpenReport(reportPath, cfg.Filtered())
	switch {
	case err == nil:
		defer report.Close()

		bar := newProgressBar(dir)
		defer func() { _ = bar.Finish() }()

		reader = io.TeeReader(report, bar)

	case errors.Is(err, policy.ErrNoMatches):
		// an empty result, not a failure
		logger.Infof("%s: no objects matched the filter", dir)
		reader = strings.NewReader("")

	default:
		return err
	}

	if cfg.NcduMode() {
		tree, err := usage.BuildTree(dir, reader)
		if err != nil {
			return err
		}
		return writeNcduOutputs(dir, tree, cfg)
	}

	var sums map[string]usage.Acc
	if cfg.MaxDepth > 0 {
		sums, err = usage.Depth(dir, cfg.MaxDepth, reader, cfg.CountLinks)
	} else {
		var acc usage.Acc
		if acc, err = usage.Total(reader, cfg.CountLinks); err == nil {
			sums = map[string]usage.Acc{dir: acc}
		}
	}
	if err != nil {
		return err
	}

	return writeDuOutput(dir, sums, cfg)
}

// writeNcduOutputs writes the encodings derivable from a built tree.
// The du-style numbers come from the tree reducer so a single scan can
// serve both formats.
func writeNcduOutputs(dir string, tree *usage.FSTree, cfg *config.Config) error {
	if cfg.Ncdu {
		if err := writeTo(os.Stdout, func(w io.Writer) error {
			return output.WriteNcdu(w, tree)
		}); err != nil {
			return err
		}
	}

	if cfg.NcduReport != "" {
		if err := writeReport(dir, cfg.NcduReport, func(w io.Writer) error {
			return output.WriteNcdu(w, tree)
		}); err != nil {
			return err
		}
	}

	if cfg.DuRequested() {
		var sums map[string]usage.Acc
		if cfg.MaxDepth > 0 {
			sums = tree.Depth(cfg.MaxDepth, cfg.ByteMode, cfg.CountLinks)
		} else {
			sums = map[string]usage.Acc{dir: tree.Total(cfg.ByteMode, cfg.CountLinks)}
		}
		return writeDuOutput(dir, sums, cfg)
	}

	return nil
}

func writeDuOutput(dir string, sums map[string]usage.Acc, cfg *config.Config) error {
	write := func(w io.Writer) error {
		return output.WriteDu(w, sums, cfg)
	}

	if cfg.DuReport != "" {
		return writeReport(dir, cfg.DuReport, write)
	}
	return writeTo(os.Stdout, write)
}

func writeReport(dir, name string, write func(io.Writer) error) error {
	f, err := output.CreateReport(dir, name)
	if err != nil {
		return err
	}
	defer f.Close()

	return writeTo(f, write)
}

func writeTo(w io.Writer, write func(io.Writer) error) error {
	buf, flush := output.Buffered(w)
	if err := write(buf); err != nil {
		return err
	}
	return flush()
}

func newProgressBar(dir string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(fmt.Sprintf("Summing %s", dir)),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetVisibility(progressVisible()),
	)
}

func progressVisible() bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv("MMDU_DISABLE_PROGRESS")))
	return value != "1" && value != "true" && value != "yes" && value != "on"
}
