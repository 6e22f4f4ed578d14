package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmylchreest/scrapemd/internal/logger"
	"github.com/jmylchreest/scrapemd/internal/output"
	"github.com/jmylchreest/scrapemd/pkg/scrapemd"
)

func init() {
	rootCmd.Flags().Bool("images", false, "download the page's images and write batch manifests instead of Markdown")
	addSettingsFlags(rootCmd.PersistentFlags(), viper.GetViper())
}

// job is a single CLI invocation.
type job struct {
	source     string
	outputFile string
	images     bool
	settings   settings
}

func runConvert(cmd *cobra.Command, args []string) error {
	initLogger()
	cmd.SilenceUsage = true

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	j := job{source: args[0], outputFile: output.DefaultMarkdownFile}
	if len(args) > 1 {
		j.outputFile = args[1]
	}
	j.images, _ = cmd.Flags().GetBool("images")

	s, err := loadSettings(viper.GetViper())
	if err != nil {
		return report(cmd.OutOrStdout(), output.Result{}, err)
	}
	j.settings = s

	res, err := run(ctx, j)
	return report(cmd.OutOrStdout(), res, err)
}

// report prints exactly one result object on w. A failure is returned
// marked as reported unless printing it failed.
func report(w io.Writer, res output.Result, err error) error {
	if err != nil {
		logger.Error("conversion failed", "error", err)
		res = output.Failure(err)
	}
	if perr := output.Print(w, res); perr != nil {
		logger.Error("failed to print result", "error", perr)
		if err == nil {
			return perr
		}
		return err
	}
	if err != nil {
		return &reportedError{err: err}
	}
	return nil
}

// sourceArgs accepts a source and an optional output file.
func sourceArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.RangeArgs(1, 2)(cmd, args); err != nil {
		return usageFailure(cmd, err)
	}
	return nil
}

// usageFailure prints argument and flag errors of the root command as a
// failure result. Subcommands keep cobra's plain error.
func usageFailure(cmd *cobra.Command, err error) error {
	if cmd.HasParent() || errors.Is(err, pflag.ErrHelp) {
		return err
	}
	cmd.SilenceUsage = true
	return report(cmd.OutOrStdout(), output.Result{}, fmt.Errorf("%w: %w", ErrUsage, err))
}

// run executes a job. Panics are logged with their stack and returned as
// errors so a result object is always printed.
func run(ctx context.Context, j job) (res output.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("unexpected failure", "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("unexpected failure: %v", r)
		}
	}()

	f, err := j.settings.newFetcher()
	if err != nil {
		return res, err
	}

	s, err := scrapemd.New(j.settings.options(f)...)
	if err != nil {
		_ = f.Close()
		return res, err
	}
	defer func() { _ = s.Close() }()

	log := logger.With("source", j.source, "output", j.outputFile)

	if j.images {
		log.Info("extracting images", "fetcher", f.Type(), "dir", j.settings.OutputDir)
		set, err := s.Images(ctx, j.source)
		if err != nil {
			return res, err
		}
		files, err := output.WriteBatches(j.outputFile, set.Batches)
		if err != nil {
			return res, err
		}
		log.Info("wrote image manifests", "files", len(files), "images", set.Count())
		return output.ImageSuccess(files, set.Count()), nil
	}

	log.Info("converting to markdown", "fetcher", f.Type())
	doc, err := s.Markdown(ctx, j.source)
	if err != nil {
		return res, err
	}
	files, err := output.WriteChunks(j.outputFile, doc.Chunks)
	if err != nil {
		return res, err
	}
	log.Info("wrote markdown", "files", len(files))
	return output.Success(files), nil
}
