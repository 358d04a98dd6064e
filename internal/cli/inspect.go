package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/example/restdoc/internal/config"
	"github.com/example/restdoc/pkg/restdoc"
	"github.com/example/restdoc/pkg/source"
)

// InspectConfig holds configuration for `restdoc inspect`.
type InspectConfig struct {
	Sources        []string
	Exclude        []string
	Output         string
	Format         string
	IncludeInvalid bool
	Labels         []string
	Jobs           int
	MaxDepth       int
}

func newInspectCommand(a *app) *cobra.Command {
	var cfg InspectConfig

	cmd := &cobra.Command{
		Use:   "inspect [dir...]",
		Short: "Print the resolved restdoc metadata of every declaration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Sources = args
			if a.file != nil {
				mergeFileConfig(&cfg, a.file.Inspect, cmd.Flags().Changed)
			}
			if len(cfg.Sources) == 0 {
				cfg.Sources = []string{"."}
			}
			return RunInspect(cmd.Context(), &cfg, cmd.OutOrStdout(), a.logger)
		},
	}

	cmd.Flags().StringSliceVar(&cfg.Exclude, "exclude", nil, "Glob patterns (doublestar) of files or directories to skip")
	cmd.Flags().StringVarP(&cfg.Output, "output", "o", "-", "Path to output file or '-' for stdout")
	cmd.Flags().StringVarP(&cfg.Format, "format", "f", "text", "Output format: text, json or yaml")
	cmd.Flags().BoolVar(&cfg.IncludeInvalid, "include-invalid", false, "Also report declarations that are not documentation targets")
	cmd.Flags().StringSliceVar(&cfg.Labels, "label", nil, "Only report declarations carrying one of these labels")
	cmd.Flags().IntVarP(&cfg.Jobs, "jobs", "j", 0, "Number of declarations resolved in parallel (0 = GOMAXPROCS)")
	cmd.Flags().IntVar(&cfg.MaxDepth, "max-depth", restdoc.DefaultMaxDepth, "Maximum parent chain length")

	return cmd
}

// mergeFileConfig applies file values for every flag not set explicitly.
func mergeFileConfig(cfg *InspectConfig, file config.Inspect, changed func(string) bool) {
	if len(cfg.Sources) == 0 {
		cfg.Sources = file.Sources
	}
	if !changed("exclude") && len(file.Exclude) > 0 {
		cfg.Exclude = file.Exclude
	}
	if !changed("output") && file.Output != "" {
		cfg.Output = file.Output
	}
	if !changed("format") && file.Format != "" {
		cfg.Format = file.Format
	}
	if !changed("include-invalid") && file.IncludeInvalid {
		cfg.IncludeInvalid = true
	}
	if !changed("label") && len(file.Labels) > 0 {
		cfg.Labels = file.Labels
	}
	if !changed("jobs") && file.Jobs > 0 {
		cfg.Jobs = file.Jobs
	}
	if !changed("max-depth") && file.MaxDepth > 0 {
		cfg.MaxDepth = file.MaxDepth
	}
}

// RunInspect indexes the sources, resolves every declaration and writes the
// report to stdout, or to cfg.Output when it is a path.
func RunInspect(ctx context.Context, cfg *InspectConfig, stdout io.Writer, logger *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := newReportWriter(cfg.Format); err != nil {
		return err
	}

	index := source.NewIndex(source.WithExclude(cfg.Exclude...), source.WithLogger(logger))
	for _, dir := range cfg.Sources {
		if err := index.ParseDirectory(dir); err != nil {
			return fmt.Errorf("failed to parse directory %s: %w", dir, err)
		}
	}
	logger.Info("indexed sources", "declarations", index.Len(), "sources", cfg.Sources)

	reports, err := resolveAll(ctx, index.Decls(), cfg, logger)
	if err != nil {
		return err
	}
	reports = filterReports(reports, cfg)

	return writeOutput(reports, cfg, stdout)
}

func resolveAll(ctx context.Context, decls []*source.Decl, cfg *InspectConfig, logger *slog.Logger) ([]Report, error) {
	jobs := cfg.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Each goroutine writes its own index, no mutex needed.
	reports := make([]Report, len(decls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, decl := range decls {
		i, decl := i, decl
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := restdoc.New(decl,
				restdoc.WithLogger(logger),
				restdoc.WithMaxDepth(cfg.MaxDepth),
			)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", decl.Name(), err)
			}
			reports[i] = newReport(decl, doc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func filterReports(reports []Report, cfg *InspectConfig) []Report {
	out := reports[:0]
	for _, r := range reports {
		if !r.Valid && !cfg.IncludeInvalid {
			continue
		}
		if len(cfg.Labels) > 0 && !slices.ContainsFunc(cfg.Labels, func(l string) bool {
			return slices.Contains(r.Labels, l)
		}) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func writeOutput(reports []Report, cfg *InspectConfig, stdout io.Writer) error {
	w, err := newReportWriter(cfg.Format)
	if err != nil {
		return err
	}

	if cfg.Output == "" || cfg.Output == "-" {
		return w.Write(stdout, reports)
	}

	outDir := filepath.Dir(cfg.Output)
	if fi, err := os.Stat(outDir); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("output directory %s does not exist", outDir)
		}
		return err
	} else if !fi.IsDir() {
		return fmt.Errorf("output path %s is not a directory", outDir)
	}

	f, err := os.Create(filepath.Clean(cfg.Output))
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return w.Write(f, reports)
}
