package main

import (
	"fmt"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vcfdump/internal/export"
	"github.com/inodb/vcfdump/internal/genome"
	"github.com/inodb/vcfdump/internal/output"
	"github.com/inodb/vcfdump/internal/store"
	"github.com/inodb/vcfdump/internal/variant"
)

type exportOptions struct {
	Studies     []string `validate:"required,min=1,dive,required"`
	Region      string   `validate:"required"`
	OutDir      string   `validate:"required"`
	Compress    bool
	Fasta       string `validate:"omitempty,file"`
	Workers     int    `validate:"gte=0"`
	MetricsFile string
}

func newExportCmd() *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a region as one VCF file per study",
		Long: `Rebuild the multi-sample VCF records of a region from the decomposed
variants in the store, writing one file per study.

Variants that cannot be rebuilt for a study (for example an indel alternate
whose original line was not kept at load time) are skipped and counted.`,
		Example: `  vcfdump export --study 7 --study 8 --region 20:61000-69000
  vcfdump export --study 7 --region 20 --out exports --compress
  vcfdump export --study 7 --region 1:1000-2000 --fasta GRCh38.fa.gz`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.OutDir = viper.GetString("export.output_dir")
			opts.Compress = viper.GetBool("export.compress")
			opts.Fasta = viper.GetString("reference.fasta")
			opts.Workers = viper.GetInt("export.workers")
			return runExport(cmd, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Studies, "study", nil, "Study ID to export (repeatable)")
	cmd.Flags().StringVar(&opts.Region, "region", "", "Region: CHR, CHR:START or CHR:START-END")
	cmd.Flags().String("out", "", "Output directory (default: current directory)")
	cmd.Flags().Bool("compress", false, "Write gzip-compressed .vcf.gz files")
	cmd.Flags().String("fasta", "", "Reference FASTA used to pad indels without an anchor base")
	cmd.Flags().Int("workers", 0, "Reconstruction workers (default: number of CPUs)")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write export metrics in Prometheus text format")

	_ = viper.BindPFlag("export.output_dir", cmd.Flags().Lookup("out"))
	_ = viper.BindPFlag("export.compress", cmd.Flags().Lookup("compress"))
	_ = viper.BindPFlag("reference.fasta", cmd.Flags().Lookup("fasta"))
	_ = viper.BindPFlag("export.workers", cmd.Flags().Lookup("workers"))

	return cmd
}

func runExport(cmd *cobra.Command, opts exportOptions) error {
	if err := validate.Struct(opts); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	ctx := cmd.Context()

	region, err := variant.ParseRegion(opts.Region)
	if err != nil {
		return err
	}

	s, err := store.Open(viper.GetString("db"))
	if err != nil {
		return err
	}
	defer s.Close()

	sources, err := export.ResolveStudies(ctx, s, opts.Studies)
	if err != nil {
		return err
	}
	for _, id := range opts.Studies {
		if _, ok := sources[id]; !ok {
			logger.Warn("study not loaded, skipping", zap.String("study", id))
		}
	}
	if len(sources) == 0 {
		return fmt.Errorf("none of the requested studies are loaded")
	}
	studyIDs := slices.Sorted(maps.Keys(sources))

	recon := export.NewReconstructor()
	if opts.Fasta != "" {
		ref, err := genome.Load(opts.Fasta)
		if err != nil {
			return fmt.Errorf("load reference: %w", err)
		}
		logger.Info("loaded reference", zap.String("path", ref.Path()), zap.Int("chromosomes", ref.ChromosomeCount()))
		if ref.Len(region.Chrom) == 0 {
			logger.Warn("reference has no sequence for region chromosome", zap.String("chrom", region.Chrom))
		}
		recon.SetAnchorLookup(ref)
	}

	files, err := output.CreateStudyFiles(opts.OutDir, export.SynthesizeHeaders(sources), opts.Compress)
	if err != nil {
		return err
	}
	defer files.Close()

	it, err := s.Iterator(ctx, region, studyIDs)
	if err != nil {
		return err
	}
	defer it.Close()

	exp := export.NewExporter(recon)
	exp.SetWorkers(opts.Workers)
	exp.SetLogger(logger)

	summary, err := exp.ExportTo(ctx, it, region, studyIDs, files.Write)
	if err != nil {
		return fmt.Errorf("export %s: %w", region, err)
	}
	if err := files.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	paths := files.Paths()
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STUDY\tRECORDS\tFILE")
	for _, id := range studyIDs {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", id, summary.Records[id], paths[id])
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d variants read, %d failed\n", summary.Variants, summary.Failed)

	if summary.Failed > 0 {
		logger.Warn("some variants could not be exported",
			zap.String("region", region.String()),
			zap.Int("failed", summary.Failed))
	}

	if opts.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(opts.MetricsFile, prometheus.DefaultGatherer); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
