package main

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vcfdump/internal/store"
)

var validate = validator.New()

type loadOptions struct {
	StudyID    string `validate:"required"`
	FileID     string `validate:"required"`
	File       string `validate:"required,file"`
	KeepSource bool
	Force      bool
}

func newLoadCmd() *cobra.Command {
	var opts loadOptions

	cmd := &cobra.Command{
		Use:   "load [flags] <file.vcf[.gz]>",
		Short: "Load a VCF file into the variant store",
		Long: `Decompose every multi-allelic site of a VCF file into biallelic variants
and store them, with the genotypes of every sample, under a study.

A study holds exactly one file. Loading the same unchanged file again is a
no-op; loading a different file requires --force and replaces the study.`,
		Example: `  vcfdump load --study 7 --file-id 6 ALL.chr20.vcf.gz
  vcfdump load --study 7 --file-id 6 --keep-source --force ALL.chr20.vcf.gz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.File = args[0]
			return runLoad(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.StudyID, "study", "", "Study ID")
	cmd.Flags().StringVar(&opts.FileID, "file-id", "", "File ID recorded with the study")
	cmd.Flags().BoolVar(&opts.KeepSource, "keep-source", false, "Retain each original VCF line")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Replace an existing load of the study")

	return cmd
}

func runLoad(cmd *cobra.Command, opts loadOptions) error {
	if err := validate.Struct(opts); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}

	s, err := store.Open(viper.GetString("db"))
	if err != nil {
		return err
	}
	defer s.Close()

	stats, err := s.LoadFile(cmd.Context(), opts.File, store.LoadOptions{
		StudyID:    opts.StudyID,
		FileID:     opts.FileID,
		KeepSource: opts.KeepSource,
		Force:      opts.Force,
	}, logger)
	if err != nil {
		return fmt.Errorf("load %s: %w", opts.File, err)
	}

	if stats.Skipped {
		fmt.Fprintf(cmd.OutOrStdout(), "Study %s already loaded from %s\n", opts.StudyID, opts.File)
		return nil
	}
	logger.Debug("load complete", zap.String("db", s.Path()))
	fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d lines (%d variants) into study %s\n",
		stats.Lines, stats.Records, opts.StudyID)
	return nil
}
