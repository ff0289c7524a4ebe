package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/vcfdump/internal/store"
	"github.com/inodb/vcfdump/internal/variant"
)

func newStudiesCmd() *cobra.Command {
	var studyIDs []string

	cmd := &cobra.Command{
		Use:   "studies",
		Short: "List studies in the variant store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.Open(viper.GetString("db"))
			if err != nil {
				return err
			}
			defer s.Close()

			var studies []variant.StudyMetadata
			if len(studyIDs) > 0 {
				studies, err = s.Sources(cmd.Context(), studyIDs)
			} else {
				studies, err = s.Studies(cmd.Context())
			}
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "STUDY\tFILE ID\tFILE\tSAMPLES")
			for _, st := range studies {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", st.StudyID, st.FileID, st.FileName, len(st.SampleNames))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if missing := missingStudies(studyIDs, studies); len(missing) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "Not loaded: %s\n", strings.Join(missing, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&studyIDs, "study", nil, "Only show these studies")
	return cmd
}

func missingStudies(requested []string, found []variant.StudyMetadata) []string {
	have := make(map[string]bool, len(found))
	for _, st := range found {
		have[st.StudyID] = true
	}
	var missing []string
	for _, id := range requested {
		if !have[id] {
			missing = append(missing, id)
			have[id] = true
		}
	}
	return missing
}
