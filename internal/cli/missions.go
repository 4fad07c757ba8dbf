package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"mission-quiz-service/internal/domain"
)

// NewMissionsCmd validates a catalog and lists its missions.
func NewMissionsCmd() *cobra.Command {
	var (
		file   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "missions",
		Short: "Validate and list the mission catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCatalog(file)
			if err != nil {
				return err
			}
			summaries := make([]domain.MissionSummary, 0)
			for _, m := range c.Missions() {
				summaries = append(summaries, m.Summary())
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(summaries)
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tDIFFICULTY\tQUESTIONS\tMINUTES")
			for _, s := range summaries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", s.ID, s.Title, s.Difficulty, s.QuestionCount, s.EstimatedTime)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML catalog to read instead of the embedded one")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
