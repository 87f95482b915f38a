package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/authorscan/internal/affiliation"
	"github.com/pdiddy/authorscan/pkg/types"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <affiliation>...",
	Short: "Show how affiliation strings are classified",
	Long: `Classify runs the affiliation classifier on each argument and prints whether
it counts as academic, commercial, or both, with the company term that matched.
An author is reported when any affiliation is commercial.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		return writeVerdicts(cmd.OutOrStdout(), args, asJSON)
	},
}

func init() {
	classifyCmd.Flags().Bool("json", false, "output verdicts as JSON")

	rootCmd.AddCommand(classifyCmd)
}

type classifiedAffiliation struct {
	Affiliation string `json:"affiliation"`
	types.AffiliationVerdict
}

func writeVerdicts(w io.Writer, affiliations []string, asJSON bool) error {
	results := make([]classifiedAffiliation, len(affiliations))
	for i, a := range affiliations {
		results[i] = classifiedAffiliation{Affiliation: a, AffiliationVerdict: affiliation.Classify(a)}
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for _, r := range results {
		label := "neither"
		switch {
		case r.IsCommercial && r.IsAcademic:
			label = "commercial+academic"
		case r.IsCommercial:
			label = "commercial"
		case r.IsAcademic:
			label = "academic"
		}
		if r.MatchedCompanyTerm != "" {
			label += fmt.Sprintf(" (%q)", r.MatchedCompanyTerm)
		}
		fmt.Fprintf(w, "%-32s  %s\n", label, r.Affiliation)
	}
	return nil
}
