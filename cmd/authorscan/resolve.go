package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/authorscan/internal/pubmed"
	"github.com/pdiddy/authorscan/internal/resolve"
	"github.com/pdiddy/authorscan/pkg/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <pmid>...",
	Short: "Resolve corresponding-author emails for PubMed ids",
	Long: `Resolve fetches the given PubMed records and runs the email resolution chain
on each one, whether or not it has a commercial author. It prints the email
found, the tier that produced it, and the service that answered.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(resolveCmd)
}

type resolvedArticle struct {
	PubmedID string `json:"pubmed_id"`
	DOI      string `json:"doi,omitempty"`
	types.ResolvedEmail
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadScanConfig(viper.GetViper())
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: cfg.PubMed.Timeout}
	fetcher := pubmed.NewClient(client, cfg.PubMed, nil)
	resolver := resolve.New(client, cfg.Resolver, nil)

	articles, err := fetcher.FetchDetails(cmd.Context(), args)
	if err != nil {
		return err
	}
	if len(articles) == 0 {
		return fmt.Errorf("no records returned for %v", args)
	}

	results := make([]resolvedArticle, 0, len(articles))
	for _, a := range articles {
		email, _ := resolver.Resolve(cmd.Context(), a)
		results = append(results, resolvedArticle{PubmedID: a.ID, DOI: a.DOI, ResolvedEmail: email})
	}

	w := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for _, r := range results {
		addr := r.Address
		if addr == "" {
			addr = "-"
		}
		fmt.Fprintf(w, "%-10s  %-40s  %-22s  %s\n", r.PubmedID, addr, r.Tier, r.Source)
	}
	return nil
}
