// Package crawl implements the crawl subcommand: one keyword crawl
// session over a set of seed URLs.
package crawl

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	cmdcommon "github.com/vigialabs/vigia/cmd/common"
	"github.com/vigialabs/vigia/internal/crawl"
	"github.com/vigialabs/vigia/internal/daterange"
	"github.com/vigialabs/vigia/internal/domain"
)

// Command returns the crawl command.
func Command(opts func() cmdcommon.Options) *cobra.Command {
	var (
		keywords   []string
		urls       []string
		deepSearch bool
		maxLinks   int
		fromStr    string
		toStr      string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Run a keyword crawl session over seed URLs",
		Long: `Fetches each seed URL, extracts article content, matches the given
keywords, and optionally follows discovered links one hop deep. Pages
whose publication date falls outside the date window are reported
separately.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := cmdcommon.NewDeps(opts())
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}

			req := crawl.Request{
				Keywords:        keywords,
				URLs:            urls,
				DeepSearch:      deepSearch,
				MaxLinksPerPage: maxLinks,
				MonthsBack:      deps.Config.Crawl.MonthsBack,
			}
			if req.MaxLinksPerPage == 0 {
				req.MaxLinksPerPage = deps.Config.Crawl.MaxLinksPerPage
			}

			if req.From, err = parseDateFlag(fromStr); err != nil {
				return err
			}
			if req.To, err = parseDateFlag(toStr); err != nil {
				return err
			}

			deps.Metrics.CrawlSessions.Inc()
			result, err := deps.NewCrawler().Crawl(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("crawl session failed: %w", err)
			}

			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(result)
			}
			printResult(result)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&keywords, "keyword", "k", nil, "keyword to search for (repeatable)")
	cmd.Flags().StringSliceVarP(&urls, "url", "u", nil, "seed URL to crawl (repeatable)")
	cmd.Flags().BoolVar(&deepSearch, "deep", false, "follow discovered links one hop deep")
	cmd.Flags().IntVar(&maxLinks, "max-links", 0, "max links visited per page (0 uses the configured default)")
	cmd.Flags().StringVar(&fromStr, "from", "", "date window lower bound (flexible format)")
	cmd.Flags().StringVar(&toStr, "to", "", "date window upper bound (flexible format)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the full session result as JSON")

	_ = cmd.MarkFlagRequired("keyword")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

// parseDateFlag parses an optional date flag.
func parseDateFlag(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, ok := daterange.Parse(value)
	if !ok {
		return nil, fmt.Errorf("unparsable date: %q", value)
	}
	return &parsed, nil
}

// printResult renders the session summary and matching URLs as tables.
func printResult(result *domain.CrawlResult) {
	fmt.Printf("Session %s\n", result.SessionID)
	fmt.Printf("Date window: %s .. %s\n\n",
		result.DateRange.From.Format("2006-01-02"),
		result.DateRange.To.Format("2006-01-02"),
	)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"URL", "Title", "Published", "Keywords", "Source"})
	for _, m := range result.MatchingURLs {
		t.AppendRow(table.Row{m.URL, m.Title, m.PublishedDate, fmt.Sprint(m.KeywordsFound), m.Source})
	}
	t.Render()

	if len(result.FilteredByDate) > 0 {
		fmt.Println("\nFiltered by date:")
		ft := table.NewWriter()
		ft.SetOutputMirror(os.Stdout)
		ft.AppendHeader(table.Row{"URL", "Published"})
		for _, f := range result.FilteredByDate {
			ft.AppendRow(table.Row{f.URL, f.PublishedDate})
		}
		ft.Render()
	}

	s := result.Summary
	fmt.Printf("\nPages: %d  Links analyzed: %d  Matches: %d  Filtered: %d\n",
		s.TotalSourcePages, s.TotalLinksAnalyzed, s.TotalMatchingURLs, s.TotalFilteredByDate)
	for _, w := range result.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
}
