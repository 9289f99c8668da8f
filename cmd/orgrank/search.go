package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/orgrank/internal/domain/search/filter"
	"github.com/kailas-cloud/orgrank/internal/domain/search/request"
	"github.com/kailas-cloud/orgrank/internal/domain/search/result"
)

type searchFlags struct {
	zip       string
	radius    int
	sort      string
	page      int
	limit     int
	topK      int
	causes    []string
	minRating float64
	asJSON    bool
}

var searchOpts searchFlags

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run one search against the catalog and print the ranked results",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := ""
		if len(args) > 0 {
			query = args[0]
		}
		var minRating *float64
		if cmd.Flags().Changed("min-rating") {
			minRating = &searchOpts.minRating
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return runSearch(ctx, cmd.OutOrStdout(), query, minRating)
	},
}

func init() {
	f := searchCmd.Flags()
	f.StringVar(&searchOpts.zip, "zip", "", "origin zip code (overrides one in the query)")
	f.IntVar(&searchOpts.radius, "radius", 0, "search radius in miles")
	f.StringVar(&searchOpts.sort, "sort", "relevance", "relevance, distance, rating, popularity, newest or impact")
	f.IntVar(&searchOpts.page, "page", 1, "result page")
	f.IntVar(&searchOpts.limit, "limit", 10, "results per page")
	f.IntVar(&searchOpts.topK, "top-k", 0, "nearest-neighbour pool size (0 = configured default)")
	f.StringSliceVar(&searchOpts.causes, "cause", nil, "cause filter, repeatable")
	f.Float64Var(&searchOpts.minRating, "min-rating", 0, "minimum average rating")
	f.BoolVar(&searchOpts.asJSON, "json", false, "print the page as JSON")
}

func runSearch(ctx context.Context, out io.Writer, query string, minRating *float64) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(&cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	filters, err := filter.New(searchOpts.causes, minRating)
	if err != nil {
		return fmt.Errorf("filters: %w", err)
	}
	p := request.Params{
		Query:   query,
		Filters: filters,
		Sort:    searchOpts.sort,
		Page:    searchOpts.page,
		Limit:   searchOpts.limit,
		TopK:    searchOpts.topK,
	}
	if searchOpts.zip != "" || searchOpts.radius != 0 {
		p.Location = &request.Location{Zip: searchOpts.zip, RadiusMiles: float64(searchOpts.radius)}
	}
	req, err := request.New(p, a.limits)
	if err != nil {
		return err //nolint:wrapcheck // already carries ErrInvalidRequest
	}

	page, err := a.search.Search(ctx, &req)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if searchOpts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(page.Items) //nolint:wrapcheck // terminal output
	}
	return printPage(out, page)
}

func printPage(out io.Writer, page *result.Page) error {
	fmt.Fprintf(out, "query=%q sort=%s page=%d total_found=%d\n", page.Query, page.Sort, page.Page, page.Total)
	if causes := page.Intent.Causes(); len(causes) > 0 {
		fmt.Fprintf(out, "intent causes: %s\n", strings.Join(causes, ", "))
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tNAME\tFINAL\tSEMANTIC\tGEO\tEXPLAIN")
	for i := range page.Items {
		c := &page.Items[i]
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.3f\t%.3f\t%.3f\t%s\n",
			(page.Page-1)*page.Limit+i+1, c.Record.ID, c.Record.Name,
			c.FinalScore, c.Semantic, c.GeoScore, c.Explain)
	}
	return tw.Flush() //nolint:wrapcheck // terminal output
}
