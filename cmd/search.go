package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/sangnt1552314/ytscout/internal/models"
	"github.com/sangnt1552314/ytscout/internal/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSearchCmd(env *runtimeEnv) *cobra.Command {
	var (
		query   string
		minSubs uint64
		maxSubs uint64
		export  bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run one search and print the matching channels",
		RunE: func(cmd *cobra.Command, args []string) error {
			finder, err := env.newFinder(cmd.Context())
			if err != nil {
				return err
			}

			req := models.SearchRequest{
				Query:   query,
				MinSubs: minSubs,
				MaxSubs: maxSubs,
				Limit:   env.cfg.Limit,
			}
			if err := req.ValidateInput(); err != nil {
				return err
			}

			result, err := finder.FindChannels(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := printRecords(out, result.Records); err != nil {
				return err
			}
			printSummary(out, result)

			if export {
				path, err := services.ExportCSVFile(env.cfg.ExportDir, result.Records)
				if err != nil {
					return err
				}
				env.logger.Info("exported csv", zap.String("path", path))
				fmt.Fprintf(out, "📥 Saved %s\n", path)
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&query, "query", "q", "musicians strategy", "search query")
	fs.Uint64Var(&minSubs, "min", 1000, "minimum subscribers (0-1000000)")
	fs.Uint64Var(&maxSubs, "max", 10000, "maximum subscribers (0-1000000)")
	fs.BoolVarP(&export, "export", "e", false, "also write "+services.ExportFileName+" to --export-dir")
	return cmd
}

func printRecords(w io.Writer, records []models.ChannelRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Channel Title\tSubscribers\tVideos\tLatest Video\tChannel Link")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.Title,
			strconv.FormatUint(r.SubscriberCount, 10),
			strconv.FormatUint(r.VideoCount, 10),
			formatLatest(r),
			r.ChannelURL,
		)
	}
	return tw.Flush()
}

func printSummary(w io.Writer, result *models.SearchResult) {
	green := color.New(color.FgGreen, color.Bold)
	yellow := color.New(color.FgYellow)

	green.Fprintf(w, "✅ Found %d channels!\n", len(result.Records))

	counts := result.SkipCounts()
	reasons := make([]string, 0, len(counts))
	for reason := range counts {
		reasons = append(reasons, string(reason))
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		yellow.Fprintf(w, "   skipped %-26s %d\n", reason, counts[models.SkipReason(reason)])
	}
}
