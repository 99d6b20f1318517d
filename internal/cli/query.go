package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"neo-platform/internal/dates"
	"neo-platform/internal/filters"
	"neo-platform/internal/writers"
)

// printLimit caps results printed to the terminal when --limit is not given
const printLimit = 10

func queryCmd(a *app) *cobra.Command {
	var (
		params  = map[string]*string{}
		limit   int
		outfile string
	)

	c := &cobra.Command{
		Use:   "query",
		Short: "Query close approaches and print them or export them to CSV or JSON",
		Example: `  neo query --date 2020-01-01
  neo query --start-date 2020-01-01 --end-date 2020-12-31 --hazardous true --limit 5
  neo query --distance-max 0.05 --outfile results.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			criteria, err := filters.ParseValues(func(name string) string {
				if p, ok := params[name]; ok {
					return *p
				}
				return ""
			})
			if err != nil {
				return err
			}
			if outfile != "" {
				if _, err := writers.FormatFor(outfile); err != nil {
					return err
				}
			}

			n := limit
			if !cmd.Flags().Changed("limit") {
				n = a.cfg.Export.DefaultLimit
				if outfile == "" && (n <= 0 || n > printLimit) {
					n = printLimit
				}
			}

			catalog, err := a.load(ctx)
			if err != nil {
				return err
			}

			results, err := a.exports.Query(ctx, catalog, criteria, n)
			if err != nil {
				return err
			}

			if outfile != "" {
				_, err := a.exports.Export(ctx, catalog, results, outfile)
				return err
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				printf(out, "No matching close approaches.\n")
			}
			for _, ca := range results {
				printf(out, "%s\n", ca.Describe(catalog))
			}
			return nil
		},
	}

	flags := []struct {
		name, usage string
	}{
		{filters.ParamDate, "Only approaches on this date (" + dates.DayLayout + ")"},
		{filters.ParamStartDate, "Only approaches on or after this date (" + dates.DayLayout + ")"},
		{filters.ParamEndDate, "Only approaches on or before this date (" + dates.DayLayout + ")"},
		{filters.ParamDistanceMin, "Minimum approach distance in au"},
		{filters.ParamDistanceMax, "Maximum approach distance in au"},
		{filters.ParamVelocityMin, "Minimum relative velocity in km/s"},
		{filters.ParamVelocityMax, "Maximum relative velocity in km/s"},
		{filters.ParamDiameterMin, "Minimum NEO diameter in km"},
		{filters.ParamDiameterMax, "Maximum NEO diameter in km"},
		{filters.ParamHazardous, "Only hazardous (true) or non-hazardous (false) NEOs"},
	}
	for _, f := range flags {
		params[f.name] = c.Flags().String(flagName(f.name), "", f.usage)
	}

	c.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum number of results; 0 means no limit (default 10 when printing)")
	c.Flags().StringVarP(&outfile, "outfile", "o", "", "Write results to a .csv or .json file instead of printing")
	return c
}

// flagName maps a parameter name such as start_date to its flag, start-date
func flagName(param string) string {
	return strings.ReplaceAll(param, "_", "-")
}
