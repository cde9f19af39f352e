package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bike-dashboard/internal/analytics"
	"bike-dashboard/internal/charts"
	"bike-dashboard/internal/models"
)

func newSeasonsCmd(a *app) *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "seasons",
		Short: "Total rentals per season for one year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.printChart(cmd.OutOrStdout(), a.dashboard.SeasonsChart(cmd.Context(), year))
		},
	}
	cmd.Flags().IntVar(&year, "year", a.defaults.SeasonYear, "year to total")
	return cmd
}

func newMonthlyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "monthly",
		Short: "Average rentals per calendar month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.printChart(cmd.OutOrStdout(), a.dashboard.MonthlyChart(cmd.Context()))
		},
	}
}

func bandFlags(cmd *cobra.Command, band *analytics.TemperatureBand, defaults analytics.TemperatureBand) {
	cmd.Flags().Float64Var(&band.Min, "temp-min", defaults.Min, "lower temperature bound in °C, inclusive")
	cmd.Flags().Float64Var(&band.Max, "temp-max", defaults.Max, "upper temperature bound in °C, inclusive")
}

func newWeekdayCmd(a *app) *cobra.Command {
	var (
		band     analytics.TemperatureBand
		weekdays []string
	)
	cmd := &cobra.Command{
		Use:   "weekday",
		Short: "Average rentals per hour for each selected weekday",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, d := range weekdays {
				if !models.IsWeekDay(d) {
					return fmt.Errorf("invalid weekday %q", d)
				}
			}
			return a.printChart(cmd.OutOrStdout(), a.dashboard.HourlyWeekdayChart(cmd.Context(), band, weekdays))
		},
	}
	bandFlags(cmd, &band, a.defaults.Band)
	cmd.Flags().StringSliceVar(&weekdays, "weekday", a.defaults.Weekdays, "weekdays to include")
	return cmd
}

func newHolidayCmd(a *app) *cobra.Command {
	var (
		band  analytics.TemperatureBand
		flags []string
	)
	cmd := &cobra.Command{
		Use:   "holiday",
		Short: "Average rentals per hour on holidays and working days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, f := range flags {
				if !models.IsHolidayFlag(f) {
					return fmt.Errorf("invalid holiday flag %q", f)
				}
			}
			return a.printChart(cmd.OutOrStdout(), a.dashboard.HourlyHolidayChart(cmd.Context(), band, flags))
		},
	}
	bandFlags(cmd, &band, a.defaults.Band)
	cmd.Flags().StringSliceVar(&flags, "holiday", a.defaults.HolidayFlags, "holiday categories to include")
	return cmd
}

func newDetailCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "detail [YYYY-MM-DD]",
		Short: "Rentals, temperature and wind of the first record on a date",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := a.defaults.Date
			if len(args) == 1 {
				date = args[0]
			}

			view := a.details.DetailOrEmpty(cmd.Context(), date)
			w := cmd.OutOrStdout()
			if a.asJSON {
				return writeJSON(w, view)
			}
			if !view.Found {
				_, err := fmt.Fprintf(w, "No record for %s\n", date)
				return err
			}

			bold := color.New(color.Bold)
			_, _ = fmt.Fprintf(w, "%s %s\n", bold.Sprint("Date:"), view.Date)
			_, _ = fmt.Fprintf(w, "%s %d\n", bold.Sprint("Rented bikes:"), view.BikeCount)
			_, _ = fmt.Fprintf(w, "%s %.1f °C\n", bold.Sprint("Temperature:"), view.Temperature)
			_, err := fmt.Fprintf(w, "%s %.1f m/s\n", bold.Sprint("Wind:"), view.Wind)
			return err
		},
	}
}

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Describe the loaded dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			summary := a.dashboard.Summary()
			w := cmd.OutOrStdout()
			if a.asJSON {
				return writeJSON(w, summary)
			}

			bold := color.New(color.Bold)
			_, _ = fmt.Fprintf(w, "%s %s\n", bold.Sprint("Source:"), summary.Source)
			_, _ = fmt.Fprintf(w, "%s %d\n", bold.Sprint("Records:"), summary.Records)
			_, _ = fmt.Fprintf(w, "%s %v\n", bold.Sprint("Years:"), summary.Years)
			_, err := fmt.Fprintf(w, "%s %s to %s\n", bold.Sprint("Dates:"), summary.FirstDate, summary.LastDate)
			return err
		},
	}
}

// printChart writes the chart table as aligned text or JSON
func (a *app) printChart(w io.Writer, c charts.Chart) error {
	if a.asJSON {
		return writeJSON(w, c)
	}

	_, _ = color.New(color.FgCyan, color.Bold).Fprintln(w, c.Title)
	if c.IsEmpty() {
		_, err := fmt.Fprintln(w, "(no rows)")
		return err
	}

	header, rows := tableRows(c)

	// Align plain text first; escape codes would count toward column width.
	var table bytes.Buffer
	tw := tabwriter.NewWriter(&table, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		_, _ = fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	headerLine, body, _ := strings.Cut(table.String(), "\n")
	if _, err := color.New(color.Bold).Fprintln(w, headerLine); err != nil {
		return err
	}
	_, err := io.WriteString(w, body)
	return err
}

func tableRows(c charts.Chart) ([]string, [][]string) {
	var out [][]string
	switch rows := c.Rows.(type) {
	case []analytics.SeasonTotal:
		for _, r := range rows {
			out = append(out, []string{r.Season, strconv.Itoa(r.TotalBikeCount)})
		}
		return []string{"SEASON", "TOTAL"}, out
	case []analytics.MonthAverage:
		for _, r := range rows {
			out = append(out, []string{models.MonthLabels[r.Month-1], formatAvg(r.AvgBikeCount)})
		}
		return []string{"MONTH", "AVG RENTALS"}, out
	case []analytics.WeekdayHourAverage:
		for _, r := range rows {
			out = append(out, []string{r.WeekDay, strconv.Itoa(r.Hour), formatAvg(r.AvgBikeCount)})
		}
		return []string{"WEEKDAY", "HOUR", "AVG RENTALS"}, out
	case []analytics.HolidayHourAverage:
		for _, r := range rows {
			out = append(out, []string{
				r.Holiday,
				strconv.Itoa(r.Hour),
				formatAvg(r.AvgBikeCount),
				formatAvg(r.AvgTemperature),
				formatAvg(r.AvgWind),
			})
		}
		return []string{"HOLIDAY", "HOUR", "AVG RENTALS", "AVG TEMP", "AVG WIND"}, out
	default:
		return nil, nil
	}
}

func formatAvg(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
