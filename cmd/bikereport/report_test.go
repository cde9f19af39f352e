package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"bike-dashboard/internal/analytics"
	"bike-dashboard/internal/charts"
	"bike-dashboard/internal/models"
)

const testCSV = "Date,Rented Bike Count,Hour,Temperature(°C),Humidity(%),Wind speed (m/s),Visibility (10m)," +
	"Dew point temperature(°C),Solar Radiation (MJ/m2),Rainfall(mm),Snowfall (cm),Seasons,Holiday,Functioning Day\n" +
	"25/12/2017,150,10,1.5,50,1,2000,-8,0.5,0,0,Winter,Holiday,Yes\n" +
	"15/03/2018,200,8,5,45,2,2000,-3,0.2,0,0,Spring,No Holiday,Yes\n" +
	"10/04/2018,0,3,8,60,1.5,2000,1,0,0,0,Spring,No Holiday,No\n" +
	"01/06/2018,120,5,22.5,70,1.3,2000,16,0.1,0,0,Summer,No Holiday,Yes\n"

func writeCSV(t *testing.T) string {
	t.Helper()
	encoded, err := charmap.ISO8859_1.NewEncoder().String(testCSV)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "rentals.csv")
	require.NoError(t, os.WriteFile(path, []byte(encoded), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	stdout := new(bytes.Buffer)
	root := newRootCmd()
	root.SetOut(stdout)
	root.SetErr(new(bytes.Buffer))
	root.SetArgs(append([]string{"--no-color", "--csv", writeCSV(t)}, args...))
	err := root.Execute()
	return stdout.String(), err
}

func TestRootCmd_SubcommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range newRootCmd().Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"seasons", "monthly", "weekday", "holiday", "detail", "summary"} {
		assert.True(t, names[want], "%s subcommand should be registered", want)
	}
}

func TestSeasonsCmd(t *testing.T) {
	out, err := run(t, "seasons", "--year", "2018")
	require.NoError(t, err)

	assert.Contains(t, out, "Bike Rent / Seasons")
	assert.Contains(t, out, "SEASON")
	assert.Regexp(t, `Spring\s+200`, out)
	assert.Regexp(t, `Summer\s+120`, out)
	assert.NotContains(t, out, "Winter")
}

func TestSeasonsCmd_UnknownYear(t *testing.T) {
	out, err := run(t, "seasons", "--year", "1990")
	require.NoError(t, err)
	assert.Contains(t, out, "(no rows)")
}

func TestMonthlyCmd_JSON(t *testing.T) {
	out, err := run(t, "monthly", "--json")
	require.NoError(t, err)

	var chart struct {
		Kind string `json:"kind"`
		Rows []struct {
			Month int     `json:"month"`
			Avg   float64 `json:"avg_bike_count"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &chart))
	assert.Equal(t, "bar", chart.Kind)
	require.Len(t, chart.Rows, 3)
	assert.Equal(t, 3, chart.Rows[0].Month)
	assert.Equal(t, 12, chart.Rows[2].Month)
}

func TestWeekdayCmd(t *testing.T) {
	out, err := run(t, "weekday", "--temp-min", "20", "--temp-max", "25", "--weekday", "Friday")
	require.NoError(t, err)
	assert.Regexp(t, `Friday\s+5\s+120\.00`, out)
	assert.NotContains(t, out, "Thursday")

	out, err = run(t, "weekday", "--weekday", "")
	require.NoError(t, err)
	assert.Contains(t, out, "(no rows)")

	_, err = run(t, "weekday", "--weekday", "Caturday")
	assert.ErrorContains(t, err, "invalid weekday")

	_, err = run(t, "weekday", "--temp-min", "warm")
	assert.Error(t, err)
}

func TestHolidayCmd(t *testing.T) {
	out, err := run(t, "holiday", "--holiday", models.Holiday)
	require.NoError(t, err)
	assert.Contains(t, out, "AVG WIND")
	assert.Regexp(t, `Holiday\s+10\s+150\.00\s+1\.50\s+1\.00`, out)
	assert.NotContains(t, out, models.NoHoliday)
}

func TestDetailCmd(t *testing.T) {
	out, err := run(t, "detail", "2018-06-01")
	require.NoError(t, err)
	assert.Contains(t, out, "Rented bikes: 120")
	assert.Contains(t, out, "22.5 °C")

	out, err = run(t, "detail", "2018-04-10")
	require.NoError(t, err)
	assert.Contains(t, out, "No record for 2018-04-10")

	out, err = run(t, "detail", "10/04/2018", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"found":false}`, out)

	out, err = run(t, "detail")
	require.NoError(t, err)
	assert.Contains(t, out, "No record for 2017-11-01")
}

func TestSummaryCmd(t *testing.T) {
	out, err := run(t, "summary", "--json")
	require.NoError(t, err)

	var summary models.DatasetSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 3, summary.Records)
	assert.Equal(t, []int{2017, 2018}, summary.Years)
}

func TestMissingCSV(t *testing.T) {
	root := newRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetArgs([]string{"--csv", filepath.Join(t.TempDir(), "missing.csv"), "summary"})

	err := root.Execute()
	assert.ErrorContains(t, err, "not found")
}

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func TestPrintChart_ColoredHeaderKeepsColumnsAligned(t *testing.T) {
	previous := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = previous })

	var buf bytes.Buffer
	a := &app{}
	require.NoError(t, a.printChart(&buf, charts.SeasonsPie([]analytics.SeasonTotal{
		{Season: "Spring", TotalBikeCount: 200},
		{Season: "Summer", TotalBikeCount: 120},
	})))
	assert.True(t, ansi.MatchString(buf.String()), "header should be colored")

	lines := strings.Split(strings.TrimRight(ansi.ReplaceAllString(buf.String(), ""), "\n"), "\n")
	require.Len(t, lines, 4)
	header, first, second := lines[1], lines[2], lines[3]
	assert.Equal(t, strings.Index(header, "TOTAL"), strings.Index(first, "200"))
	assert.Equal(t, strings.Index(header, "TOTAL"), strings.Index(second, "120"))
}
