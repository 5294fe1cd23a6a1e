package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mr1hm/go-biodiversity-dashboard/internal/chart"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/config"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/ensemble"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/impact"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/logging"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/models"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/stats"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/synth"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/tui"
)

var (
	seed         int64
	scenarioPath string
	logLevel     string
	fromYear     int
	toYear       int
	draws        int
	workers      int
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "biodash",
		Short: "climate and biodiversity dashboard in the terminal",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupWriter(os.Stderr, logLevel)
		},
		RunE: runTUI,
	}

	rootCmd.PersistentFlags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	rootCmd.PersistentFlags().StringVar(&scenarioPath, "config", os.Getenv("SCENARIO_PATH"), "scenario file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level")

	seriesCmd := &cobra.Command{
		Use:   "series",
		Short: "print the generated series",
		RunE:  printSeries,
	}
	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "plot temperature and biodiversity",
		RunE:  plotSeries,
	}
	for _, cmd := range []*cobra.Command{seriesCmd, plotCmd} {
		cmd.Flags().IntVar(&fromYear, "from", models.FirstYear, "first year")
		cmd.Flags().IntVar(&toYear, "to", models.LastYear, "last year")
	}

	impactCmd := &cobra.Command{
		Use:   "impact [target]",
		Short: "classify a temperature-rise target",
		Args:  cobra.ExactArgs(1),
		RunE:  printImpact,
	}

	fitCmd := &cobra.Command{
		Use:   "fit",
		Short: "regress biodiversity on temperature",
		RunE:  printFit,
	}

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "average many independent draws",
		RunE:  runEnsemble,
	}
	ensembleCmd.Flags().IntVar(&draws, "draws", 200, "number of draws")
	ensembleCmd.Flags().IntVar(&workers, "workers", 4, "worker goroutines")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive dashboard",
		RunE:  runTUI,
	}

	rootCmd.AddCommand(seriesCmd, plotCmd, impactCmd, fitCmd, ensembleCmd, tuiCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadSeries() (models.Series, synth.Params, error) {
	params, err := config.LoadScenario(scenarioPath)
	if err != nil {
		return nil, params, err
	}
	g, err := synth.NewGenerator(params, synth.NewSeeded(seed))
	if err != nil {
		return nil, params, err
	}
	slog.Debug("series generated", "seed", seed, "points", params.Points())
	return g.Generate(), params, nil
}

func printSeries(cmd *cobra.Command, args []string) error {
	series, _, err := loadSeries()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "YEAR\tTEMP_DEVIATION\tBIODIVERSITY")
	for _, r := range synth.FilterByYearRange(series, fromYear, toYear) {
		fmt.Fprintf(w, "%d\t%.3f\t%.2f\n", r.Year, r.TemperatureDeviation, r.BiodiversityIndex)
	}
	return w.Flush()
}

func plotSeries(cmd *cobra.Command, args []string) error {
	series, _, err := loadSeries()
	if err != nil {
		return err
	}
	rows := synth.FilterByYearRange(series, fromYear, toYear)
	caption := fmt.Sprintf("%d-%d", fromYear, toYear)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, chart.ASCIILine(rows.Temperatures(), "temperature deviation (°C) "+caption, 72, 10))
	fmt.Fprintln(out)
	fmt.Fprintln(out, chart.ASCIILine(rows.Biodiversity(), "biodiversity index "+caption, 72, 10))
	return nil
}

func printImpact(cmd *cobra.Command, args []string) error {
	target, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid target %q: %w", args[0], err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), tui.ImpactLine(impact.Assess(target)))
	return nil
}

func printFit(cmd *cobra.Command, args []string) error {
	series, _, err := loadSeries()
	if err != nil {
		return err
	}
	fit, err := stats.Fit(series)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "points\t%d\n", fit.N)
	fmt.Fprintf(w, "slope\t%.4f\n", fit.Slope)
	fmt.Fprintf(w, "intercept\t%.4f\n", fit.Intercept)
	fmt.Fprintf(w, "r\t%.4f\n", fit.R)
	fmt.Fprintf(w, "r²\t%.4f\n", fit.RSquared)
	return w.Flush()
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	params, err := config.LoadScenario(scenarioPath)
	if err != nil {
		return err
	}
	sum, err := ensemble.Run(context.Background(), params, seed, draws, workers)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "draws\t%d\n", sum.Draws)
	fmt.Fprintf(w, "mean residual\t%.4f\n", sum.MeanResidual)
	fmt.Fprintf(w, "mean slope\t%.4f\n", sum.MeanSlope)
	fmt.Fprintf(w, "mean intercept\t%.4f\n", sum.MeanIntercept)
	fmt.Fprintf(w, "mean r\t%.4f\n", sum.MeanR)
	return w.Flush()
}

func runTUI(cmd *cobra.Command, args []string) error {
	params, err := config.LoadScenario(scenarioPath)
	if err != nil {
		return err
	}
	p := tea.NewProgram(tui.NewModel(params, seed), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
