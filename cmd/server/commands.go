package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/damon-houk/fxconv/internal/application/service"
	"github.com/damon-houk/fxconv/internal/domain/entity"
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Fetch the current rate table",
	RunE: func(cmd *cobra.Command, args []string) error {
		flagBase, _ := cmd.Flags().GetString("base")
		base, err := resolveBase(flagBase, cfg.Rates.DefaultBase)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		snapshot := a.rates.Latest(cmd.Context(), base)
		printSnapshotHeader(snapshot)

		codes := make([]string, 0, len(snapshot.Rates))
		for code := range snapshot.Rates {
			codes = append(codes, code)
		}
		sort.Strings(codes)

		for _, code := range codes {
			fmt.Printf("  %s  %14.6f\n", color.New(color.Bold).Sprint(code), snapshot.Rates[code])
		}
		return nil
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert [amount] [from] [to...]",
	Short: "Convert an amount into one or more currencies",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("%w: %q", service.ErrInvalidAmount, args[0])
		}

		from := normalizeCode(args[1])
		to := make([]string, 0, len(args)-2)
		for _, code := range args[2:] {
			to = append(to, normalizeCode(code))
		}

		a, err := newApp(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		var snapshot *entity.RateSnapshot
		conversions := service.NewConversionService(service.SnapshotFunc(func() *entity.RateSnapshot {
			if snapshot == nil {
				snapshot = a.rates.Latest(cmd.Context(), from)
			}
			return snapshot
		}), log)

		results, err := conversions.Convert(cmd.Context(), amount, from, to)
		if err != nil {
			return err
		}

		printSnapshotHeader(snapshot)
		fmt.Printf("  %s =\n", color.New(color.Bold).Sprint(service.FormatAmount(amount, from)))
		for _, result := range results {
			if !result.Valid() {
				color.Red("    %s: no rate available", result.ToCurrency)
				continue
			}
			fmt.Printf("    %s  (rate %.6f)\n", color.New(color.FgGreen).Sprint(service.FormatAmount(result.ConvertedAmount, result.ToCurrency)), result.EffectiveRate)
		}

		if _, err := a.preferences.UpdateLastUsed(cmd.Context(), from, to); err != nil {
			log.Warn("Failed to remember last used currencies", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history [base] [target]",
	Short: "Show the daily rate history of target against base",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")

		a, err := newApp(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		series, err := a.history.Series(cmd.Context(), normalizeCode(args[0]), normalizeCode(args[1]), days)
		if err != nil {
			return err
		}

		fmt.Printf("%s/%s over %d days %s\n", series.Base, series.Target, days, provenanceLabel(series.Provenance, series.Reason))
		for i, day := range series.Dates {
			fmt.Printf("  %s  %.6f\n", day, series.Rates[i])
		}
		if len(series.Gaps) > 0 {
			color.Yellow("  %d days without rates", len(series.Gaps))
		}
		return nil
	},
}

func init() {
	ratesCmd.Flags().String("base", "", "base currency (default: rates.default_base)")
	historyCmd.Flags().Int("days", 7, "number of days of history (1-365)")
}

func printSnapshotHeader(snapshot *entity.RateSnapshot) {
	if snapshot == nil {
		return
	}
	fmt.Printf("Rates for %s on %s %s\n", color.New(color.Bold).Sprint(snapshot.Base), snapshot.Date, provenanceLabel(snapshot.Provenance, snapshot.Reason))
}

// provenanceLabel renders where rates came from, coloured by trust
func provenanceLabel(p entity.Provenance, reason entity.Reason) string {
	switch p {
	case entity.ProvenanceLive:
		return color.GreenString("[live]")
	case entity.ProvenanceCached:
		if reason == entity.ReasonNone {
			return color.CyanString("[cached]")
		}
		return color.YellowString("[cached: %s]", reason)
	default:
		return color.RedString("[fallback: %s]", reason)
	}
}
