package cmd

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/psantana5/elapsed/internal/probe"
	"github.com/psantana5/elapsed/pkg/elapsed"
	"github.com/spf13/cobra"
)

var (
	probeSamples int
	probeAll     bool
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Measure clock source resolution",
	Long: `Takes successive readings of the active clock source (or every source with
--all) and reports the smallest observed tick and the mean cost of a read.
Coarse sources legitimately return identical readings back to back.`,
	Args: cobra.NoArgs,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().IntVarP(&probeSamples, "samples", "n", probe.DefaultSamples, "readings per source")
	probeCmd.Flags().BoolVar(&probeAll, "all", false, "probe every source, not just the active one")
}

func runProbe(cmd *cobra.Command, args []string) error {
	var results []probe.Result
	if probeAll {
		all, err := probe.RunAll(cmd.Context(), probeSamples)
		if err != nil {
			return err
		}
		results = all
	} else {
		res, err := probe.Run(cmd.Context(), elapsed.Active(), probeSamples)
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	for _, r := range results {
		logger.Debug("Probed clock source", map[string]interface{}{
			"source":     r.Source,
			"resolution": r.Resolution,
		})
	}

	out := cmd.OutOrStdout()
	if ok, err := writeStructured(out, results); ok {
		return err
	}

	table := tablewriter.NewWriter(out)
	table.Header("Source", "Active", "Resolution", "Read Cost", "Distinct", "Monotonic")
	for _, r := range results {
		if r.Error != "" {
			table.Append(r.Source, boolToYesNo(r.Active), "-", "-", "-", r.Error)
			continue
		}
		table.Append(
			r.Source,
			boolToYesNo(r.Active),
			formatSeconds(r.Resolution),
			formatSeconds(r.MeanCost),
			fmt.Sprintf("%d/%d", r.Distinct, r.Samples),
			boolToYesNo(r.Monotonic),
		)
	}
	return table.Render()
}

func formatSeconds(s float64) string {
	switch {
	case s == 0:
		return "n/a"
	case s < 1e-6:
		return fmt.Sprintf("%.0fns", s*1e9)
	case s < 1e-3:
		return fmt.Sprintf("%.2fus", s*1e6)
	case s < 1:
		return fmt.Sprintf("%.2fms", s*1e3)
	default:
		return fmt.Sprintf("%.3fs", s)
	}
}
