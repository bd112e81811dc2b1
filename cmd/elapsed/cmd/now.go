package cmd

import (
	"fmt"

	"github.com/psantana5/elapsed/pkg/elapsed"
	"github.com/spf13/cobra"
)

var nowCmd = &cobra.Command{
	Use:   "now",
	Short: "Print one elapsed reading",
	Long:  `Pins the reference instant (if not already pinned) and prints seconds elapsed since it.`,
	Args:  cobra.NoArgs,
	RunE:  runNow,
}

func init() {
	rootCmd.AddCommand(nowCmd)
}

// Reading is a single elapsed sample
type Reading struct {
	Source  string  `json:"source" yaml:"source"`
	Seconds float64 `json:"elapsed_seconds" yaml:"elapsed_seconds"`
}

func runNow(cmd *cobra.Command, args []string) error {
	r := Reading{
		Seconds: elapsed.Seconds(),
		Source:  elapsed.Active().String(),
	}
	logger.Debug("Read elapsed clock", map[string]interface{}{"source": r.Source})

	if ok, err := writeStructured(cmd.OutOrStdout(), r); ok {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%.9f\n", r.Seconds)
	return nil
}
