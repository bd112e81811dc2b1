package cmd

import (
	"fmt"
	"runtime"

	"github.com/olekukonko/tablewriter"
	"github.com/psantana5/elapsed/pkg/elapsed"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List clock sources",
	Long:  `Lists every clock source, whether it can be read on this host, and which one is active.`,
	Args:  cobra.NoArgs,
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

// SourceInfo describes one clock source on this host
type SourceInfo struct {
	Name      string `json:"name" yaml:"name"`
	Available bool   `json:"available" yaml:"available"`
	Active    bool   `json:"active" yaml:"active"`
	Default   bool   `json:"default" yaml:"default"`
}

// SourcesReport is the output of the sources command
type SourcesReport struct {
	Host    string       `json:"host" yaml:"host"`
	Sources []SourceInfo `json:"sources" yaml:"sources"`
}

func runSources(cmd *cobra.Command, args []string) error {
	report := SourcesReport{Host: describeHost()}
	for _, src := range elapsed.Sources() {
		report.Sources = append(report.Sources, SourceInfo{
			Name:      src.String(),
			Available: src.Available(),
			Active:    src == elapsed.Active(),
			Default:   src == elapsed.DefaultSource,
		})
	}

	out := cmd.OutOrStdout()
	if ok, err := writeStructured(out, report); ok {
		return err
	}

	fmt.Fprintf(out, "Host: %s\n\n", report.Host)
	table := tablewriter.NewWriter(out)
	table.Header("Source", "Available", "Active", "Default")
	for _, s := range report.Sources {
		table.Append(s.Name, boolToYesNo(s.Available), boolToYesNo(s.Active), boolToYesNo(s.Default))
	}
	return table.Render()
}

func describeHost() string {
	info, err := host.Info()
	if err != nil {
		logger.Debug("Host info unavailable", map[string]interface{}{"error": err.Error()})
		return fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
	}
	return fmt.Sprintf("%s (%s %s, %s/%s)", info.Hostname, info.Platform, info.PlatformVersion, runtime.GOOS, runtime.GOARCH)
}

func boolToYesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
