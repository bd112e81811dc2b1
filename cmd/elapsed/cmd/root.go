package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/psantana5/elapsed/pkg/elapsed"
	"github.com/psantana5/elapsed/pkg/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var (
	cfgFile      string
	outputFormat string

	logger *logging.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "elapsed",
	Short: "Process elapsed-time clock",
	Long: `elapsed reports seconds since the first clock reading in the process,
probes the resolution of the available clock sources, and can export the
clock to Prometheus.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentPreRunE = setup
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.elapsed/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json or yaml")
	rootCmd.PersistentFlags().String("source", elapsed.DefaultSource.String(), "clock source: monotonic, wall or cputime")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "log format: text or json")
	rootCmd.PersistentFlags().String("log-file", "", "also write logs to this file")
}

// bindFlags maps config keys onto their flags. Flags win over env, env over
// the config file.
func bindFlags() {
	viper.BindPFlag("source", rootCmd.PersistentFlags().Lookup("source"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))
	viper.BindPFlag("interval", watchCmd.Flags().Lookup("interval"))
	viper.BindPFlag("metrics_addr", watchCmd.Flags().Lookup("metrics-addr"))
}

// setup loads config, pins the clock source and builds the logger. The
// source has to be selected before anything reads the clock, logging
// included.
func setup(cmd *cobra.Command, args []string) error {
	bindFlags()
	if err := initConfig(); err != nil {
		return err
	}

	src, err := elapsed.ParseSource(viper.GetString("source"))
	if err != nil {
		return err
	}
	if err := elapsed.Select(src); err != nil {
		// already running on the requested source is fine
		if !errors.Is(err, elapsed.ErrStarted) || elapsed.Active() != src {
			return err
		}
	}

	return initLogger(cmd.ErrOrStderr())
}

// initConfig reads in config file and ENV variables if set
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".elapsed"))
		}
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("ELAPSED")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

func initLogger(w io.Writer) error {
	level := logging.ParseLevel(viper.GetString("log_level"))
	jsonFormat := viper.GetString("log_format") == "json"

	if path := viper.GetString("log_file"); path != "" {
		l, err := logging.NewFileLogger(path, level, jsonFormat)
		if err != nil {
			return err
		}
		logger = l
		return nil
	}

	logger = logging.NewLogger(level, jsonFormat)
	logger.SetOutput(w)
	return nil
}

// writeStructured encodes v as JSON or YAML. It returns false for table
// output so the caller can render its own.
func writeStructured(w io.Writer, v interface{}) (bool, error) {
	switch outputFormat {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return true, encoder.Encode(v)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		defer encoder.Close()
		return true, encoder.Encode(v)
	case "table", "text", "":
		return false, nil
	default:
		return true, fmt.Errorf("unknown output format %q", outputFormat)
	}
}
