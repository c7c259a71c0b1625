package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Veraticus/ifrec/internal/cli"
	"github.com/Veraticus/ifrec/internal/common"
	"github.com/Veraticus/ifrec/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "ifrec",
		Short: "Raw-data validation for the fixed-income fund recommender",
		Long: `ifrec checks the semicolon-delimited regulatory filings the fund recommender
ingests, repairs broken quoting in place (with dated backups and automatic
rollback) and runs table-level checks on the parsed outputs.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(cmd, cfgFile)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./ifrec.yaml or $HOME/.config/ifrec/ifrec.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(checkTablesCmd())
	rootCmd.AddCommand(restoreCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	interrupts := cli.NewInterruptHandler(os.Stderr)
	ctx := interrupts.HandleInterrupts(context.Background())

	err := newRootCmd().ExecuteContext(ctx)
	interrupts.Stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err.Error()))
		os.Exit(1)
	}
}

func initConfig(cmd *cobra.Command, cfgFile string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	v := viper.GetViper()
	_ = v.BindPFlag("logging.level", cmd.Flags().Lookup("log-level"))
	_ = v.BindPFlag("logging.format", cmd.Flags().Lookup("log-format"))

	if err := config.ReadConfig(v, cfgFile); err != nil {
		return err
	}

	if err := common.SetupLogger(os.Stderr, v.GetString("logging.level"), v.GetString("logging.format")); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ifrec %s\n", version)
		},
	}
}
