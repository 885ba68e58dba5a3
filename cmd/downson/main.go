package main

import (
	"context"
	"os"
	"runtime/debug"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/downson/cmd/downson/extract"
	list_types "github.com/walteh/downson/cmd/downson/list-types"
	logging "github.com/walteh/downson/pkg/debug"
	"github.com/walteh/downson/pkg/settings"
)

func main() {
	if err := run(); err != nil {
		println(err.Error())
		os.Exit(1)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:           "downson",
		Short:         "Extract structured data from markdown documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		rootCmd.Version = "unknown"
	} else {
		rootCmd.Version = info.Main.Version
	}

	rootCmd.PersistentFlags().String("log-level", "warn", "log level: trace, debug, info, warn, error")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		v, err := settings.Bind(cmd)
		if err != nil {
			return err
		}

		level, err := logging.ParseLevel(v.GetString("log-level"))
		if err != nil {
			return err
		}

		logger := logging.NewLogger(cmd.ErrOrStderr(), level, !color.NoColor)
		cmd.SetContext(logger.WithContext(cmd.Context()))

		return nil
	}

	cmdVersion := &cobra.Command{
		Use: "raw-version",
		Run: func(cmdz *cobra.Command, args []string) {
			cmdz.Println(rootCmd.Version)
		},
		Hidden: true,
	}

	rootCmd.AddCommand(cmdVersion)

	rootCmd.AddCommand(extract.NewExtractCommand())
	rootCmd.AddCommand(list_types.NewListTypesCommand())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		return errors.Errorf("failed to execute command: %w", err)
	}

	return nil
}
