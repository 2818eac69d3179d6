package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/understudy/fixtures"
	"github.com/flanksource/understudy/playback"
	"github.com/flanksource/understudy/shell"
	"github.com/spf13/cobra"
)

var recordCmd = &cobra.Command{
	Use:          "record --action <name> [--fixture file] -- <command>",
	Short:        "Run a real command and capture it as a fixture rule",
	Args:         cobra.MinimumNArgs(1),
	RunE:         runRecord,
	SilenceUsage: true,
}

var (
	recordAction  string
	recordFixture string
)

func runRecord(cmd *cobra.Command, args []string) error {
	wd, err := getWorkingDir()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	recorder := playback.NewRecorder(&shell.Local{Dir: wd})
	if recordFixture != "" {
		if _, statErr := os.Stat(recordFixture); statErr == nil {
			existing, err := fixtures.Load(recordFixture)
			if err != nil {
				return err
			}
			recorder.Seed(existing)
		}
	}

	command := strings.Join(args, " ")
	result, err := recorder.For(recordAction).Run(cmd.Context(), command, shell.Options{Show: true, TolerateError: true})
	if err != nil {
		return err
	}
	if result.Failed() {
		logger.Warnf("command exited %d, recorded as a simulated failure", result.ExitCode)
		exitCode = result.ExitCode
	}

	data, err := recorder.Export()
	if err != nil {
		return err
	}
	if recordFixture == "" {
		fmt.Print(string(data))
		return nil
	}
	if err := os.WriteFile(recordFixture, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", recordFixture, err)
	}
	logger.Infof("recorded %q to %s", command, recordFixture)
	return nil
}

func init() {
	recordCmd.Flags().StringVar(&recordAction, "action", "", "Action name the recorded rule belongs to")
	recordCmd.Flags().StringVarP(&recordFixture, "fixture", "f", "", "Fixture file to append to, stdout when empty")
	_ = recordCmd.MarkFlagRequired("action")
	rootCmd.AddCommand(recordCmd)
}
