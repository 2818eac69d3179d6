package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/understudy/fixtures"
	"github.com/flanksource/understudy/shutdown"
	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var lintCmd = &cobra.Command{
	Use:          "lint [patterns...]",
	Short:        "Validate fixture documents and warn about suspect rules",
	RunE:         runLint,
	SilenceUsage: true,
}

var watchFixtures bool

func runLint(cmd *cobra.Command, args []string) error {
	patterns := args
	if len(patterns) == 0 {
		patterns = fixtures.DefaultPatterns()
	}

	if !watchFixtures {
		return lintOnce(patterns)
	}

	if err := lintOnce(patterns); err != nil {
		logger.Errorf("%v", err)
	}
	return watchAndLint(patterns)
}

func lintOnce(patterns []string) error {
	files, err := fixtures.Discover(patterns...)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no fixture files match %s", strings.Join(patterns, ", "))
	}

	failed := 0
	for _, file := range files {
		doc, err := fixtures.Load(file)
		if err != nil {
			failed++
			logger.Errorf("%v", err)
			continue
		}
		for _, warning := range doc.Validate() {
			logger.Warnf("%v", warning)
		}
		logger.Infof("%s: %d actions", file, doc.Len())
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d fixture files failed to load", failed, len(files))
	}
	return nil
}

func watchAndLint(patterns []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	shutdown.AddHook("close fixture watcher", func() { _ = watcher.Close() })

	files, err := fixtures.Discover(patterns...)
	if err != nil {
		return err
	}
	dirs := lo.Uniq(lo.Map(files, func(file string, _ int) string { return filepath.Dir(file) }))
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		logger.V(4).Infof("watching %s", dir)
	}

	go func() {
		// Editors fire several events per save, so debounce before re-linting.
		var (
			pending     bool
			pendingFrom time.Time
		)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if pending && time.Since(pendingFrom) >= 200*time.Millisecond {
					pending = false
					if err := lintOnce(patterns); err != nil {
						logger.Errorf("%v", err)
					}
				}
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
					logger.V(4).Infof("%s changed", event.Name)
					pending = true
					pendingFrom = time.Now()
				}
			case watchErr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Errorf("watcher error: %v", watchErr)
			}
		}
	}()

	shutdown.WaitForInterrupt()
	return nil
}

func init() {
	lintCmd.Flags().BoolVar(&watchFixtures, "watch", false, "Re-validate whenever fixture files change")
	rootCmd.AddCommand(lintCmd)
}
