// Package cli implements the lsindex command line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/spf13/cobra"

	"lsindex/src/config"
	"lsindex/src/internal/common"
	"lsindex/src/lsi"
	"lsindex/src/watcher"
)

var (
	configPath    string
	workspacePath string
	languageID    string
	pathPattern   string
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "lsindex",
	Short: "Workspace symbol index for language server clients",
	Long: `lsindex scans workspace directories for source files, tracks their
content by checksum, and maintains a queryable symbol index built from
language server document symbol responses.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			common.IndexLogger.SetLevel(common.LogDebug)
			common.ScanLogger.SetLevel(common.LogDebug)
			common.CLILogger.SetLevel(common.LogDebug)
		}
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a workspace and report tracked files",
	Long: `Scan walks the workspace directory tree, matches files against the
language's configured file types, and reports each tracked file along
with whether its content has drifted since the last synchronization.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := buildWorkspace()
		if err != nil {
			return err
		}
		if err := w.ScanWorkspaceFiles(); err != nil {
			return err
		}
		for _, f := range w.Files {
			needsUpdate, err := f.NeedsUpdate()
			switch {
			case err != nil:
				fmt.Printf("%s\t(unreadable)\n", f.FilePath)
			case needsUpdate:
				fmt.Printf("%s\t(stale)\n", f.FilePath)
			default:
				fmt.Printf("%s\n", f.FilePath)
			}
		}
		common.CLILogger.Info("workspace %s: %d files tracked", w.WorkspacePath, len(w.Files))
		return nil
	},
}

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List tracked workspace files, optionally filtered by regex",
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := buildWorkspace()
		if err != nil {
			return err
		}
		if err := w.ScanWorkspaceFiles(); err != nil {
			return err
		}
		var re *regexp.Regexp
		if pathPattern != "" {
			re, err = regexp.Compile(pathPattern)
			if err != nil {
				return fmt.Errorf("invalid pattern %q: %w", pathPattern, err)
			}
		}
		for _, f := range w.Files {
			if re != nil && !re.MatchString(f.FilePath) && !re.MatchString(f.RelativePath()) {
				continue
			}
			fmt.Println(f.FilePath)
		}
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a workspace and report files whose content drifts",
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := buildWorkspace()
		if err != nil {
			return err
		}
		if err := w.ScanWorkspaceFiles(); err != nil {
			return err
		}

		fw, err := watcher.NewFileWatcher(w.LanguageConfig.Extensions(), func(ev watcher.Event) {
			f := w.FileByPath(ev.Path)
			if f == nil {
				if err := w.ScanWorkspaceFiles(); err != nil {
					common.CLILogger.Warn("rescan failed: %v", err)
					return
				}
				f = w.FileByPath(ev.Path)
				if f == nil {
					return
				}
			}
			needsUpdate, err := f.NeedsUpdate()
			if err != nil {
				common.CLILogger.Warn("cannot check %s: %v", ev.Path, err)
				return
			}
			if needsUpdate {
				fmt.Printf("%s\t(stale)\n", f.FilePath)
			}
		})
		if err != nil {
			return err
		}
		defer fw.Stop()
		if err := fw.Watch(w.WorkspacePath); err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		fw.Start(ctx)
		common.CLILogger.Info("watching %s, press Ctrl-C to stop", w.WorkspacePath)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage lsindex configuration",
}

var configGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.GetDefaultConfigPath()
		}
		if err := config.GenerateDefaultConfig(path); err != nil {
			return err
		}
		fmt.Printf("wrote default config to %s\n", path)
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.GetDefaultConfigPath()
		}
		cfg, err := config.LoadConfig(path)
		if err != nil {
			return err
		}
		fmt.Printf("%s is valid (%d languages)\n", path, len(cfg.Languages))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the default configuration file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(config.GetDefaultConfigPath())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.lsindex/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	for _, cmd := range []*cobra.Command{scanCmd, filesCmd, watchCmd} {
		cmd.Flags().StringVarP(&workspacePath, "workspace", "w", ".", "workspace root directory")
		cmd.Flags().StringVarP(&languageID, "language", "l", "", "language id (required)")
		cmd.MarkFlagRequired("language")
	}
	filesCmd.Flags().StringVarP(&pathPattern, "pattern", "p", "", "file path regex filter")

	configCmd.AddCommand(configGenerateCmd, configValidateCmd, configPathCmd)
	rootCmd.AddCommand(scanCmd, filesCmd, watchCmd, configCmd)
}

// buildWorkspace assembles a workspace from the config and the shared
// --workspace/--language flags
func buildWorkspace() (*lsi.Workspace, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	langCfg, err := cfg.LanguageFor(languageID)
	if err != nil {
		return nil, err
	}
	return lsi.NewWorkspace(workspacePath, languageID, langCfg, cfg.Scan)
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.GetDefaultConfigPath()
		if !common.FileExists(path) {
			return config.GetDefaultConfig(), nil
		}
	}
	return config.LoadConfig(path)
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}
