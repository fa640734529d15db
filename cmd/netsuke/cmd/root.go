// Package cmd implements the netsuke command-line frontend: flag parsing,
// capability-object construction (logger, catalogue, reporter, config), and
// dispatch into internal/pipeline. One file per subcommand, with
// package-level flag variables registered in each file's init().
package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/leynos/netsuke-go/internal/i18n"
	"github.com/leynos/netsuke-go/internal/logging"
	"github.com/leynos/netsuke-go/internal/netsukecfg"
	"github.com/leynos/netsuke-go/internal/pipeline"
	"github.com/leynos/netsuke-go/internal/status"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags shared by every subcommand.
var (
	manifestPath string
	workDir      string
	jobs         int
	verbose      bool
	locale       string

	accessibleFlag bool
	richFlag       bool
	noEmojiFlag    bool

	allowedSchemes []string
	allowedHosts   []string
	blockedHosts   []string
	denyAllHosts   bool
)

var rootCmd = &cobra.Command{
	Use:   "netsuke [targets...]",
	Short: "Compile a templated build manifest into an executor build file and run it",
	Long: `netsuke ingests a templated YAML build manifest, expands its template
expressions, resolves it into a content-addressed build graph, emits a ninja
build file, and invokes ninja to execute it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(cmd, args)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&manifestPath, "manifest", "f", "netsuke.yaml", "manifest file path")
	rootCmd.PersistentFlags().StringVarP(&workDir, "workdir", "C", "", "working directory (default: current)")
	rootCmd.PersistentFlags().IntVarP(&jobs, "jobs", "j", 0, "parallel job count (0: executor default)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose per-stage timing")
	rootCmd.PersistentFlags().StringVar(&locale, "locale", "", "locale override (default: auto-detect)")

	rootCmd.PersistentFlags().BoolVar(&accessibleFlag, "accessible", false, "force plain-text progress output")
	rootCmd.PersistentFlags().BoolVar(&richFlag, "rich", false, "force colour progress output")
	rootCmd.PersistentFlags().BoolVar(&noEmojiFlag, "no-emoji", false, "suppress emoji markers in rich output")

	rootCmd.PersistentFlags().StringArrayVar(&allowedSchemes, "allow-scheme", nil, "allowed URL scheme (repeatable)")
	rootCmd.PersistentFlags().StringArrayVar(&allowedHosts, "allow-host", nil, "allowed host pattern (repeatable)")
	rootCmd.PersistentFlags().StringArrayVar(&blockedHosts, "block-host", nil, "blocked host pattern (repeatable)")
	rootCmd.PersistentFlags().BoolVar(&denyAllHosts, "deny-all-hosts", false, "deny network fetches to every host not explicitly allowed")

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("netsuke {{.Version}}\n")
}

// getWorkDir returns the effective working directory.
func getWorkDir() (string, error) {
	if workDir != "" {
		return workDir, nil
	}
	return os.Getwd()
}

// loadConfig reads netsuke.toml from dir and layers the CLI network-policy
// flags on top; flags always win over the file.
func loadConfig(dir string) (*netsukecfg.Config, error) {
	cfg, err := netsukecfg.Load(dir + "/netsuke.toml")
	if err != nil {
		return nil, fmt.Errorf("loading netsuke.toml: %w", err)
	}
	if len(allowedSchemes) > 0 {
		cfg.Network.AllowedSchemes = allowedSchemes
	}
	if len(allowedHosts) > 0 {
		cfg.Network.AllowedHosts = allowedHosts
	}
	if len(blockedHosts) > 0 {
		cfg.Network.BlockedHosts = blockedHosts
	}
	if denyAllHosts {
		cfg.Network.DenyAllHosts = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newCatalogue builds the localisation catalogue, auto-detecting the locale
// unless --locale was given.
func newCatalogue() *i18n.Catalogue {
	cat := i18n.New()
	loc := locale
	if loc == "" {
		loc = i18n.DetectLocale()
	}
	cat.SetActive(loc)
	return cat
}

// newReporter resolves accessible/rich mode from flags and the environment,
// wrapping it in the verbose timing reporter when --verbose is set.
func newReporter(loc *i18n.Catalogue) status.Reporter {
	var explicitAccessible *bool
	switch {
	case accessibleFlag:
		v := true
		explicitAccessible = &v
	case richFlag:
		v := false
		explicitAccessible = &v
	}
	accessible := status.Accessible(explicitAccessible, os.Getenv("NO_COLOR"), os.Getenv("TERM"))

	var explicitNoEmoji *bool
	if noEmojiFlag {
		v := true
		explicitNoEmoji = &v
	}
	suppressEmoji := status.SuppressEmoji(explicitNoEmoji, os.Getenv("NETSUKE_NO_EMOJI"))

	reporter := status.NewReporter(os.Stderr, accessible, suppressEmoji)
	if verbose {
		reporter = &status.VerboseTimingReporter{Inner: reporter, Out: os.Stderr, Loc: loc}
	}
	return reporter
}

// newPipeline assembles the capability objects every subcommand needs.
func newPipeline() (*pipeline.Pipeline, error) {
	dir, err := getWorkDir()
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(dir)
	if err != nil {
		return nil, err
	}
	cat := newCatalogue()
	level := logrus.InfoLevel
	if verbose {
		level = logrus.DebugLevel
	}
	logger := logging.New(os.Stderr, level, logging.FormatText)
	reporter := newReporter(cat)
	return pipeline.New(logger, cat, reporter, cfg, dir), nil
}
