/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Seednode/guessr/feedback"
	"github.com/Seednode/guessr/game"
	"github.com/Seednode/guessr/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind           string
	port           int
	prefix         string
	profile        bool
	sessionTimeout time.Duration
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool

	datasets        []string
	schema          string
	seed            uint64
	maxAttempts     int
	tagCap          int
	characterTagNum int
	commonTags      bool
	includeGame     bool
	metaTags        []string
	startYear       int
	endYear         int
	blockedTags     []string
	hintAt          []int
	imageHintAt     int
	timeLimit       time.Duration
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}

	return c.validateGame()
}

// validateGame checks the options shared by every subcommand.
func (c *Config) validateGame() error {
	switch {
	case c.maxAttempts < 1:
		return fmt.Errorf("invalid max attempts (must be at least 1): %d", c.maxAttempts)
	case c.tagCap < 1:
		return fmt.Errorf("invalid tag cap (must be at least 1): %d", c.tagCap)
	case c.characterTagNum < 0:
		return fmt.Errorf("invalid character tag count (must not be negative): %d", c.characterTagNum)
	case c.imageHintAt < 0:
		return fmt.Errorf("invalid image hint threshold (must not be negative): %d", c.imageHintAt)
	case c.startYear < 0:
		return fmt.Errorf("invalid start year (must not be negative): %d", c.startYear)
	case c.endYear < 0:
		return fmt.Errorf("invalid end year (must not be negative): %d", c.endYear)
	case c.startYear > 0 && c.endYear > 0 && c.startYear > c.endYear:
		return fmt.Errorf("invalid year range (start after end): %d-%d", c.startYear, c.endYear)
	case c.timeLimit < 0:
		return fmt.Errorf("invalid time limit (must not be negative): %s", c.timeLimit)
	}

	for _, n := range c.hintAt {
		if n < 0 {
			return fmt.Errorf("invalid hint threshold (must not be negative): %d", n)
		}
	}

	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}

	return "http"
}

func (c *Config) settings() feedback.Settings {
	return feedback.Settings{
		MetaTags:        c.metaTags,
		SubjectTagNum:   c.tagCap,
		CharacterTagNum: c.characterTagNum,
		CommonTags:      c.commonTags,
		IncludeGame:     c.includeGame,
		StartYear:       c.startYear,
		EndYear:         c.endYear,
	}.Normalize()
}

// gameOptions builds the options for a new game. A non-zero seed makes the
// n-th game of the process reproducible.
func (c *Config) gameOptions(attrs []profile.AttributeDef, s feedback.Settings, n uint64) game.Options {
	opts := game.Options{
		Settings:       s,
		Attributes:     attrs,
		MaxAttempts:    c.maxAttempts,
		HintThresholds: c.hintAt,
		ImageHintAt:    c.imageHintAt,
		TimeLimit:      c.timeLimit,
	}
	if c.seed != 0 {
		opts.Rand = feedback.NewRand(c.seed + n)
	}

	return opts
}

func normalizeFlag(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// bindEnv mirrors every flag of fs to a GUESSR_ environment variable. Flags
// given on the command line win.
func bindEnv(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("GUESSR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "guessr",
		Short:         "Serves a character guessing game with attribute-level feedback.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			bindEnv(v, cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}

			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(normalizeFlag)
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: GUESSR_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: GUESSR_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: GUESSR_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: GUESSR_PROFILE)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle game sessions are ended (env: GUESSR_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: GUESSR_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: GUESSR_TLS_KEY)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: GUESSR_VERSION)")

	pfs := cmd.PersistentFlags()
	pfs.SetNormalizeFunc(normalizeFlag)
	pfs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: GUESSR_VERBOSE)")
	pfs.StringSliceVarP(&cfg.datasets, "dataset", "d", nil, "character dataset file, may be repeated; the bundled sample is used if unset (env: GUESSR_DATASET)")
	pfs.StringVar(&cfg.schema, "schema", "", "YAML file describing the dataset keys (env: GUESSR_SCHEMA)")
	pfs.Uint64Var(&cfg.seed, "seed", 0, "seed for answer selection and tag sampling, 0 for random (env: GUESSR_SEED)")
	pfs.IntVar(&cfg.maxAttempts, "max-attempts", game.DefaultMaxAttempts, "guesses allowed per game (env: GUESSR_MAX_ATTEMPTS)")
	pfs.IntVar(&cfg.tagCap, "tag-cap", feedback.DefaultTagCap, "tags shown per guess (env: GUESSR_TAG_CAP)")
	pfs.IntVar(&cfg.characterTagNum, "character-tag-num", feedback.DefaultCharacterTagNum, "character tags compared per guess, 0 for all (env: GUESSR_CHARACTER_TAG_NUM)")
	pfs.BoolVar(&cfg.commonTags, "common-tags", true, "compare the tags of a character's works as well (env: GUESSR_COMMON_TAGS)")
	pfs.BoolVar(&cfg.includeGame, "include-game", false, "include game works when comparing appearances (env: GUESSR_INCLUDE_GAME)")
	pfs.StringSliceVar(&cfg.metaTags, "meta-tags", nil, "tags every answer must have (env: GUESSR_META_TAGS)")
	pfs.IntVar(&cfg.startYear, "start-year", 0, "only pick answers that appeared in or after this year, 0 for no bound (env: GUESSR_START_YEAR)")
	pfs.IntVar(&cfg.endYear, "end-year", 0, "only pick answers that appeared in or before this year, 0 for no bound (env: GUESSR_END_YEAR)")
	pfs.StringSliceVar(&cfg.blockedTags, "blocked-tags", nil, "tags dropped from every character (env: GUESSR_BLOCKED_TAGS)")
	pfs.IntSliceVar(&cfg.hintAt, "hint-at", nil, "reveal a summary hint at each of these attempts left (env: GUESSR_HINT_AT)")
	pfs.IntVar(&cfg.imageHintAt, "image-hint-at", 0, "reveal the answer's image at this many attempts left, 0 to disable (env: GUESSR_IMAGE_HINT_AT)")
	pfs.DurationVar(&cfg.timeLimit, "time-limit", 0, "time allowed per guess, 0 to disable (env: GUESSR_TIME_LIMIT)")

	cmd.AddCommand(newCompareCmd(cfg), newSearchCmd(cfg))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("guessr v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
