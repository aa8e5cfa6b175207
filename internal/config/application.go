package config

import (
	"errors"
	"fmt"
	"path"
	"reflect"
	"strings"

	"github.com/adrg/xdg"
	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/vulncert/vulncert/internal"
	"github.com/vulncert/vulncert/vulncert/vulnerability"
)

var ErrApplicationConfigNotFound = fmt.Errorf("application config not found")

type defaultValueLoader interface {
	loadDefaultValues(*viper.Viper)
}

type parser interface {
	parseConfigValues() error
}

type CliOnlyOptions struct {
	ConfigPath string
	Verbosity  int
}

type Application struct {
	ConfigPath        string                  `yaml:",omitempty"`                                               // where the config was read from (-c value or the discovered location)
	Output            string                  `yaml:"output" mapstructure:"output"`                             // -o, report format name
	File              string                  `yaml:"file" mapstructure:"file"`                                 // --file, report destination (stdout when empty)
	Quiet             bool                    `yaml:"quiet" mapstructure:"quiet"`                               // -q, drop all status output to stderr (ETUI and logging alike)
	CheckForAppUpdate bool                    `yaml:"check-for-app-update" mapstructure:"check-for-app-update"` // ask the release endpoint for a newer version on start up
	FailOn            string                  `yaml:"fail-on-severity" mapstructure:"fail-on-severity"`         // severity that, once met or exceeded by any result, fails the run
	FailOnSeverity    *vulnerability.Severity `yaml:"-"`
	CliOptions        CliOnlyOptions          `yaml:"-"`
	Log               logging                 `yaml:"log" mapstructure:"log"`
	Db                database                `yaml:"db" mapstructure:"db"`
	Match             matchConfig             `yaml:"match" mapstructure:"match"`
	Dev               development             `yaml:"dev" mapstructure:"dev"`
}

func newApplicationConfig(v *viper.Viper, cliOpts CliOnlyOptions) *Application {
	config := &Application{
		CliOptions: cliOpts,
	}
	config.loadDefaultValues(v)

	return config
}

// LoadApplicationConfig builds the effective configuration from defaults, a config file
// (explicit or discovered, and a missing file is fine), environment variables, and bound
// CLI flags, then validates the result.
func LoadApplicationConfig(v *viper.Viper, cliOpts CliOnlyOptions) (*Application, error) {
	config := newApplicationConfig(v, cliOpts)

	if err := readConfig(v, cliOpts.ConfigPath); err != nil && !errors.Is(err, ErrApplicationConfigNotFound) {
		return nil, err
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to parse config: %w", err)
	}
	config.ConfigPath = v.ConfigFileUsed()

	if err := config.parseConfigValues(); err != nil {
		return nil, fmt.Errorf("invalid application config: %w", err)
	}

	return config, nil
}

// loadDefaultValues seeds the viper instance before any file or environment values are read.
func (cfg Application) loadDefaultValues(v *viper.Viper) {
	v.SetDefault("check-for-app-update", true)

	// each config section registers its own defaults (value receiver, so the zero struct works)
	value := reflect.ValueOf(cfg)
	for i := 0; i < value.NumField(); i++ {
		if loadable, ok := value.Field(i).Interface().(defaultValueLoader); ok {
			loadable.loadDefaultValues(v)
		}
	}
}

func (cfg *Application) parseConfigValues() error {
	for _, parse := range []func() error{
		cfg.parseLogLevelOption,
		cfg.parseFailOnOption,
	} {
		if err := parse(); err != nil {
			return err
		}
	}

	// sections implement parser on pointer receivers, so walk the addressable fields
	value := reflect.ValueOf(cfg).Elem()
	for i := 0; i < value.NumField(); i++ {
		if parsable, ok := value.Field(i).Addr().Interface().(parser); ok {
			if err := parsable.parseConfigValues(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (cfg *Application) parseLogLevelOption() error {
	switch {
	case cfg.Quiet:
		// -q silences the console and the log file alike
		cfg.Log.LevelOpt = logrus.PanicLevel
	case cfg.CliOptions.Verbosity == 1:
		cfg.Log.LevelOpt = logrus.InfoLevel
	case cfg.CliOptions.Verbosity >= 2:
		cfg.Log.LevelOpt = logrus.DebugLevel
	case cfg.Log.Level != "":
		var err error
		cfg.Log.LevelOpt, err = logrus.ParseLevel(strings.ToLower(cfg.Log.Level))
		if err != nil {
			return fmt.Errorf("bad log level configured (%q): %w", cfg.Log.Level, err)
		}
	default:
		cfg.Log.LevelOpt = logrus.ErrorLevel
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = cfg.Log.LevelOpt.String()
	}

	return nil
}

func (cfg *Application) parseFailOnOption() error {
	if cfg.FailOn != "" {
		failOnSeverity := vulnerability.ParseSeverity(cfg.FailOn)
		if failOnSeverity == vulnerability.UnknownSeverity {
			return fmt.Errorf("bad --fail-on severity value '%s'", cfg.FailOn)
		}
		cfg.FailOnSeverity = &failOnSeverity
	}
	return nil
}

func (cfg Application) String() string {
	// rendered as yaml, which reads far better in debug logs than json would
	appCfgStr, err := yaml.Marshal(&cfg)
	if err != nil {
		return err.Error()
	}

	return string(appCfgStr)
}

// readConfig reads the explicitly given config file, or walks the conventional locations
// (nearest first) until one parses. Returns ErrApplicationConfigNotFound when no location
// has a config at all.
func readConfig(v *viper.Viper, configPath string) error {
	v.AutomaticEnv()
	v.SetEnvPrefix(internal.ApplicationName)
	// nested options may come from the environment, e.g. db.auto-update = VULNCERT_DB_AUTO_UPDATE
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// an explicitly given path is authoritative, no discovery
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read application config=%q : %w", configPath, err)
		}
		return nil
	}

	type location struct {
		name  string
		paths []string
	}
	locations := []location{
		// .vulncert.yaml in the working directory
		{name: "." + internal.ApplicationName, paths: []string{"."}},
		// .vulncert/config.yaml in the working directory
		{name: "config", paths: []string{"." + internal.ApplicationName}},
	}
	// ~/.vulncert.yaml, when the home directory is resolvable
	if home, err := homedir.Dir(); err == nil {
		locations = append(locations, location{name: "." + internal.ApplicationName, paths: []string{home}})
	}
	// vulncert/config.yaml under the xdg config home, then the system xdg dirs
	xdgPaths := []string{path.Join(xdg.ConfigHome, internal.ApplicationName)}
	for _, dir := range xdg.ConfigDirs {
		xdgPaths = append(xdgPaths, path.Join(dir, internal.ApplicationName))
	}
	locations = append(locations, location{name: "config", paths: xdgPaths})

	for _, loc := range locations {
		for _, p := range loc.paths {
			v.AddConfigPath(p)
		}
		v.SetConfigName(loc.name)

		err := v.ReadInConfig()
		if err == nil {
			return nil
		}
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return fmt.Errorf("unable to parse config=%q: %w", v.ConfigFileUsed(), err)
		}
	}

	return ErrApplicationConfigNotFound
}
