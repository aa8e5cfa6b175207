package config

import (
	"github.com/spf13/viper"

	"github.com/vulncert/vulncert/vulncert/matcher"
)

// matchConfig contains all matching-related configuration options available to the user via the application config.
type matchConfig struct {
	ScoreThreshold  float64 `yaml:"score-threshold" mapstructure:"score-threshold"`   // minimum similarity score (0-100) for a dictionary record to count as a match
	MaxMatches      int     `yaml:"max-matches" mapstructure:"max-matches"`           // maximum number of ranked matches kept per product
	PairingStrategy string  `yaml:"pairing-strategy" mapstructure:"pairing-strategy"` // how certificate versions pair with dictionary versions
}

func (cfg matchConfig) loadDefaultValues(v *viper.Viper) {
	defaults := matcher.DefaultConfig()
	v.SetDefault("match.score-threshold", defaults.MatchThreshold)
	v.SetDefault("match.max-matches", defaults.MaxMatches)
	v.SetDefault("match.pairing-strategy", string(defaults.PairingStrategy))
}

func (cfg *matchConfig) parseConfigValues() error {
	_, err := matcher.ParsePairingStrategy(cfg.PairingStrategy)
	return err
}

func (cfg matchConfig) ToMatcherConfig() matcher.Config {
	return matcher.Config{
		MatchThreshold:  cfg.ScoreThreshold,
		MaxMatches:      cfg.MaxMatches,
		PairingStrategy: matcher.PairingStrategy(cfg.PairingStrategy),
	}
}
