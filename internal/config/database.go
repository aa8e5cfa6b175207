package config

import (
	"path"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/vulncert/vulncert/internal"
	"github.com/vulncert/vulncert/vulncert/db"
)

type database struct {
	Dir           string        `yaml:"cache-dir" mapstructure:"cache-dir"`
	FeedURL       string        `yaml:"feed-url" mapstructure:"feed-url"`
	DictionaryURL string        `yaml:"dictionary-url" mapstructure:"dictionary-url"`
	MatchFeedURL  string        `yaml:"match-feed-url" mapstructure:"match-feed-url"`
	SkipMatchFeed bool          `yaml:"skip-match-feed" mapstructure:"skip-match-feed"`
	AutoUpdate    bool          `yaml:"auto-update" mapstructure:"auto-update"`
	StaleAfter    time.Duration `yaml:"stale-after" mapstructure:"stale-after"`
}

func (cfg database) loadDefaultValues(v *viper.Viper) {
	v.SetDefault("db.cache-dir", path.Join(xdg.CacheHome, internal.ApplicationName, "db"))
	v.SetDefault("db.feed-url", db.FeedURLTemplate)
	v.SetDefault("db.dictionary-url", db.DictionaryURL)
	v.SetDefault("db.match-feed-url", db.MatchFeedURL)
	v.SetDefault("db.skip-match-feed", false)
	v.SetDefault("db.auto-update", true)
	v.SetDefault("db.stale-after", db.DefaultStaleAfter)
}

func (cfg database) ToCuratorConfig() db.Config {
	return db.Config{
		DBDir:           cfg.Dir,
		FeedURLTemplate: cfg.FeedURL,
		DictionaryURL:   cfg.DictionaryURL,
		MatchFeedURL:    cfg.MatchFeedURL,
		SkipMatchFeed:   cfg.SkipMatchFeed,
		StaleAfter:      cfg.StaleAfter,
	}
}
