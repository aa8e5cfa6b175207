package config

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// logging controls what the application reports while running and where it lands.
type logging struct {
	Structured   bool         `yaml:"structured" mapstructure:"structured"` // emit entries as JSON rather than human-readable text
	LevelOpt     logrus.Level `yaml:"-"`                                    // parsed level, derived from Level and the verbosity flags
	Level        string       `yaml:"level" mapstructure:"level"`           // level name as given in config or environment
	FileLocation string       `yaml:"file" mapstructure:"file"`             // optional path to mirror entries to
}

func (cfg logging) loadDefaultValues(v *viper.Viper) {
	v.SetDefault("log.structured", false)
	v.SetDefault("log.level", "")
	v.SetDefault("log.file", "")
}
