package config

import "github.com/spf13/viper"

// development holds profiling switches that are only useful when working on
// vulncert itself; both hook into pkg/profile at process startup.
type development struct {
	ProfileCPU bool `yaml:"profile-cpu" mapstructure:"profile-cpu"`
	ProfileMem bool `yaml:"profile-mem" mapstructure:"profile-mem"`
}

func (cfg development) loadDefaultValues(v *viper.Viper) {
	v.SetDefault("dev.profile-cpu", false)
	v.SetDefault("dev.profile-mem", false)
}
