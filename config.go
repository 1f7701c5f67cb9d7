package impactor

import (
	"os"

	"github.com/spf13/viper"
)

var (
	cfgLoaded = false
	config    = _impactorconfig{}
)

// _impactorconfig is a "hidden" struct, just use `impactorConfig`
type _impactorconfig struct {
	outputDir string
}

// impactorConfig returns the engine configuration. The config file is
// optional: IMPACTOR_CONFIG points at a directory holding conf.toml, and
// everything falls back to a sane default when unset.
func impactorConfig() _impactorconfig {
	if cfgLoaded {
		return config
	}
	outputDir := "./output"
	if confPath := os.Getenv("IMPACTOR_CONFIG"); confPath != "" {
		viper.SetConfigName("conf")
		viper.AddConfigPath(confPath)
		if err := viper.ReadInConfig(); err == nil {
			if dir := viper.GetString("general.output_path"); dir != "" {
				outputDir = dir
			}
		}
	}
	cfgLoaded = true
	config = _impactorconfig{outputDir: outputDir}
	return config
}
