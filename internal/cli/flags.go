package cli

import "virtest/internal/config"

// Flags holds command-line flags
type Flags struct {
	TestPath   string
	NameFilter string
	ConfigFile string
	LogLevel   string
	Debug      bool
	FailFast   bool
	OpenFaills bool
	TestCases  bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		TestPath:   f.TestPath,
		NameFilter: f.NameFilter,
		ConfigFile: f.ConfigFile,
		LogLevel:   f.LogLevel,
		Debug:      f.Debug,
		FailFast:   f.FailFast,
		OpenFaills: f.OpenFaills,
		TestCases:  f.TestCases,
	}
}
