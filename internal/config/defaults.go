package config

const (
	defaultDataDir            = "~/.local/share/faceangle/data"
	defaultOutputDir          = "~/.local/share/faceangle/output"
	defaultLogDir             = "~/.local/share/faceangle/logs"
	defaultResultsDB          = "~/.local/share/faceangle/results.db"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultMultiplier         = 0.5
	defaultMinThreshold       = 3.0
	defaultReferenceContrast  = -0.5
	defaultComparisonContrast = 0.5
	defaultSingularTolerance  = 1e-6
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			ResultsDB: defaultResultsDB,
		},
		Analysis: Analysis{
			Multiplier:         defaultMultiplier,
			MinThreshold:       defaultMinThreshold,
			ReferenceContrast:  defaultReferenceContrast,
			ComparisonContrast: defaultComparisonContrast,
			SingularTolerance:  defaultSingularTolerance,
			StrictChannels:     false,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
