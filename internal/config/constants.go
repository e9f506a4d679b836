package config

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 2335
	defaultEnv        = "development"

	defaultTemperature  = 0.2
	defaultMaxTokens    = 4096
	defaultMaxImageEdge = 2048
	defaultJPEGQuality  = 85

	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBPassword = "password"
	defaultDBName     = "essay_grader"
	defaultDBCharset  = "utf8mb4"
	defaultDBLoc      = "Local"
)
