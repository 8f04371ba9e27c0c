package utils

// Ignore file and configuration names used across the project.
const (
	// GitIgnoreFileName is the name of the Git ignore file read by default.
	GitIgnoreFileName = ".gitignore"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
	// LocalConfigFileName is the configuration file looked up in the working directory.
	LocalConfigFileName = ".structmd.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home holding global configuration.
	GlobalConfigDirectoryName = ".structmd"
	// GlobalConfigFileName is the configuration file inside GlobalConfigDirectoryName.
	GlobalConfigFileName = "config.yaml"
	// DefaultOutputFileName is where the rendered tree is written when no destination is configured.
	DefaultOutputFileName = "project_structure.md"
)

// Messages shared by the entry point.
const (
	// LoggerInitializationFailedMessageFormat reports a logger construction failure.
	LoggerInitializationFailedMessageFormat = "initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes the fatal error logged by the entry point.
	ApplicationExecutionFailedMessage = "structmd failed"
)
