// Package configs provides embedded configuration files for twitterss.
package configs

import "embed"

// ExampleConfig is the name of the annotated sample configuration
const ExampleConfig = "config.example.yaml"

// EmbeddedConfigs exposes embedded configuration files for read-only access.
//
//go:embed *.yaml
var EmbeddedConfigs embed.FS

// Example returns the sample configuration file contents
func Example() ([]byte, error) {
	return EmbeddedConfigs.ReadFile(ExampleConfig)
}
