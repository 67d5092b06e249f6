// Package config loads service configuration from a YAML or TOML file, an
// optional .env file and the process environment.
//
// Environment variables are bound onto nested keys, so OPENAI_API_KEY fills
// openai.api_key and SERVER_PORT fills server.port. Values from the
// environment win over the file.
//
//	type AppConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Server server.Config `yaml:"server" mapstructure:"server"`
//	}
//
//	var cfg AppConfig
//	err := config.LoadConfig("subtitler", &cfg)
package config
