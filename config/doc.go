// Package config provides configuration loading and validation for
// flowcheck.
//
// It uses Viper to load configuration from a YAML file and environment
// variables, with .env file support for local development. Environment
// variables override file values using underscore-separated paths
// (e.g. FLOW_WORKERS overrides flow.workers).
//
// # Usage
//
//	cfg, err := config.Load()
//	cfg, err := config.Load(config.WithConfigFile("flowcheck.yml"))
package config
