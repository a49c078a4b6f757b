// Package config loads the optional YAML configuration of
// integrity_check. Values from the file override the defaults;
// command line flags override both.
package config
