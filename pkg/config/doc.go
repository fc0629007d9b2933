// Package config discovers, decodes and validates scd configuration files.
//
// A configuration can be written as JSON, YAML or TOML. The format is chosen
// from the file extension; files with any other extension are tried as JSON,
// then YAML, then TOML. Documents are decoded into generic maps first and
// then validated into a Config, so every format goes through the same checks
// and all problems are reported together.
package config
