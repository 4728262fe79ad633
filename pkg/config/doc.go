// Package config loads typed configuration structs from environment
// variables, with optional .env file support for local development.
//
// Parsing is delegated to github.com/caarlos0/env; struct fields declare
// their environment bindings with `env` tags and defaults with `envDefault`.
// Each configuration type is parsed once per process and cached, so packages
// can declare their own config structs and call Load independently without
// coordinating.
package config
