// Package config handles configuration loading and validation from
// environment variables. It provides type-safe access to the library's
// tunables (worker count, log level, data directory) while keeping
// configuration details separate from the scheduling logic.
package config
