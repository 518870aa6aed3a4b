// Package utils hosts shared infrastructure for the changeflow CLI: the
// Viper-backed configuration loader, the zap logger factory, and the command
// context accessor used to thread CLI state through Cobra commands.
package utils
