// Package config loads typematic settings from TOML files and the
// environment.
//
// Settings resolve in three layers: a named profile supplies the base
// timeout and interval, the config file may override either, and
// TYPEMATIC_* environment variables override the file. A missing
// config file is not an error; the defaults apply.
package config
