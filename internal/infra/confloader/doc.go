// Package confloader loads server configuration with koanf.
//
// Sources are merged in priority order: defaults, then the YAML config
// file, then PEERMEET_* environment variables. A companion fsnotify
// watcher reloads the file at runtime so settings like the log level
// can change without a restart.
package confloader
