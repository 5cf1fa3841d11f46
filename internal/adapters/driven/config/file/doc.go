// Package file provides the file-based configuration adapter.
//
//   - ConfigStore: TOML configuration at ~/.kbsync/config.toml
//   - Settings: typed view of the configuration with defaults and
//     environment overrides
//   - Watcher: fsnotify watch that reports organization changes
package file
