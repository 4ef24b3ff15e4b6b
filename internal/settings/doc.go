// Package settings is the per-device Configuration Store.
//
// The configuration is a single JSON document under the "app_config"
// settings key. GetConfig materializes the hardcoded defaults on first
// access; SaveConfig replaces the whole document (last write wins, one
// writer per device). The store validates nothing: field constraints belong
// to the caller.
//
// Booth profiles (LoadProfile) let staff prepare a device from a CUE, JSON or
// YAML file. Profiles are checked against an embedded CUE schema, so a typo
// in a field name is reported instead of silently ignored.
package settings
