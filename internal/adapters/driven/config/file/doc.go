// Package file keeps docmerge settings in a TOML file under the user's
// config directory. ConfigStore is the only adapter here.
package file
