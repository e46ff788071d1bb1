// Package config loads frusal.json, the project file that names the target workspace
// and the backend holding it. Environment variables prefixed FRUSAL_ override the file.
package config
