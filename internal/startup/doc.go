// Package startup handles configuration loading and build metadata. All
// configuration comes from environment variables (with an optional .env
// file) and is logged once at boot.
package startup
