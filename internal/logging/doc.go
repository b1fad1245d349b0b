// Package logging provides leveled logging on top of the standard library
// logger. The level is read once from the LOG_LEVEL environment variable
// (debug, info, warn, error); DEBUG=1 forces debug output.
package logging
