// Package util holds small helpers shared by the pipeline packages: size
// parsing for configured byte limits, string defaulting and sanitizing of
// text produced by external tools.
package util
