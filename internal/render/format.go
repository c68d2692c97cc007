// Package render writes query results and listings as a table, JSON, YAML
// or CSV.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Format names an output format.
type Format string

const (
	Auto  Format = "auto"
	Table Format = "table"
	JSON  Format = "json"
	YAML  Format = "yaml"
	CSV   Format = "csv"
)

// Formats lists every accepted format name.
var Formats = []Format{Auto, Table, JSON, YAML, CSV}

// ParseFormat validates a format name. The empty string means Auto.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return Auto, nil
	}
	f := Format(strings.ToLower(s))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (want one of auto, table, json, yaml, csv)", s)
}

// Resolve turns Auto into Table when w is a terminal and JSON otherwise.
func Resolve(f Format, w io.Writer) Format {
	if f != Auto && f != "" {
		return f
	}
	if file, ok := w.(*os.File); ok {
		fd := file.Fd()
		if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
			return Table
		}
	}
	return JSON
}
