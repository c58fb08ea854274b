package app

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

// render writes v to the command's stdout in the configured output format.
// YAML is the default; --format json switches to indented JSON.
func (a *App) render(cmd *cobra.Command, v any) error {
	switch strings.ToLower(a.config.Output) {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(data))
		return nil
	default:
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		cmd.Print(string(data))
		return nil
	}
}

// parsePatchValue interprets a field value given on the command line.
// Numbers and booleans become typed values, "null" clears the field,
// everything else stays a string.
func parsePatchValue(raw string) any {
	switch raw {
	case "null":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.Atoi(raw); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}
