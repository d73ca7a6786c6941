package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/linux-china/dotenvx-go/internal/envfile"
)

// emitEntries prints key/value pairs in the requested format. The flag is
// honored strictly; an unknown format is an error rather than a fallback.
func emitEntries(w io.Writer, entries []envfile.Entry, format string) error {
	switch format {
	case "text", "":
		for _, entry := range entries {
			fmt.Fprintf(w, "%s=%s\n", entry.Key, entry.Value)
		}
	case "shell":
		for _, entry := range entries {
			fmt.Fprintf(w, "export %s=%s\n", entry.Key, envfile.WrapShellValue(entry.Value))
		}
	case "json":
		values := make(map[string]string, len(entries))
		for _, entry := range entries {
			values[entry.Key] = entry.Value
		}
		out, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(out))
	case "csv":
		cw := csv.NewWriter(w)
		for _, entry := range entries {
			if err := cw.Write([]string{entry.Key, entry.Value}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	case "raw":
		for _, entry := range entries {
			fmt.Fprintln(w, entry.Value)
		}
	default:
		return fmt.Errorf("dotenvx: unknown format %q (want text, shell, json, csv or raw)", format)
	}
	return nil
}

// emitValue prints one resolved value in the requested format.
func emitValue(w io.Writer, key, value, format string) error {
	switch format {
	case "text", "", "raw":
		fmt.Fprintln(w, value)
		return nil
	default:
		return emitEntries(w, []envfile.Entry{{Key: key, Value: value}}, format)
	}
}
