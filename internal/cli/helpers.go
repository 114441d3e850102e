package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// parseData turns key=value pairs into an event payload. Values that parse as
// int, float or bool keep that type; everything else stays a string.
func parseData(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	data := make(map[string]any, len(pairs))
	for _, p := range pairs {
		key, raw, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid data %q, expected key=value", p)
		}
		data[key] = parseValue(raw)
	}
	return data, nil
}

func parseValue(raw string) any {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

// percentFlag returns --percent if set, otherwise the configured default.
func percentFlag(cmd *cobra.Command, configured float64) (float64, error) {
	if !cmd.Flags().Changed("percent") {
		return configured, nil
	}
	return cmd.Flags().GetFloat64("percent")
}
