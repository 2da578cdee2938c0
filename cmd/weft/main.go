// Command weft renders a template file against context data loaded from
// YAML, TOML, or JSON files.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mwrend/weft"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "weft",
		Short:         "weft renders workflow templates",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.AddCommand(newRenderCmd())
	return cmd
}

type renderFlags struct {
	dataFiles     []string
	preserveTypes bool
}

func newRenderCmd() *cobra.Command {
	flags := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render [template-file]",
		Short: "Render a template file (or stdin with '-') against context data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], flags)
		},
	}
	cmd.Flags().StringArrayVarP(&flags.dataFiles, "data-file", "d", nil,
		"context data file (.yaml, .yml, .toml, or .json); repeatable, later files win")
	cmd.Flags().BoolVar(&flags.preserveTypes, "preserve-types", false,
		"return the typed value when the template is a single expression")
	return cmd
}

func runRender(cmd *cobra.Command, templatePath string, flags *renderFlags) error {
	text, err := readTemplate(templatePath)
	if err != nil {
		return err
	}

	ctx := weft.Context{}
	for _, path := range flags.dataFiles {
		data, err := loadDataFile(path)
		if err != nil {
			return err
		}
		for k, v := range data {
			ctx[k] = v
		}
	}

	if flags.preserveTypes {
		value, err := weft.Eval(text, ctx)
		if err != nil {
			return err
		}
		if s, ok := value.(string); ok {
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), weft.Inspect(value))
		return nil
	}

	out, err := weft.Render(text, ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func readTemplate(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading template: %w", err)
	}
	return string(data), nil
}

// loadDataFile parses a context file by extension.
func loadDataFile(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading data file: %w", err)
	}

	out := map[string]interface{}{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		normalizeTOMLInts(out)
	case ".json":
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		normalizeJSONNumbers(out)
	default:
		return nil, fmt.Errorf("unsupported data file extension: %s", path)
	}
	return out, nil
}

// normalizeTOMLInts rewrites the int64 values produced by the TOML decoder
// into ints, the integer type the engine computes with.
func normalizeTOMLInts(m map[string]interface{}) {
	for k, v := range m {
		m[k] = normalizeTOMLValue(v)
	}
}

func normalizeTOMLValue(v interface{}) interface{} {
	switch val := v.(type) {
	case int64:
		return int(val)
	case []interface{}:
		for i, elem := range val {
			val[i] = normalizeTOMLValue(elem)
		}
		return val
	case map[string]interface{}:
		normalizeTOMLInts(val)
		return val
	default:
		return v
	}
}

// normalizeJSONNumbers rewrites integral float64 values produced by
// encoding/json into ints, so template arithmetic sees integers where the
// source document wrote them.
func normalizeJSONNumbers(m map[string]interface{}) {
	for k, v := range m {
		m[k] = normalizeJSONValue(v)
	}
}

func normalizeJSONValue(v interface{}) interface{} {
	switch val := v.(type) {
	case float64:
		if val == float64(int(val)) {
			return int(val)
		}
		return val
	case []interface{}:
		for i, elem := range val {
			val[i] = normalizeJSONValue(elem)
		}
		return val
	case map[string]interface{}:
		normalizeJSONNumbers(val)
		return val
	default:
		return v
	}
}
