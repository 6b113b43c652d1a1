package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/stratalace/site/internal/form"
	"github.com/stratalace/site/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score [fields-file]",
	Short: "Score a lead from a YAML or JSON file of wizard answers",
	Long: `Reads wizard answers keyed by field name (e.g. budgetRange, urgency,
decisionMakers) and prints the lead score breakdown as JSON.

Use "-" to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

var validateCmd = &cobra.Command{
	Use:   "validate [fields-file]",
	Short: "Run the wizard's step validators over a file of answers",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runScore(cmd *cobra.Command, args []string) error {
	f, err := readFieldsFile(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(scoring.Score(f))
}

func runValidate(cmd *cobra.Command, args []string) error {
	f, err := readFieldsFile(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}
	errs := form.ValidateAll(f)
	out := cmd.OutOrStdout()
	if len(errs) == 0 {
		fmt.Fprintln(out, "ok: all steps valid")
		return nil
	}
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "%s: %s\n", k, errs[k])
	}
	return fmt.Errorf("%d invalid field(s), first failing step %d", len(errs), form.FirstInvalidStep(f))
}

// readFieldsFile decodes a mapping of field key to a string or list of
// strings. JSON input is accepted as YAML.
func readFieldsFile(stdin io.Reader, path string) (form.Fields, error) {
	var (
		blob []byte
		err  error
	)
	if path == "-" {
		blob, err = io.ReadAll(stdin)
	} else {
		blob, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read fields: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(blob, &raw); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	values := make(map[string][]string, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case nil:
		case []any:
			for _, item := range v {
				values[k] = append(values[k], fmt.Sprint(item))
			}
		default:
			values[k] = []string{fmt.Sprint(v)}
		}
	}
	return form.FromValues(values), nil
}
