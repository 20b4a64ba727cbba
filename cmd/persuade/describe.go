package main

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"persuader/pkg/schema"
)

// newDescribeSchemaCmd prints the JSON Schema of the schema *definition
// format* itself (schema.Schema is a fixed Go type, reflected via
// invopop/jsonschema), so someone authoring a --schema file for `run` has
// something to validate their file against. This is the invopop/jsonschema
// use case pkg/schema/jsonschema.go's doc comment points at: a fixed Go
// type as the schema source, as opposed to Schema.ToJSONSchema()'s
// reflection-free rendering of a dynamically-built Schema value.
func newDescribeSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe-schema-format",
		Short: "Print the JSON Schema of the --schema file format",
		RunE: func(cmd *cobra.Command, args []string) error {
			reflector := jsonschema.Reflector{DoNotReference: true}
			doc := reflector.Reflect(&schema.Schema{})
			out, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal schema-format doc: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
