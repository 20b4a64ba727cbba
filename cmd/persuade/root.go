package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "persuade",
		Short: "Coerce LLM output into schema-validated data via a self-correcting retry loop",
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newDescribeSchemaCmd())
	return root
}
