// Package cmd implements the minerva command line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "minerva",
	Short: "Minerva - university assistant backend",
	Long: `Minerva is a retrieval-augmented backend for answering student
questions from university policy documents.

It ingests PDF and text documents, splits them into chunks, embeds them
into a PostgreSQL/pgvector index, and answers queries through a local
Ollama model grounded on the retrieved context.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
