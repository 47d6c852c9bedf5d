package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func (c *cli) apikeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage the completion API key used for suggestions",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <key>",
		Short: "Store the API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(args[0]) == "" {
				return errors.New("please enter a valid API key")
			}
			if err := c.app.Credentials().SetAPIKey(cmd.Context(), args[0]); err != nil {
				return err
			}
			c.invalidateSuggestions(cmd)
			fmt.Fprintln(cmd.OutOrStdout(), "API key saved successfully")
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the API key; suggestions use the built-in lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Credentials().ClearAPIKey(cmd.Context()); err != nil {
				return err
			}
			c.invalidateSuggestions(cmd)
			fmt.Fprintln(cmd.OutOrStdout(), "API key cleared")
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether an API key is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := c.app.Credentials().APIKey(cmd.Context())
			if err != nil {
				return err
			}
			status := "not configured"
			if key != "" {
				status = "configured"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "API key: %s\n", status)
			return nil
		},
	})
	return cmd
}

func (c *cli) invalidateSuggestions(cmd *cobra.Command) {
	sc := c.app.SuggestionCache()
	if sc == nil {
		return
	}
	if err := sc.InvalidateAll(cmd.Context()); err != nil {
		log.Printf("invalidate suggestion cache: %v", err)
	}
}

func (c *cli) exportCmd() *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the board as json, csv or pdf",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := c.app.Exporter().Export(format)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d tasks to %s\n", len(c.app.Board().Tasks()), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Export format: json, csv or pdf")
	cmd.Flags().StringVarP(&out, "out", "O", "", "Output file (default stdout)")
	return cmd
}
