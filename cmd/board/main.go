// Command board manages the task board from the terminal. It can share a
// store with a running API server: every change is an atomic update of the
// stored board, so neither process overwrites the other.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Weskio/ai-task-whisperer/internal/app"
	"github.com/Weskio/ai-task-whisperer/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	root, c := newRootCmd()
	if err := c.execute(root); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli holds the state shared by all subcommands.
type cli struct {
	backend   string
	storePath string
	app       *app.App
}

func newRootCmd() (*cobra.Command, *cli) {
	c := &cli{}
	root := &cobra.Command{
		Use:           "board",
		Short:         "Kanban task board with suggested next steps",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.open()
		},
	}
	root.PersistentFlags().StringVar(&c.backend, "store", "", "Store backend: memory, file, redis or postgres (default $STORE_BACKEND or file)")
	root.PersistentFlags().StringVar(&c.storePath, "store-path", "", "Board file for the file backend (default $STORE_PATH)")

	root.AddCommand(c.listCmd())
	root.AddCommand(c.showCmd())
	root.AddCommand(c.addCmd())
	root.AddCommand(c.moveCmd())
	root.AddCommand(c.editCmd())
	root.AddCommand(c.rmCmd())
	root.AddCommand(c.suggestCmd())
	root.AddCommand(c.subtaskCmd())
	root.AddCommand(c.apikeyCmd())
	root.AddCommand(c.exportCmd())
	return root, c
}

// execute runs root and then closes the app. cobra skips post-run hooks when
// a command fails, so closing happens here.
func (c *cli) execute(root *cobra.Command) error {
	err := root.Execute()
	if cerr := c.close(); err == nil {
		err = cerr
	}
	return err
}

func (c *cli) open() error {
	gin.SetMode(gin.ReleaseMode)
	cfg, err := config.Load(func(cfg *config.Config) {
		if c.backend != "" {
			cfg.Store.Backend = c.backend
		}
		if c.storePath != "" {
			cfg.Store.Path = c.storePath
		}
	})
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("open board: %w", err)
	}
	c.app = a
	return nil
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close(context.Background())
	c.app = nil
	return err
}
