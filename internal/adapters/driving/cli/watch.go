package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/connectors/inbox"
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch an inbox directory for new manuals",
	Long: `Processes every PDF already in the directory, then keeps watching
and processes new PDFs as they appear. Stops on interrupt.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if pipelineFactory == nil {
		return errors.New("pipeline not configured")
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	pipeline, closer, err := pipelineFactory()
	if err != nil {
		return fmt.Errorf("initialise pipeline: %w", err)
	}
	defer func() { _ = closer() }()

	watcher := inbox.NewWatcher(dir, pipeline)
	watcher.OnResult = func(path string, err error) {
		if err != nil {
			cmd.PrintErrf("FAILED %s: %v\n", filepath.Base(path), err)
			return
		}
		cmd.Printf("OK %s\n", filepath.Base(path))
	}

	cmd.Printf("Watching %s for manuals (Ctrl-C to stop)\n", dir)
	if err := watcher.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
