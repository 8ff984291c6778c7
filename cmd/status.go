package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/robertgumeny/warden/internal/ledger"
	"github.com/robertgumeny/warden/internal/log"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the recorded run history",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	repoRoot, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	f, err := ledger.Load(ledger.Path(repoRoot))
	if err != nil {
		return fmt.Errorf("load run ledger: %w", err)
	}
	if len(f.Runs) == 0 {
		log.Info("no runs recorded")
		return nil
	}

	fmt.Println(ledger.Render(f))
	return nil
}
