package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/robertgumeny/warden/internal/config"
	"github.com/robertgumeny/warden/internal/decision"
	"github.com/robertgumeny/warden/internal/log"
)

var decisionCmd = &cobra.Command{
	Use:   "decision <spec>",
	Short: "Show the current decision for a spec",
	Long:  "Locate the most recent decision document for a spec and print its structured summary.",
	Args:  cobra.ExactArgs(1),
	RunE:  runDecision,
}

func runDecision(cmd *cobra.Command, args []string) error {
	repoRoot, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	cfg, err := config.Load(filepath.Join(repoRoot, "warden.yaml"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store := decision.NewStore(filepath.Join(repoRoot, cfg.DecisionsDir))
	content, found, err := store.Read(args[0])
	if err != nil {
		return fmt.Errorf("read decision: %w", err)
	}
	if !found {
		return fmt.Errorf("no decision exists for %s", args[0])
	}

	summary := decision.Parse(content)
	if summary.IsEmpty() {
		// The document deviates from the template entirely; show it raw.
		fmt.Print(content)
		return nil
	}

	log.Section("DECISION")
	fmt.Println(summary.Decision)

	printList := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		log.Section(title)
		for _, item := range items {
			fmt.Println("- " + item)
		}
	}
	printList("WHY", summary.Why)
	printList("CHECKLIST", summary.Checklist)
	printList("TESTS", summary.Tests)

	if len(summary.Risks) > 0 {
		log.Section("RISKS")
		t := table.NewWriter()
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Risk", "Level", "Mitigation"})
		for _, r := range summary.Risks {
			t.AppendRow(table.Row{r.Description, r.Level, r.Mitigation})
		}
		fmt.Println(t.Render())
	}

	return nil
}
