package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robertgumeny/warden/internal/config"
	"github.com/robertgumeny/warden/internal/log"
	"github.com/robertgumeny/warden/internal/templates"
)

var initFlags struct {
	force bool
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a repository for warden",
	Long:  "Scaffold warden.yaml, the docs directories, and the default protocol documents.",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initFlags.force, "force", false, "Overwrite existing files")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	return initRepo(dir, initFlags.force)
}

// initRepo is the testable core of the init command. It copies the embedded
// init/ files into the target repository and creates the specs and decisions
// directories.
func initRepo(dir string, force bool) error {
	// Guard: refuse to re-initialize unless --force is set.
	if !force {
		if _, statErr := os.Stat(filepath.Join(dir, "warden.yaml")); statErr == nil {
			return fmt.Errorf("warden.yaml already exists — repository appears to be already initialized; use --force to overwrite")
		}
	}

	err := fs.WalkDir(templates.Init, "init", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}

		rel := strings.TrimPrefix(path, "init/")
		dst := filepath.Join(dir, filepath.FromSlash(rel))

		if !force {
			if _, statErr := os.Stat(dst); statErr == nil {
				log.Warning(fmt.Sprintf("%s already exists — skipping (use --force to overwrite)", dst))
				return nil
			}
		}

		if mkErr := os.MkdirAll(filepath.Dir(dst), 0o755); mkErr != nil {
			return fmt.Errorf("create directory for %s: %w", dst, mkErr)
		}

		data, readErr := templates.Init.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("read template %s: %w", path, readErr)
		}
		if writeErr := os.WriteFile(dst, data, 0o644); writeErr != nil {
			return fmt.Errorf("write %s: %w", dst, writeErr)
		}

		log.Success(fmt.Sprintf("created %s", dst))
		return nil
	})
	if err != nil {
		return err
	}

	for _, sub := range []string{config.DefaultSpecsDir, config.DefaultDecisionsDir} {
		if mkErr := os.MkdirAll(filepath.Join(dir, sub), 0o755); mkErr != nil {
			return fmt.Errorf("create %s: %w", sub, mkErr)
		}
	}

	log.Info("repository initialized — edit warden.yaml, add a spec, then run: warden run <spec>")
	return nil
}
