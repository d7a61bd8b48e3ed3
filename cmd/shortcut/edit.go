package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/shortcut/internal/catalog"
	"github.com/verte-zerg/shortcut/internal/integrity"
	"github.com/verte-zerg/shortcut/internal/model"
)

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <app> <shortcut> <description> <category>",
		Short: "Add a shortcut to an app's shortcut file",
		Args:  cobra.ExactArgs(4),
		RunE:  runAddCmd,
	}
}

func runAddCmd(cmd *cobra.Command, args []string) error {
	app := args[0]
	if err := catalog.ValidateApp(app); err != nil {
		return err
	}
	rc, err := openRepo()
	if err != nil {
		return err
	}
	cat, err := rc.loadCatalog()
	if err != nil {
		return err
	}
	if cat.Broken(app) {
		return fmt.Errorf("shortcut file for %s does not parse; fix it before adding", app)
	}

	s := model.Shortcut{
		App:         app,
		Notation:    catalog.Normalize(args[1]),
		Description: args[2],
		Category:    args[3],
	}
	if integrity.Exists(cat, app, s.Notation) {
		logErrf("%s already exists in %s\n", s.Notation, app)
		return fmt.Errorf("%w: %s", errDuplicate, s.Key())
	}
	path, ok := cat.Path(app)
	if !ok {
		path = catalog.FilePath(rc.root, app)
	}
	if err := catalog.Append(path, s); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if s.Notation != args[1] {
		if _, err := fmt.Fprintf(out, "Normalized: %s\n", s.Notation); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if _, err := fmt.Fprintf(out, "Added %s to %s\n", s.Notation, filepath.Base(path)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename an app and move its learning progress",
		Args:  cobra.ExactArgs(2),
		RunE:  runRenameCmd,
	}
}

func runRenameCmd(cmd *cobra.Command, args []string) error {
	oldName, newName := args[0], args[1]
	if err := catalog.ValidateApp(newName); err != nil {
		return err
	}
	if oldName == newName {
		return fmt.Errorf("%s is already named %s", oldName, newName)
	}
	rc, err := openRepo()
	if err != nil {
		return err
	}
	cat, err := rc.loadCatalog()
	if err != nil {
		return err
	}
	oldPath, ok := cat.Path(oldName)
	if !ok {
		return fmt.Errorf("no shortcut file for %s", oldName)
	}
	if _, ok := cat.Path(newName); ok {
		return fmt.Errorf("a shortcut file for %s already exists", newName)
	}
	newPath := filepath.Join(filepath.Dir(oldPath), newName+catalog.FileSuffix)
	if _, err := os.Stat(newPath); err == nil {
		return fmt.Errorf("%s already exists", newPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", newPath, err)
	}

	st, closeStore, err := rc.openStore()
	if err != nil {
		return err
	}
	defer closeStore()
	ctx := cmd.Context()
	progress, err := st.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}
	renamed, moved := integrity.RenameApp(progress, oldName, newName)

	if err := os.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("failed to rename %s: %w", oldPath, err)
	}
	if moved > 0 {
		if err := st.Save(ctx, renamed); err != nil {
			if rerr := os.Rename(newPath, oldPath); rerr != nil {
				logErrf("failed to restore %s: %v\n", oldPath, rerr)
			}
			return fmt.Errorf("failed to save progress: %w", err)
		}
	}

	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s → %s (%d progress entries moved)\n", oldName, newName, moved); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
