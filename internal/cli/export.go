package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/asteroid-belt/recall/internal/config"
	"github.com/asteroid-belt/recall/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the whole store to a JSON snapshot",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace store contents from a JSON snapshot",
	Long: `Replace store contents from a JSON snapshot.

Every collection is cleared first, then records are bulk-inserted. The
replacement is not transactional across collections: if the import fails
midway the store is partially restored and should be re-imported from a
fresh snapshot.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	r, cfg, closer, err := openRepo()
	if err != nil {
		return err
	}
	defer closer()

	path := config.GetPaths(cfg).Export
	if len(args) == 1 {
		path = args[0]
	}

	data, err := r.Store().ExportAll(ctx)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	fmt.Printf("Exported %d collections to %s\n", len(data), path)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	r, cfg, closer, err := openRepo()
	if err != nil {
		return err
	}
	defer closer()

	path := config.GetPaths(cfg).Export
	if len(args) == 1 {
		path = args[0]
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	var data map[string][]store.Record
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	if err := r.Store().ImportAll(ctx, data); err != nil {
		return fmt.Errorf("import failed, store may be partially restored; re-import from a fresh snapshot: %w", err)
	}
	fmt.Printf("Imported %d collections from %s\n", len(data), path)
	return nil
}
