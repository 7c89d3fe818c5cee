package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cleared-dev/ledger/internal/auditlog"
	"github.com/cleared-dev/ledger/internal/importer"
	"github.com/cleared-dev/ledger/internal/model"
)

func newImportCommand() *cobra.Command {
	var repoDir string
	var format string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import bank CSV exports from import/ as trusted history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, repoDir, format)
		},
	}

	addRepoFlag(cmd, &repoDir)
	cmd.Flags().StringVar(&format, "format", "chase", "bank export format")

	return cmd
}

func runImport(cmd *cobra.Command, repoDir, format string) error {
	parser := importer.DefaultRegistry().Get(format)
	if parser == nil {
		return fmt.Errorf("unknown import format %q", format)
	}

	ws, err := openWorkspace(repoDir, lockExclusive)
	if err != nil {
		return err
	}
	defer ws.close()

	files, err := importer.Scan(ws.root)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to import")
		return nil
	}

	var names []string
	total := 0
	for _, f := range files {
		bank, err := importer.ParseFile(parser, f.Path)
		if err != nil {
			return err
		}

		created, err := importer.Import(ws.store, bank)
		if err != nil {
			return fmt.Errorf("importing %s: %w", f.Name, err)
		}
		if err := ws.journal.Append(created); err != nil {
			return fmt.Errorf("saving %s: %w", f.Name, err)
		}
		ws.audit(importEntries(f.Name, created)...)

		if err := importer.MarkProcessed(ws.root, f.Name); err != nil {
			return err
		}

		ws.logger.Info("imported file",
			zap.String("file", f.Name),
			zap.Int("transactions", len(created)),
		)
		names = append(names, f.Name)
		total += len(created)
	}

	msg := fmt.Sprintf("import: %d transactions from %s", total, strings.Join(names, ", "))
	if _, err := ws.commit(msg); err != nil {
		return fmt.Errorf("committing: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d transactions from %d file(s)\n", total, len(names))
	return nil
}

func importEntries(fileName string, txns []model.Transaction) []auditlog.Entry {
	entries := make([]auditlog.Entry, len(txns))
	for i, t := range txns {
		entries[i] = auditlog.Entry{
			Timestamp:     t.CreatedAt,
			Action:        auditlog.ActionImport,
			TransactionID: t.ID,
			Type:          string(t.Type),
			Value:         t.Value.String(),
			Title:         t.Title,
			Details:       fileName,
		}
	}
	return entries
}
