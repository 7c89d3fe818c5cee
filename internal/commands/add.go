package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledger/internal/auditlog"
	"github.com/cleared-dev/ledger/internal/id"
	"github.com/cleared-dev/ledger/internal/ledger"
	"github.com/cleared-dev/ledger/internal/model"
)

func newAddCommand() *cobra.Command {
	var repoDir string
	var typ string

	cmd := &cobra.Command{
		Use:   "add <title> <value>",
		Short: "Record an income or outcome transaction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := parseCreateRequest(args[0], args[1], typ)
			if err != nil {
				return err
			}
			return runAdd(cmd, repoDir, req)
		},
	}

	addRepoFlag(cmd, &repoDir)
	cmd.Flags().StringVarP(&typ, "type", "t", "", "transaction type: income or outcome (required)")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

// parseCreateRequest turns command-line input into a CreateRequest. The
// type is passed through verbatim; the ledger service decides whether it
// is one of the known types.
func parseCreateRequest(title, value, typ string) (ledger.CreateRequest, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return ledger.CreateRequest{}, fmt.Errorf("title must not be empty")
	}

	v, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return ledger.CreateRequest{}, fmt.Errorf("parsing value %q: %w", value, err)
	}
	if !v.IsPositive() {
		return ledger.CreateRequest{}, fmt.Errorf("value must be positive, got %s", v)
	}

	return ledger.CreateRequest{Title: title, Value: v, Type: model.TransactionType(typ)}, nil
}

func runAdd(cmd *cobra.Command, repoDir string, req ledger.CreateRequest) error {
	ws, err := openWorkspace(repoDir, lockExclusive)
	if err != nil {
		return err
	}
	defer ws.close()

	svc := ledger.NewService(ws.store, ws.logger)
	txn, err := svc.Execute(req)
	if err != nil {
		ws.audit(auditlog.Entry{
			Timestamp: time.Now(),
			Action:    auditlog.ActionReject,
			Type:      string(req.Type),
			Value:     req.Value.String(),
			Title:     req.Title,
			Details:   err.Error(),
		})
		return err
	}

	if err := ws.journal.Append([]model.Transaction{txn}); err != nil {
		return fmt.Errorf("saving transaction: %w", err)
	}

	ws.audit(auditlog.Entry{
		Timestamp:     txn.CreatedAt,
		Action:        auditlog.ActionCreate,
		TransactionID: txn.ID,
		Type:          string(txn.Type),
		Value:         txn.Value.String(),
		Title:         txn.Title,
	})

	msg := fmt.Sprintf("txn: %s %s %s", txn.Type, txn.Value, txn.Title)
	if _, err := ws.commit(msg); err != nil {
		return fmt.Errorf("committing: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s: %s %s %q\n", id.Short(txn.ID), txn.Type, txn.Value, txn.Title)
	return nil
}
