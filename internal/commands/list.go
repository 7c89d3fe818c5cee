package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledger/internal/ledger"
	"github.com/cleared-dev/ledger/internal/model"
)

func newListCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions in the order they were recorded, then the balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(repoDir, lockShared)
			if err != nil {
				return err
			}
			defer ws.close()

			svc := ledger.NewService(ws.store, ws.logger)
			out := cmd.OutOrStdout()
			if err := writeTransactions(out, svc.List()); err != nil {
				return err
			}
			fmt.Fprintln(out)
			return writeBalance(out, svc.Balance())
		},
	}

	addRepoFlag(cmd, &repoDir)
	return cmd
}

func newBalanceCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show income, outcome and total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(repoDir, lockShared)
			if err != nil {
				return err
			}
			defer ws.close()

			return writeBalance(cmd.OutOrStdout(), ws.store.GetBalance())
		},
	}

	addRepoFlag(cmd, &repoDir)
	return cmd
}

func writeTransactions(w io.Writer, txns []model.Transaction) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tTYPE\tVALUE\tTITLE")
	for _, t := range txns {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.CreatedAt.Format(time.RFC3339), t.Type, t.Value, t.Title)
	}
	return tw.Flush()
}

func writeBalance(w io.Writer, b model.Balance) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "income:\t%s\n", b.Income)
	fmt.Fprintf(tw, "outcome:\t%s\n", b.Outcome)
	fmt.Fprintf(tw, "total:\t%s\n", b.Total)
	return tw.Flush()
}
