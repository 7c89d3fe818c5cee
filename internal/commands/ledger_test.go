package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledger/internal/auditlog"
	"github.com/cleared-dev/ledger/internal/journal"
	"github.com/cleared-dev/ledger/internal/model"
)

func loadJournal(t *testing.T, dir string) []model.Transaction {
	t.Helper()
	txns, err := journal.Open(dir, "ledger.csv").Load()
	require.NoError(t, err)
	return txns
}

func TestAdd_Scenario(t *testing.T) {
	dir := initLedger(t)

	out, err := runLedger(t, "add", "Salary", "1000", "--type", "income", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, `income 1000 "Salary"`)

	out, err = runLedger(t, "add", "Rent", "400", "--type", "outcome", "--repo", dir)
	require.NoError(t, err, out)

	out, err = runLedger(t, "add", "Car", "700", "--type", "outcome", "--repo", dir)
	require.Error(t, err)
	assert.Contains(t, out, "insufficient funds")

	txns := loadJournal(t, dir)
	require.Len(t, txns, 2)
	assert.Equal(t, "Salary", txns[0].Title)
	assert.Equal(t, "Rent", txns[1].Title)

	out, err = runLedger(t, "balance", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "income:  1000")
	assert.Contains(t, out, "outcome: 400")
	assert.Contains(t, out, "total:   600")
}

func TestAdd_BoundaryEquality(t *testing.T) {
	dir := initLedger(t)

	_, err := runLedger(t, "add", "Salary", "100", "-t", "income", "--repo", dir)
	require.NoError(t, err)
	out, err := runLedger(t, "add", "rent", "100", "-t", "outcome", "--repo", dir)
	require.NoError(t, err, out)

	out, err = runLedger(t, "balance", "--repo", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "total:   0")
}

func TestAdd_InvalidType(t *testing.T) {
	dir := initLedger(t)

	for _, typ := range []string{"transfer", "INCOME", "Income", " income ", "outcome\n"} {
		out, err := runLedger(t, "add", "Swap", "10", "--type", typ, "--repo", dir)
		require.Error(t, err, "type %q should be rejected", typ)
		assert.Contains(t, out, "invalid transaction type")
	}
	assert.Empty(t, loadJournal(t, dir))
}

func TestAdd_BadInput(t *testing.T) {
	dir := initLedger(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"negative", []string{"--type", "income", "--", "Refund", "-5"}, "value must be positive"},
		{"zero", []string{"Nothing", "0", "--type", "income"}, "value must be positive"},
		{"not a number", []string{"Salary", "lots", "--type", "income"}, "parsing value"},
		{"empty title", []string{"  ", "5", "--type", "income"}, "title must not be empty"},
		{"missing type", []string{"Salary", "5"}, `"type" not set`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"add", "--repo", dir}, tt.args...)
			out, err := runLedger(t, args...)
			require.Error(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
	assert.Empty(t, loadJournal(t, dir))
}

func TestAdd_NotALedger(t *testing.T) {
	out, err := runLedger(t, "add", "Salary", "5", "--type", "income", "--repo", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, out, "loading config")
}

func TestAdd_AuditLog(t *testing.T) {
	dir := initLedger(t)

	_, err := runLedger(t, "add", "Salary", "50", "--type", "income", "--repo", dir)
	require.NoError(t, err)
	_, err = runLedger(t, "add", "Car", "700", "--type", "outcome", "--repo", dir)
	require.Error(t, err)

	entries, err := auditlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, auditlog.ActionCreate, entries[0].Action)
	assert.NotEmpty(t, entries[0].TransactionID)
	assert.Equal(t, auditlog.ActionReject, entries[1].Action)
	assert.Equal(t, "Car", entries[1].Title)
	assert.Contains(t, entries[1].Details, "insufficient funds")
}

func TestList(t *testing.T) {
	dir := initLedger(t)
	for _, args := range [][]string{
		{"add", "Salary", "1000", "--type", "income"},
		{"add", "Rent", "400.25", "--type", "outcome"},
		{"add", "Bonus", "50", "--type", "income"},
	} {
		out, err := runLedger(t, append(args, "--repo", dir)...)
		require.NoError(t, err, out)
	}

	out, err := runLedger(t, "list", "--repo", dir)
	require.NoError(t, err, out)

	salary := strings.Index(out, "Salary")
	rent := strings.Index(out, "Rent")
	bonus := strings.Index(out, "Bonus")
	require.True(t, salary >= 0 && rent >= 0 && bonus >= 0, out)
	assert.Less(t, salary, rent, "insertion order")
	assert.Less(t, rent, bonus, "insertion order")
	assert.Contains(t, out, "400.25")
	assert.Contains(t, out, "total:   649.75")
}

func TestList_Empty(t *testing.T) {
	dir := initLedger(t)

	out, err := runLedger(t, "list", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "total:   0")
}

func copyChaseExport(t *testing.T, dir string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "chase_checking.csv"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "chase_checking.csv"), data, 0o644))
}

func TestImport(t *testing.T) {
	dir := initLedger(t)
	copyChaseExport(t, dir)

	out, err := runLedger(t, "import", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Imported 6 transactions from 1 file(s)")

	txns := loadJournal(t, dir)
	require.Len(t, txns, 6)
	assert.Equal(t, model.TypeOutcome, txns[0].Type, "imported outcomes skip the overdraft check")

	_, err = os.Stat(filepath.Join(dir, "import", "processed", "chase_checking.csv"))
	require.NoError(t, err, "file should move to processed/")

	out, err = runLedger(t, "balance", "--repo", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "total:   3404.13")

	// A second run finds nothing.
	out, err = runLedger(t, "import", "--repo", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to import")

	entries, err := auditlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 6)
	assert.Equal(t, auditlog.ActionImport, entries[0].Action)
	assert.Equal(t, "chase_checking.csv", entries[0].Details)
}

func TestImport_RejectsInvalidRow(t *testing.T) {
	dir := initLedger(t)
	export := "Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #\n" +
		"CREDIT,01/10/2025,ACME,3500.00,ACH_CREDIT,9431.33,\n" +
		"DEBIT,01/11/2025,,-5.00,ACH_DEBIT,9426.33,\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "bad.csv"), []byte(export), 0o644))

	out, err := runLedger(t, "import", "--repo", dir)
	require.Error(t, err)
	assert.Contains(t, out, "empty description")
	assert.Empty(t, loadJournal(t, dir))

	_, err = os.Stat(filepath.Join(dir, "import", "bad.csv"))
	assert.NoError(t, err, "rejected file stays in import/")
}

func TestImport_UnknownFormat(t *testing.T) {
	dir := initLedger(t)
	out, err := runLedger(t, "import", "--format", "monzo", "--repo", dir)
	require.Error(t, err)
	assert.Contains(t, out, "unknown import format")
}

func TestAdd_GitCommit(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	_, err := runLedger(t, "init", dir, "--name", "Household")
	require.NoError(t, err)

	out, err := runLedger(t, "add", "Salary", "1000", "--type", "income", "--repo", dir)
	require.NoError(t, err, out)

	log := exec.Command("git", "log", "--format=%s", "-2")
	log.Dir = dir
	logOut, err := log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(logOut), "txn: income 1000 Salary")
	assert.Contains(t, string(logOut), "init:")

	// The lock file is ignored, so the commit leaves a clean tree.
	status := exec.Command("git", "status", "--porcelain")
	status.Dir = dir
	statusOut, err := status.Output()
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(string(statusOut)))

	// Rejections leave the journal untouched; only the audit log changes.
	_, err = runLedger(t, "add", "Car", "5000", "--type", "outcome", "--repo", dir)
	require.Error(t, err)
	log = exec.Command("git", "log", "--format=%s", "-1")
	log.Dir = dir
	logOut, err = log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(logOut), "txn: income 1000 Salary")
}

func TestVersion(t *testing.T) {
	out, err := runLedger(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "dev (commit: none")
}
