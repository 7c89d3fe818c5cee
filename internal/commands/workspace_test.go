package commands

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledger/internal/journal"
	"github.com/cleared-dev/ledger/internal/ledger"
	"github.com/cleared-dev/ledger/internal/model"
)

func quietCommand() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd
}

// newFundedLedger initializes a ledger without git holding one 100 income.
func newFundedLedger(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, runInit(quietCommand(), dir, "Household", "USD", true))
	require.NoError(t, runAdd(quietCommand(), dir, ledger.CreateRequest{
		Title: "Salary", Value: decimal.NewFromInt(100), Type: model.TypeIncome,
	}))
	return dir
}

func persistedBalance(t *testing.T, dir string) model.Balance {
	t.Helper()
	txns, err := journal.Open(dir, "ledger.csv").Load()
	require.NoError(t, err)
	return ledger.ComputeBalance(txns)
}

func TestOpenWorkspace_ExclusiveBlocksSecondWriter(t *testing.T) {
	dir := newFundedLedger(t)
	rent := ledger.CreateRequest{Title: "Rent", Value: decimal.NewFromInt(100), Type: model.TypeOutcome}

	first, err := openWorkspace(dir, lockExclusive)
	require.NoError(t, err)

	type opened struct {
		ws  *workspace
		err error
	}
	second := make(chan opened, 1)
	go func() {
		ws, err := openWorkspace(dir, lockExclusive)
		second <- opened{ws, err}
	}()

	select {
	case <-second:
		t.Fatal("second writer opened the ledger while the first held it")
	case <-time.After(200 * time.Millisecond):
	}

	txn, err := ledger.NewService(first.store, nil).Execute(rent)
	require.NoError(t, err)
	require.NoError(t, first.journal.Append([]model.Transaction{txn}))
	first.close()

	res := <-second
	require.NoError(t, res.err)
	defer res.ws.close()

	// The second writer sees the first one's outcome and is refused.
	_, err = ledger.NewService(res.ws.store, nil).Execute(rent)
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)
	assert.True(t, persistedBalance(t, dir).Total.IsZero())
}

func TestOpenWorkspace_SharedReaders(t *testing.T) {
	dir := newFundedLedger(t)

	a, err := openWorkspace(dir, lockShared)
	require.NoError(t, err)
	defer a.close()

	b, err := openWorkspace(dir, lockShared)
	require.NoError(t, err)
	defer b.close()

	assert.Equal(t, a.store.All(), b.store.All())
}

func TestOpenWorkspace_LockTimeout(t *testing.T) {
	dir := newFundedLedger(t)

	old := lockTimeout
	lockTimeout = 50 * time.Millisecond
	t.Cleanup(func() { lockTimeout = old })

	held, err := openWorkspace(dir, lockExclusive)
	require.NoError(t, err)
	defer held.close()

	_, err = openWorkspace(dir, lockShared)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locking ledger")
}

func TestRunAdd_ConcurrentOutcomesNeverOverdraw(t *testing.T) {
	dir := newFundedLedger(t)

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = runAdd(quietCommand(), dir, ledger.CreateRequest{
				Title: "Rent", Value: decimal.NewFromInt(100), Type: model.TypeOutcome,
			})
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
			continue
		}
		assert.True(t, errors.Is(err, ledger.ErrInsufficientFunds), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, accepted)

	b := persistedBalance(t, dir)
	assert.True(t, b.Total.IsZero(), "persisted total: %s", b.Total)
	assert.True(t, b.Outcome.Equal(decimal.NewFromInt(100)))
}
