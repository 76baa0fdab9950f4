package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhalkiad/compass/internal/database"
	"github.com/mhalkiad/compass/internal/domain"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := database.New(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())
	return NewService(NewRepository(db.DB, zerolog.Nop()), zerolog.Nop())
}

func record(t *testing.T, s *Service, amount float64, category string, typ domain.TransactionType, date time.Time) domain.Transaction {
	t.Helper()
	tx, err := s.Record(context.Background(), domain.Transaction{
		Amount:   amount,
		Category: category,
		Type:     typ,
		Date:     date,
	})
	require.NoError(t, err)
	return tx
}

func TestRecordAssignsIDAndPersists(t *testing.T) {
	s := newTestService(t)

	tx := record(t, s, 50, "Groceries", domain.TransactionExpense, time.Now())
	assert.NotEmpty(t, tx.ID)
	assert.False(t, tx.CreatedAt.IsZero())

	loaded, err := s.repo.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, tx.ID, loaded[0].ID)
}

func TestRecordRejectsInvalid(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.Record(ctx, domain.Transaction{Amount: 0, Category: "x", Type: domain.TransactionExpense})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "amount", verr.Field)

	_, err = s.Record(ctx, domain.Transaction{Amount: -5, Category: "x", Type: domain.TransactionExpense})
	assert.ErrorAs(t, err, &verr)

	_, err = s.Record(ctx, domain.Transaction{Amount: 5, Category: "x", Type: "transfer"})
	assert.ErrorAs(t, err, &verr)

	_, err = s.Record(ctx, domain.Transaction{Amount: 5, Category: "  ", Type: domain.TransactionIncome})
	assert.ErrorAs(t, err, &verr)

	assert.Empty(t, s.All())
}

func TestUpdateUnknownIDReturnsNotFound(t *testing.T) {
	s := newTestService(t)

	_, err := s.Update(context.Background(), "missing", domain.Transaction{
		Amount: 10, Category: "x", Type: domain.TransactionExpense,
	})
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "transaction", nf.Entity)
}

func TestDeleteUnknownIDReturnsNotFound(t *testing.T) {
	s := newTestService(t)

	err := s.Delete(context.Background(), "missing")
	var nf *domain.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestCategorySpendingIsCaseInsensitive(t *testing.T) {
	s := newTestService(t)
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	period := domain.Period{Month: "March", Year: 2026}

	record(t, s, 40, "Groceries", domain.TransactionExpense, now)
	record(t, s, 25, "groceries", domain.TransactionExpense, now)
	record(t, s, 15, "GROCERIES", domain.TransactionExpense, now)
	// income and other periods do not count
	record(t, s, 100, "Groceries", domain.TransactionIncome, now)
	record(t, s, 99, "Groceries", domain.TransactionExpense, now.AddDate(0, 1, 0))

	assert.Equal(t, 80.0, s.CategorySpending("gRoCeRiEs", period))
}

func TestPeriodSummaryAndSavings(t *testing.T) {
	s := newTestService(t)
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	period := domain.Period{Month: "March", Year: 2026}

	record(t, s, 3000, "Salary", domain.TransactionIncome, now)
	record(t, s, 1200, "Rent", domain.TransactionExpense, now)
	record(t, s, 300, "Groceries", domain.TransactionExpense, now)

	income, expenses := s.PeriodSummary(period)
	assert.Equal(t, 3000.0, income)
	assert.Equal(t, 1500.0, expenses)
	assert.Equal(t, 1500.0, s.MonthlySavings(period))
}

func TestMonthlySavingsCanBeNegative(t *testing.T) {
	s := newTestService(t)
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	period := domain.Period{Month: "March", Year: 2026}

	record(t, s, 100, "Salary", domain.TransactionIncome, now)
	record(t, s, 250, "Rent", domain.TransactionExpense, now)

	assert.Equal(t, -150.0, s.MonthlySavings(period))
}

func TestAllSortsNewestFirst(t *testing.T) {
	s := newTestService(t)
	old := record(t, s, 10, "a", domain.TransactionExpense, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	recent := record(t, s, 10, "b", domain.TransactionExpense, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))

	all := s.All()
	require.Len(t, all, 2)
	assert.Equal(t, recent.ID, all[0].ID)
	assert.Equal(t, old.ID, all[1].ID)
}

func TestLoadRestoresState(t *testing.T) {
	db, err := database.New(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())
	repo := NewRepository(db.DB, zerolog.Nop())

	s1 := NewService(repo, zerolog.Nop())
	record(t, s1, 42, "Groceries", domain.TransactionExpense, time.Now())

	s2 := NewService(repo, zerolog.Nop())
	s2.Load(context.Background())
	assert.Len(t, s2.All(), 1)
}
