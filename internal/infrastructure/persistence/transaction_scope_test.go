package persistence_test

import (
	"context"
	"errors"
	"testing"

	"github.com/practice/backend/internal/application/uow"
	"github.com/practice/backend/internal/domain/finance"
	"github.com/practice/backend/internal/infrastructure/persistence"
	"github.com/practice/backend/internal/infrastructure/persistence/models"
	"github.com/practice/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTransactionScope(t *testing.T) {
	newAccount := func(t *testing.T, f *testutil.Fixture, code string) *finance.LedgerAccount {
		a, err := finance.NewLedgerAccount(f.TenantID, code, "Account "+code, finance.AccountTypeAsset, decimal.Zero)
		require.NoError(t, err)
		return a
	}
	boom := errors.New("boom")

	t.Run("commits on success", func(t *testing.T) {
		f := testutil.NewFixture(t)
		scope := persistence.NewGormTransactionScope(f.DB)
		err := scope.Execute(context.Background(), func(ctx context.Context, repos uow.Repositories) error {
			return repos.LedgerAccounts().Save(ctx, newAccount(t, f, "1000"))
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), f.Count(&models.LedgerAccountModel{}, ""))
	})

	t.Run("rolls back on error", func(t *testing.T) {
		f := testutil.NewFixture(t)
		scope := persistence.NewGormTransactionScope(f.DB)
		err := scope.Execute(context.Background(), func(ctx context.Context, repos uow.Repositories) error {
			require.NoError(t, repos.LedgerAccounts().Save(ctx, newAccount(t, f, "1000")))
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Zero(t, f.Count(&models.LedgerAccountModel{}, ""))
	})

	t.Run("nested failure rolls back only the savepoint", func(t *testing.T) {
		f := testutil.NewFixture(t)
		scope := persistence.NewGormTransactionScope(f.DB)
		err := scope.Execute(context.Background(), func(ctx context.Context, repos uow.Repositories) error {
			if err := repos.LedgerAccounts().Save(ctx, newAccount(t, f, "1000")); err != nil {
				return err
			}
			nested := scope.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
				require.NoError(t, repos.LedgerAccounts().Save(ctx, newAccount(t, f, "2000")))
				return boom
			})
			assert.ErrorIs(t, nested, boom)
			return nil
		})
		require.NoError(t, err)

		var codes []string
		require.NoError(t, f.DB.Model(&models.LedgerAccountModel{}).Pluck("code", &codes).Error)
		assert.Equal(t, []string{"1000"}, codes)
	})

	t.Run("outer failure discards committed savepoints", func(t *testing.T) {
		f := testutil.NewFixture(t)
		scope := persistence.NewGormTransactionScope(f.DB)
		err := scope.Execute(context.Background(), func(ctx context.Context, _ uow.Repositories) error {
			require.NoError(t, scope.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
				return repos.LedgerAccounts().Save(ctx, newAccount(t, f, "2000"))
			}))
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Zero(t, f.Count(&models.LedgerAccountModel{}, ""))
	})

	t.Run("context carries the transaction", func(t *testing.T) {
		f := testutil.NewFixture(t)
		scope := persistence.NewGormTransactionScope(f.DB)
		assert.Same(t, f.DB, persistence.TxFromContext(context.Background(), f.DB))
		require.NoError(t, scope.Execute(context.Background(), func(ctx context.Context, _ uow.Repositories) error {
			assert.NotSame(t, f.DB, persistence.TxFromContext(ctx, f.DB))
			return nil
		}))
	})
}
