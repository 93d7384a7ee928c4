package activation

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesalabs/mesa/internal/apiserver/database"
	"github.com/mesalabs/mesa/internal/common/cnst"
	"github.com/mesalabs/mesa/internal/common/config"
	"github.com/mesalabs/mesa/internal/ids"
	"github.com/mesalabs/mesa/internal/module"
)

const (
	tenantA = ids.TenantID("tenant-a")
	hello   = ids.ModuleID("hello-module")
)

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	registry := module.NewMemoryRegistry()
	require.NoError(t, registry.Register(context.Background(), module.Definition{
		ID:          hello,
		Slug:        "hello",
		Name:        "Hello",
		Version:     "1.0.0",
		Permissions: []module.Permission{{ID: "hello.read"}},
	}))
	return NewService(registry, repo)
}

func repositoriesUnderTest(t *testing.T) map[string]Repository {
	db, err := database.Open(&config.DatabaseConfig{
		Type:   "sqlite",
		DBName: filepath.Join(t.TempDir(), "mesa.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	return map[string]Repository{
		"memory": NewMemoryRepository(),
		"db":     NewDBRepository(db),
	}
}

func TestService_Enable_RequiresRegisteredModule(t *testing.T) {
	for name, repo := range repositoriesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			svc := newTestService(t, repo)
			err := svc.Enable(context.Background(), tenantA, "reports-module")
			assert.ErrorIs(t, err, cnst.ErrModuleNotRegistered)
		})
	}
}

func TestService_EnableDisableRoundTrip(t *testing.T) {
	for name, repo := range repositoriesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			svc := newTestService(t, repo)
			ctx := context.Background()

			enabled, err := svc.IsEnabled(ctx, tenantA, hello)
			require.NoError(t, err)
			assert.False(t, enabled)

			require.NoError(t, svc.Enable(ctx, tenantA, hello))

			enabled, err = svc.IsEnabled(ctx, tenantA, hello)
			require.NoError(t, err)
			assert.True(t, enabled)

			require.NoError(t, svc.Disable(ctx, tenantA, hello))

			enabled, err = svc.IsEnabled(ctx, tenantA, hello)
			require.NoError(t, err)
			assert.False(t, enabled)

			list, err := svc.ListEnabled(ctx, tenantA)
			require.NoError(t, err)
			assert.NotContains(t, list, hello)

			// record is retained, soft-deleted
			rec, err := repo.Find(ctx, tenantA, hello)
			require.NoError(t, err)
			require.NotNil(t, rec)
			assert.Equal(t, StatusInactive, rec.Status)
			require.NotNil(t, rec.DeactivatedAt)
		})
	}
}

func TestService_Enable_Idempotent(t *testing.T) {
	for name, repo := range repositoriesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			svc := newTestService(t, repo)
			ctx := context.Background()

			require.NoError(t, svc.Enable(ctx, tenantA, hello))
			require.NoError(t, svc.Enable(ctx, tenantA, hello))

			enabled, err := svc.IsEnabled(ctx, tenantA, hello)
			require.NoError(t, err)
			assert.True(t, enabled)

			details, err := svc.ListEnabledWithDetails(ctx, tenantA)
			require.NoError(t, err)
			require.Len(t, details, 1)
			assert.Equal(t, hello, details[0].ModuleID)
		})
	}
}

func TestService_ReEnable_RefreshesTimestamps(t *testing.T) {
	for name, repo := range repositoriesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			svc := newTestService(t, repo)
			ctx := context.Background()

			require.NoError(t, svc.Enable(ctx, tenantA, hello))
			first, err := repo.Find(ctx, tenantA, hello)
			require.NoError(t, err)
			require.NotNil(t, first)

			require.NoError(t, svc.Disable(ctx, tenantA, hello))
			time.Sleep(5 * time.Millisecond)
			require.NoError(t, svc.Enable(ctx, tenantA, hello))

			second, err := repo.Find(ctx, tenantA, hello)
			require.NoError(t, err)
			require.NotNil(t, second)
			assert.Equal(t, StatusActive, second.Status)
			assert.Nil(t, second.DeactivatedAt)
			assert.False(t, second.ActivatedAt.Before(first.ActivatedAt))

			details, err := svc.ListEnabledWithDetails(ctx, tenantA)
			require.NoError(t, err)
			assert.Len(t, details, 1, "re-enable must reuse the record, not create a second one")
		})
	}
}

func TestService_Disable_UnknownModule_NoOp(t *testing.T) {
	for name, repo := range repositoriesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			svc := newTestService(t, repo)
			ctx := context.Background()

			// unknown module reference and missing record both degrade
			// to no-ops so stale UIs don't blow up
			assert.NoError(t, svc.Disable(ctx, tenantA, "stale-module"))
			assert.NoError(t, svc.Disable(ctx, tenantA, hello))
		})
	}
}

func TestService_SlugLookupsResolveToCanonical(t *testing.T) {
	for name, repo := range repositoriesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			svc := newTestService(t, repo)
			ctx := context.Background()

			require.NoError(t, svc.Enable(ctx, tenantA, hello))

			enabled, err := svc.IsEnabled(ctx, tenantA, "hello")
			require.NoError(t, err)
			assert.True(t, enabled)

			require.NoError(t, svc.Disable(ctx, tenantA, "hello"))
			enabled, err = svc.IsEnabled(ctx, tenantA, hello)
			require.NoError(t, err)
			assert.False(t, enabled)
		})
	}
}

func TestService_TenantsAreIsolated(t *testing.T) {
	for name, repo := range repositoriesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			svc := newTestService(t, repo)
			ctx := context.Background()

			require.NoError(t, svc.Enable(ctx, tenantA, hello))

			enabled, err := svc.IsEnabled(ctx, "tenant-b", hello)
			require.NoError(t, err)
			assert.False(t, enabled)

			list, err := svc.ListEnabled(ctx, "tenant-b")
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}
