package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
)

func TestProjectStore_SaveGet(t *testing.T) {
	store := NewProjectStore()
	ctx := context.Background()

	project := domain.Project{
		ID:       "acme_erp",
		Name:     "Acme ERP",
		Issuer:   "Acme Corp",
		Contacts: []string{"pm@acme.test"},
		Status:   domain.ProjectStatusActive,
	}
	require.NoError(t, store.Save(ctx, project))

	got, err := store.Get(ctx, "acme_erp")
	require.NoError(t, err)
	assert.Equal(t, project, *got)
}

func TestProjectStore_SaveUpdates(t *testing.T) {
	store := NewProjectStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.Project{ID: "p", Name: "P", Status: domain.ProjectStatusActive}))
	require.NoError(t, store.Save(ctx, domain.Project{ID: "p", Name: "P", Status: domain.ProjectStatusArchived}))

	got, err := store.Get(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStatusArchived, got.Status)
}

func TestProjectStore_GetNotFound(t *testing.T) {
	_, err := NewProjectStore().Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectStore_ListSortedByName(t *testing.T) {
	store := NewProjectStore()
	ctx := context.Background()

	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		require.NoError(t, store.Save(ctx, domain.Project{ID: domain.ProjectID(name), Name: name}))
	}

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Alpha", list[0].Name)
	assert.Equal(t, "Mid", list[1].Name)
	assert.Equal(t, "Zeta", list[2].Name)
}

func TestProjectStore_Delete(t *testing.T) {
	store := NewProjectStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.Project{ID: "p", Name: "P"}))
	require.NoError(t, store.Delete(ctx, "p"))
	require.NoError(t, store.Delete(ctx, "p"), "deleting twice is a no-op")

	_, err := store.Get(ctx, "p")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
