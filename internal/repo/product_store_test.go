package repo

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/go-product-api/internal/domain"
)

func product(id, name string) domain.Product {
	return domain.Product{ID: id, Name: name, Description: "d", Price: 1, Category: "c", InStock: true}
}

func TestProductStore_InsertFindList(t *testing.T) {
	s := NewProductStore()
	s.Insert(product("a", "Alpha"))
	s.Insert(product("b", "Beta"))

	got, ok := s.FindByID("b")
	require.True(t, ok)
	assert.Equal(t, "Beta", got.Name)

	_, ok = s.FindByID("zzz")
	assert.False(t, ok)

	i, ok := s.FindIndexByID("b")
	require.True(t, ok)
	assert.Equal(t, 1, i)

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
	assert.Equal(t, 2, s.Len())
}

func TestProductStore_ListIsSnapshot(t *testing.T) {
	s := NewProductStore()
	s.Insert(product("a", "Alpha"))

	list := s.List()
	list[0].Name = "Mutated"
	s.Insert(product("b", "Beta"))

	got, _ := s.FindByID("a")
	assert.Equal(t, "Alpha", got.Name)
	assert.Len(t, list, 1)
}

func TestProductStore_ExistsByName_CaseInsensitiveWithExclusion(t *testing.T) {
	s := NewProductStore()
	s.Insert(product("a", "Laptop Pro X"))

	assert.True(t, s.ExistsByName("laptop pro x", ""))
	assert.True(t, s.ExistsByName("LAPTOP PRO X", "other"))
	assert.False(t, s.ExistsByName("Laptop Pro X", "a"), "self is excluded")
	assert.False(t, s.ExistsByName("Laptop", ""))
}

func TestProductStore_ReplaceAt_UpdatesNameIndex(t *testing.T) {
	s := NewProductStore()
	s.Insert(product("a", "Alpha"))
	s.Insert(product("b", "Beta"))

	require.NoError(t, s.ReplaceAt(0, product("a", "Gamma")))

	assert.False(t, s.ExistsByName("alpha", ""))
	assert.True(t, s.ExistsByName("gamma", ""))
	got, _ := s.FindByID("a")
	assert.Equal(t, "Gamma", got.Name)

	// Re-save with different case of own name keeps the index entry.
	require.NoError(t, s.ReplaceAt(0, product("a", "GAMMA")))
	assert.True(t, s.ExistsByName("gamma", ""))
}

func TestProductStore_ReplaceAt_RejectsBadSlot(t *testing.T) {
	s := NewProductStore()
	s.Insert(product("a", "Alpha"))

	assert.Error(t, s.ReplaceAt(5, product("a", "Alpha")))
	assert.Error(t, s.ReplaceAt(-1, product("a", "Alpha")))
	assert.Error(t, s.ReplaceAt(0, product("b", "Alpha")))
}

func TestProductStore_RemoveByID_ReindexesAndIsNotIdempotent(t *testing.T) {
	s := NewProductStore()
	s.Insert(product("a", "Alpha"))
	s.Insert(product("b", "Beta"))
	s.Insert(product("c", "Gamma"))

	assert.True(t, s.RemoveByID("a"))
	assert.False(t, s.RemoveByID("a"))
	assert.False(t, s.ExistsByName("alpha", ""))

	i, ok := s.FindIndexByID("c")
	require.True(t, ok)
	assert.Equal(t, 1, i)
	got, ok := s.FindByID("c")
	require.True(t, ok)
	assert.Equal(t, "Gamma", got.Name)

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, []string{"b", "c"}, []string{list[0].ID, list[1].ID})
}

func TestNewSeededProductStore(t *testing.T) {
	s := NewSeededProductStore(SeedProducts)
	list := s.List()
	require.Len(t, list, 5)

	ids := map[string]struct{}{}
	for _, p := range list {
		assert.NotEmpty(t, p.ID)
		ids[p.ID] = struct{}{}
	}
	assert.Len(t, ids, 5)
	assert.Equal(t, "Laptop Pro X", list[0].Name)
	assert.True(t, s.ExistsByName("smartwatch sport", ""))
}

func TestProductStore_ConcurrentInserts(t *testing.T) {
	s := NewProductStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Insert(product(fmt.Sprintf("id-%d", i), fmt.Sprintf("name-%d", i)))
			_ = s.List()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, s.Len())
}

func TestFold(t *testing.T) {
	assert.Equal(t, "home & office", Fold("Home & Office"))
}
