// SPDX-License-Identifier: MIT

package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/incidentmap/internal/store"
)

func TestResolveFallsBackToEnglishName(t *testing.T) {
	st := store.New()
	st.Upsert("France", nil)
	snap := st.Freeze()

	rec, ok := Resolve("France", store.Translations{}, snap)
	require.True(t, ok)
	assert.Equal(t, "france", rec.Key)

	rec, ok = Resolve("Germany", store.Translations{}, snap)
	assert.False(t, ok)
	assert.Nil(t, rec)
}

func TestResolveThroughDictionary(t *testing.T) {
	st := store.New()
	st.Upsert("Almanya", nil)
	st.SetTranslation("Germany", "Almanya")
	snap := st.Freeze()

	rec, ok := Resolve(" GERMANY ", snap.Translations(), snap)
	require.True(t, ok)
	assert.Equal(t, "Almanya", rec.DisplayName)
	assert.Equal(t, "almanya", Key("Germany", snap.Translations()))
}

func TestResolveMissingRecordForTranslation(t *testing.T) {
	st := store.New()
	st.SetTranslation("Spain", "İspanya")
	snap := st.Freeze()

	_, ok := Resolve("Spain", snap.Translations(), snap)
	assert.False(t, ok)
	_, ok = Resolve("", snap.Translations(), snap)
	assert.False(t, ok)
}

func TestResolverFind(t *testing.T) {
	st := store.New()
	st.Upsert("Almanya", nil)
	st.SetTranslation("Germany", "Almanya")
	r := New(st.Freeze())

	for _, name := range []string{"Germany", "almanya", "ALMANYA "} {
		rec, ok := r.Find(name)
		require.True(t, ok, name)
		assert.Equal(t, "almanya", rec.Key)
	}
	_, ok := r.Find("Narnia")
	assert.False(t, ok)
}

func TestResolveWorksOnLiveStore(t *testing.T) {
	st := store.New()
	st.Upsert("Fransa", nil)
	st.SetTranslation("France", "Fransa")

	rec, ok := Resolve("France", st.Translations(), st)
	require.True(t, ok)
	assert.Equal(t, "fransa", rec.Key)
}
