// SPDX-License-Identifier: MIT

package bundle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/incidentmap/internal/cache"
	"github.com/ManuGH/incidentmap/internal/ingest"
)

type remoteFixture struct {
	srv   *httptest.Server
	hits  atomic.Int32
	files map[string][]byte
}

func newRemoteFixture(t *testing.T, files map[string][]byte) *remoteFixture {
	t.Helper()
	f := &remoteFixture{files: files}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		data, ok := f.files[strings.TrimPrefix(r.URL.Path, "/Veri/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func seal(t *testing.T, d Decrypter, plain string) []byte {
	t.Helper()
	out, err := d.Seal([]byte(plain))
	require.NoError(t, err)
	return out
}

func TestRemoteSource_FetchKeepsListOrder(t *testing.T) {
	d := Decrypter{Password: "gizli"}
	fx := newRemoteFixture(t, map[string][]byte{
		"countries.geo.json":     []byte(`{"type":"FeatureCollection","features":[]}`),
		"ulke_detaylari.csv.enc": seal(t, d, "ulke\nFransa\n"),
		"özet21.xlsx.enc":        seal(t, d, "not really a workbook"),
	})

	src, err := NewRemoteSource(RemoteOptions{
		BaseURL:     fx.srv.URL + "/Veri",
		Files:       []string{"özet21.xlsx.enc", "countries.geo.json", "ulke_detaylari.csv.enc"},
		Decrypter:   d,
		Concurrency: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "remote:"+fx.srv.URL+"/Veri/", src.Describe())

	b, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, b.Files, 3)

	assert.Equal(t, ingest.KindIncidents, b.Files[0].Source.Kind)
	assert.True(t, b.Files[0].Encrypted)
	assert.Equal(t, "not really a workbook", string(b.Files[0].Data))
	assert.Equal(t, ingest.KindGeoJSON, b.Files[1].Source.Kind)
	assert.False(t, b.Files[1].Encrypted)
	assert.Equal(t, "ulke\nFransa\n", string(b.Files[2].Data))
}

func TestRemoteSource_WrongPasswordIsTerminal(t *testing.T) {
	fx := newRemoteFixture(t, map[string][]byte{
		"ulkeler.xlsx.enc": seal(t, Decrypter{Password: "gizli"}, strings.Repeat("x", 64)),
	})

	src, err := NewRemoteSource(RemoteOptions{
		BaseURL:   fx.srv.URL + "/Veri/",
		Files:     []string{"ulkeler.xlsx.enc"},
		Decrypter: Decrypter{Password: "yanlis"},
	})
	require.NoError(t, err)

	b, err := src.Fetch(context.Background())
	if err == nil {
		// Padding accidentally valid: the payload is garbage, not the plaintext.
		require.Len(t, b.Files, 1)
		assert.NotEqual(t, strings.Repeat("x", 64), string(b.Files[0].Data))
		return
	}
	assert.ErrorIs(t, err, ErrBundleLocked)
}

func TestRemoteSource_MissingEncryptedFileIsTerminal(t *testing.T) {
	fx := newRemoteFixture(t, map[string][]byte{})

	src, err := NewRemoteSource(RemoteOptions{
		BaseURL:   fx.srv.URL + "/Veri/",
		Files:     []string{"veriler_2021.xlsx.enc"},
		Decrypter: Decrypter{Password: "gizli"},
	})
	require.NoError(t, err)

	_, err = src.Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBundleLocked)
	assert.ErrorIs(t, err, ErrHTTPStatus)
}

func TestRemoteSource_MissingGeoJSONIsWarning(t *testing.T) {
	d := Decrypter{Password: "gizli"}
	fx := newRemoteFixture(t, map[string][]byte{
		"ulkeler.xlsx.enc": seal(t, d, "payload"),
	})

	src, err := NewRemoteSource(RemoteOptions{
		BaseURL:   fx.srv.URL + "/Veri/",
		Files:     []string{"countries.geo.json", "ulkeler.xlsx.enc", "readme.md"},
		Decrypter: d,
	})
	require.NoError(t, err)

	b, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, b.Files, 1)
	assert.Equal(t, ingest.KindMetadata, b.Files[0].Source.Kind)
	assert.Len(t, b.Warnings, 2)
}

func TestRemoteSource_UsesCache(t *testing.T) {
	d := Decrypter{Password: "gizli"}
	fx := newRemoteFixture(t, map[string][]byte{
		"ulkeler.xlsx.enc": seal(t, d, "payload"),
	})
	c := cache.NewMemoryCache(0)
	t.Cleanup(func() { _ = c.Close() })

	src, err := NewRemoteSource(RemoteOptions{
		BaseURL:   fx.srv.URL + "/Veri/",
		Files:     []string{"ulkeler.xlsx.enc"},
		Decrypter: d,
		Cache:     c,
	})
	require.NoError(t, err)

	for range 3 {
		b, err := src.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "payload", string(b.Files[0].Data))
	}
	assert.Equal(t, int32(1), fx.hits.Load())
	assert.Equal(t, int64(2), c.Stats(context.Background()).Hits)
}

func TestNewRemoteSource_RejectsBadURL(t *testing.T) {
	_, err := NewRemoteSource(RemoteOptions{BaseURL: "not a url"})
	assert.Error(t, err)
}
