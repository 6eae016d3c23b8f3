package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/reservation/internal/model"
)

const roomID = "0b9f9db2-0d5c-47a8-8a3e-6a5a8a2f4f10"

func catalogServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if r.URL.Path != "/api/v1/resources/"+roomID {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(model.Resource{ID: roomID, Name: "Study Room 101"})
	}))
}

func TestGetCachesInRedis(t *testing.T) {
	var hits int32
	srv := catalogServer(t, &hits)
	defer srv.Close()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := New(srv.URL, rdb, zerolog.Nop())

	res, err := c.Get(context.Background(), roomID, "tok")
	require.NoError(t, err)
	assert.Equal(t, "Study Room 101", res.Name)

	// second lookup is served from the cache
	res, err = c.Get(context.Background(), roomID, "tok")
	require.NoError(t, err)
	assert.Equal(t, "Study Room 101", res.Name)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	c.Invalidate(context.Background(), roomID)
	_, err = c.Get(context.Background(), roomID, "tok")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestGetMissingResource(t *testing.T) {
	var hits int32
	srv := catalogServer(t, &hits)
	defer srv.Close()

	c := New(srv.URL, nil, zerolog.Nop())
	_, err := c.Get(context.Background(), "5c4db1ae-8c1f-4b2e-b1a1-000000000000", "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.ResourceName(context.Background(), "5c4db1ae-8c1f-4b2e-b1a1-000000000000", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResourceNameDegradesWhenCatalogDown(t *testing.T) {
	c := New("http://127.0.0.1:1", nil, zerolog.Nop())
	name, err := c.ResourceName(context.Background(), roomID, "")
	require.NoError(t, err)
	assert.Equal(t, UnknownResourceName, name)
}
