package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStore(rdb, time.Hour, "test:"), mr
}

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	id, err := s.Create(ctx)
	require.NoError(t, err)
	assert.Len(t, id, 32)
	assert.True(t, mr.Exists("test:session:"+id))

	ok, err := s.Exists(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete(ctx, id))
	ok, err = s.Exists(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	id, err := s.Create(ctx)
	require.NoError(t, err)
	mr.FastForward(2 * time.Hour)

	ok, err := s.Exists(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRequireSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s, _ := newTestStore(t)
	id, err := s.Create(context.Background())
	require.NoError(t, err)

	r := gin.New()
	r.GET("/private", RequireSession(s), func(c *gin.Context) { c.Status(http.StatusOK) })

	cases := map[string]struct {
		cookie string
		want   int
	}{
		"no cookie":     {"", http.StatusUnauthorized},
		"unknown":       {"deadbeef", http.StatusUnauthorized},
		"valid session": {id, http.StatusOK},
	}
	for name, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		if tc.cookie != "" {
			req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tc.cookie})
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.want, w.Code, name)
	}
}
