package requestid_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subtrack/pkg/requestid"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("generates id when header missing", func(t *testing.T) {
		t.Parallel()
		var got string
		h := requestid.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = requestid.FromContext(r.Context())
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.NotEmpty(t, got)
		_, err := uuid.Parse(got)
		assert.NoError(t, err)
		assert.Equal(t, got, rec.Header().Get(requestid.Header))
	})

	t.Run("reuses valid inbound id", func(t *testing.T) {
		t.Parallel()
		var got string
		h := requestid.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = requestid.FromContext(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestid.Header, "client-id-42")
		h.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "client-id-42", got)
	})

	t.Run("replaces malformed inbound id", func(t *testing.T) {
		t.Parallel()
		var got string
		h := requestid.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = requestid.FromContext(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestid.Header, "bad id\nwith newline")
		h.ServeHTTP(httptest.NewRecorder(), req)

		require.NotEmpty(t, got)
		assert.NotEqual(t, "bad id\nwith newline", got)
	})
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	assert.Empty(t, requestid.FromContext(t.Context()))

	ctx := requestid.WithContext(t.Context(), "abc")
	assert.Equal(t, "abc", requestid.FromContext(ctx))

	attr, ok := requestid.LogExtractor(ctx)
	require.True(t, ok)
	assert.Equal(t, "request_id", attr.Key)
}
