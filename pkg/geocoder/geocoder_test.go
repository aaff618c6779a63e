package geocoder_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obralabs/sentinela/pkg/geocoder"
)

func TestNew_RequiresToken(t *testing.T) {
	t.Parallel()

	_, err := geocoder.New(geocoder.Config{})
	assert.ErrorIs(t, err, geocoder.ErrMissingToken)
}

func TestClient_Geocode(t *testing.T) {
	t.Parallel()

	t.Run("resolves lng lat ordering", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Contains(t, r.URL.RawQuery, "access_token=tok")
			w.Write([]byte(`{"features":[{"center":[-46.65,-23.56]}]}`))
		}))
		defer srv.Close()

		c, err := geocoder.New(geocoder.Config{AccessToken: "tok"}, geocoder.WithBaseURL(srv.URL))
		require.NoError(t, err)

		coords, err := c.Geocode(context.Background(), "Av. Paulista 1000, São Paulo")
		require.NoError(t, err)
		assert.InDelta(t, -23.56, coords.Lat, 0.001)
		assert.InDelta(t, -46.65, coords.Lng, 0.001)
	})

	t.Run("no features means no result", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"features":[]}`))
		}))
		defer srv.Close()

		c, err := geocoder.New(geocoder.Config{AccessToken: "tok"}, geocoder.WithBaseURL(srv.URL))
		require.NoError(t, err)

		_, err = c.Geocode(context.Background(), "nowhere at all")
		assert.ErrorIs(t, err, geocoder.ErrNoResult)
	})

	t.Run("empty address short-circuits", func(t *testing.T) {
		t.Parallel()

		c, err := geocoder.New(geocoder.Config{AccessToken: "tok"})
		require.NoError(t, err)

		_, err = c.Geocode(context.Background(), "")
		assert.ErrorIs(t, err, geocoder.ErrNoResult)
	})

	t.Run("upstream error surfaces as request failure", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		c, err := geocoder.New(geocoder.Config{AccessToken: "tok"}, geocoder.WithBaseURL(srv.URL))
		require.NoError(t, err)

		_, err = c.Geocode(context.Background(), "Av. Paulista 1000")
		assert.ErrorIs(t, err, geocoder.ErrRequestFailed)
	})
}
