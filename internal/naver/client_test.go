package naver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(
		Credentials{ID: "dev-id", Secret: "dev-secret"},
		Credentials{ID: "cloud-id", Secret: "cloud-secret"},
		WithBaseURLs(srv.URL, srv.URL+"/cloud"),
	)
}

func TestSearchPlacesUsesDeveloperCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search/local.json", r.URL.Path)
		assert.Equal(t, "dev-id", r.Header.Get("X-Naver-Client-Id"))
		assert.Equal(t, "dev-secret", r.Header.Get("X-Naver-Client-Secret"))
		assert.Empty(t, r.Header.Get("X-NCP-APIGW-API-KEY-ID"))
		assert.Equal(t, "국밥", r.URL.Query().Get("query"))
		assert.Equal(t, "5", r.URL.Query().Get("display"))
		w.Write([]byte(`{"items":[{"title":"<b>국밥</b>집","roadAddress":"대구광역시 수성구 1"}]}`))
	})

	places, err := c.SearchPlaces(context.Background(), "국밥", 5)
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "<b>국밥</b>집", places[0].Title)
	assert.Equal(t, "대구광역시 수성구 1", places[0].RoadAddress)
}

func TestGetImages(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search/image.json", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("display"))
		w.Write([]byte(`{"items":[{"link":"https://a"},{"link":"http://b"}]}`))
	})

	images, err := c.GetImages(context.Background(), "국밥", 2)
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, "https://a", images[0].Link)
}

func TestGeocodeDistanceUsesCloudCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cloud/map-geocode/v2/geocode", r.URL.Path)
		assert.Equal(t, "cloud-id", r.Header.Get("X-NCP-APIGW-API-KEY-ID"))
		assert.Equal(t, "cloud-secret", r.Header.Get("X-NCP-APIGW-API-KEY"))
		assert.Equal(t, LionsParkCoordinate, r.URL.Query().Get("coordinate"))
		w.Write([]byte(`{"status":"OK","addresses":[{"x":"128.6","y":"35.8","distance":1234.5}]}`))
	})

	g, err := c.GeocodeDistance(context.Background(), "대구광역시 수성구 1")
	require.NoError(t, err)
	assert.Equal(t, "128.6", g.X)
	assert.Equal(t, "35.8", g.Y)
	assert.Equal(t, 1234.5, g.Distance)
}

func TestGeocodeDistanceNoAddress(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","addresses":[]}`))
	})

	_, err := c.GeocodeDistance(context.Background(), "nowhere")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

func TestErrorCodesAreMapped(t *testing.T) {
	cases := []struct {
		body string
		want *Error
	}{
		{`{"errorCode":"SE01","errorMessage":"x"}`, ErrIncorrectQuery},
		{`{"errorCode":"SE02"}`, ErrInvalidDisplay},
		{`{"errorCode":"SE03"}`, ErrInvalidStart},
		{`{"errorCode":"SE04"}`, ErrInvalidSort},
		{`{"errorCode":"SE05"}`, ErrInvalidSearchAPI},
		{`{"errorCode":"SE06"}`, ErrMalformedEncoding},
		{`{"errorCode":"SE99"}`, ErrSystemError},
		{`{"errorCode":"024"}`, ErrAuthentication},
		{`{"errorMessage":"INVALID_REQUEST"}`, ErrInvalidParameter},
		{`{"error":{"errorCode":"SYSTEM_ERROR","message":"boom"}}`, ErrSystemError},
		{`{"errorCode":"ZZ"}`, ErrUnknown},
		{`not json`, ErrUnknown},
	}

	for _, tc := range cases {
		body := tc.body
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(body))
		})
		_, err := c.SearchPlaces(context.Background(), "q", 5)
		require.Error(t, err, body)
		assert.True(t, errors.Is(err, tc.want), "body %s gave %v", body, err)
	}
}

func TestFromCodeKeepsUpstreamCode(t *testing.T) {
	e := FromCode("SE01")
	assert.Equal(t, "SE01", e.Code)
	assert.Equal(t, KindIncorrectQuery, KindOf(e))

	// the shared table entry is never mutated
	assert.Empty(t, ErrIncorrectQuery.Code)
}

func TestTransportFailureIsBaseKind(t *testing.T) {
	c := NewClient(Credentials{}, Credentials{}, WithBaseURLs("http://127.0.0.1:1", "http://127.0.0.1:1"))
	_, err := c.SearchPlaces(context.Background(), "q", 5)
	require.Error(t, err)
	assert.Equal(t, KindNaver, KindOf(err))
}
