package naver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DeveloperPlatformURL = "https://openapi.naver.com/"
	CloudPlatformURL     = "https://naveropenapi.apigw.ntruss.com/"

	localSearchEndpoint = "v1/search/local.json"
	imageSearchEndpoint = "v1/search/image.json"
	geocodeEndpoint     = "map-geocode/v2/geocode"

	// LionsParkCoordinate is the landmark geocode distances are measured from.
	LionsParkCoordinate = "128.6812364,35.8411290"
)

// Credentials is one client id and secret pair.
type Credentials struct {
	ID     string
	Secret string
}

// Client talks to the Naver developer platform (local and image search) and
// the Naver cloud platform (geocoding).
type Client struct {
	DeveloperURL string
	CloudURL     string
	Developer    Credentials
	Cloud        Credentials
	httpClient   *http.Client
}

type ClientOption func(*Client)

// WithBaseURLs points the client at other hosts, e.g. a test server.
func WithBaseURLs(developer, cloud string) ClientOption {
	return func(c *Client) {
		c.DeveloperURL = withSlash(developer)
		c.CloudURL = withSlash(cloud)
	}
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient creates a Naver client.
func NewClient(developer, cloud Credentials, opts ...ClientOption) *Client {
	c := &Client{
		DeveloperURL: DeveloperPlatformURL,
		CloudURL:     CloudPlatformURL,
		Developer:    developer,
		Cloud:        cloud,
		httpClient:   &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func withSlash(u string) string {
	if !strings.HasSuffix(u, "/") {
		return u + "/"
	}
	return u
}

// Place is a local search hit.
type Place struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Category    string `json:"category"`
	Address     string `json:"address"`
	RoadAddress string `json:"roadAddress"`
	MapX        string `json:"mapx"`
	MapY        string `json:"mapy"`
}

// Image is an image search hit.
type Image struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Thumbnail string `json:"thumbnail"`
}

// Geocode is the first address the geocoder resolved. Distance is in metres
// from LionsParkCoordinate.
type Geocode struct {
	X        string
	Y        string
	Distance float64
}

type placesResponse struct {
	Items []Place `json:"items"`
}

type imagesResponse struct {
	Items []Image `json:"items"`
}

type geocodeResponse struct {
	Status    string `json:"status"`
	Addresses []struct {
		RoadAddress string  `json:"roadAddress"`
		X           string  `json:"x"`
		Y           string  `json:"y"`
		Distance    float64 `json:"distance"`
	} `json:"addresses"`
}

type errorResponse struct {
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
	Error        struct {
		ErrorCode string `json:"errorCode"`
		Message   string `json:"message"`
	} `json:"error"`
}

// SearchPlaces runs a local search for name.
func (c *Client) SearchPlaces(ctx context.Context, name string, display int) ([]Place, error) {
	params := url.Values{}
	params.Set("query", name)
	params.Set("display", strconv.Itoa(display))

	var out placesResponse
	if err := c.get(ctx, c.DeveloperURL+localSearchEndpoint, params, c.developerHeaders(), &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// GetImages runs an image search for name.
func (c *Client) GetImages(ctx context.Context, name string, display int) ([]Image, error) {
	params := url.Values{}
	params.Set("query", name)
	params.Set("display", strconv.Itoa(display))

	var out imagesResponse
	if err := c.get(ctx, c.DeveloperURL+imageSearchEndpoint, params, c.developerHeaders(), &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// GeocodeDistance resolves address and measures it against the landmark.
// An address the geocoder cannot resolve is ErrInvalidParameter.
func (c *Client) GeocodeDistance(ctx context.Context, address string) (*Geocode, error) {
	params := url.Values{}
	params.Set("query", address)
	params.Set("coordinate", LionsParkCoordinate)

	var out geocodeResponse
	if err := c.get(ctx, c.CloudURL+geocodeEndpoint, params, c.cloudHeaders(), &out); err != nil {
		return nil, err
	}
	if len(out.Addresses) == 0 {
		e := FromCode("INVALID_REQUEST")
		e.Message = "주소를 찾을 수 없습니다."
		return nil, e
	}
	first := out.Addresses[0]
	return &Geocode{X: first.X, Y: first.Y, Distance: first.Distance}, nil
}

func (c *Client) developerHeaders() http.Header {
	h := http.Header{}
	h.Set("X-Naver-Client-Id", c.Developer.ID)
	h.Set("X-Naver-Client-Secret", c.Developer.Secret)
	return h
}

func (c *Client) cloudHeaders() http.Header {
	h := http.Header{}
	h.Set("X-NCP-APIGW-API-KEY-ID", c.Cloud.ID)
	h.Set("X-NCP-APIGW-API-KEY", c.Cloud.Secret)
	return h
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, headers http.Header, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return wrap(err, "request creation failed")
	}
	req.Header = headers
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return wrap(err, "network error")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return wrap(err, "read error")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return wrap(err, "JSON decode error")
	}
	return nil
}

// decodeError maps an error body to its typed error. Search APIs send
// errorCode/errorMessage at the top level, the API gateway nests them.
func decodeError(body []byte) error {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err != nil {
		return FromCode("")
	}
	switch {
	case er.ErrorCode != "":
		return FromCode(er.ErrorCode)
	case er.Error.ErrorCode != "":
		return FromCode(er.Error.ErrorCode)
	case er.ErrorMessage != "":
		return FromCode(er.ErrorMessage)
	default:
		return FromCode(er.Error.Message)
	}
}
