package restaurants

import (
	"context"
	"errors"
	"strconv"
	"strings"

	restaurant "github.com/mnuddindev/winoreat/internal/models/restaurant"
	"github.com/mnuddindev/winoreat/internal/naver"
	"github.com/mnuddindev/winoreat/pkg/logger"
	storage "github.com/mnuddindev/winoreat/pkg/redis"
	"github.com/mnuddindev/winoreat/pkg/utils"
	"gorm.io/gorm"
)

const (
	DaeguPrefix     = "대구광역시"
	GyeongsanPrefix = "경상북도 경산시"

	MetersPerKM = 1000

	searchDisplay = 5
	imageDisplay  = 2
)

// Distance units accepted for the stored far_from_lions_park value.
const (
	UnitMeters     = "m"
	UnitKilometers = "km"
)

// Provider is the subset of the Naver client the service needs.
type Provider interface {
	SearchPlaces(ctx context.Context, name string, display int) ([]naver.Place, error)
	GetImages(ctx context.Context, name string, display int) ([]naver.Image, error)
	GeocodeDistance(ctx context.Context, address string) (*naver.Geocode, error)
}

// SearchResult is a restaurant candidate shown to the user before suggesting it.
type SearchResult struct {
	Name        string `json:"name"`
	RoadAddress string `json:"road_address"`
}

// CreateInput is one suggestion.
type CreateInput struct {
	Name     string
	Address  string
	Category string
	IP       string
	Review   string
}

// CreateResult carries how many times the restaurant has been suggested.
type CreateResult struct {
	Count int `json:"count"`
}

type Service struct {
	DB           *gorm.DB
	Provider     Provider
	Validator    *Validator
	Locker       storage.Locker
	Logger       *logger.Logger
	DistanceUnit string
}

type ServiceOption func(*Service)

func WithLocker(l storage.Locker) ServiceOption {
	return func(s *Service) { s.Locker = l }
}

func WithLogger(l *logger.Logger) ServiceOption {
	return func(s *Service) { s.Logger = l }
}

func WithDistanceUnit(unit string) ServiceOption {
	return func(s *Service) { s.DistanceUnit = unit }
}

func WithValidator(v *Validator) ServiceOption {
	return func(s *Service) { s.Validator = v }
}

func NewService(db *gorm.DB, provider Provider, opts ...ServiceOption) *Service {
	s := &Service{
		DB:           db,
		Provider:     provider,
		Validator:    NewValidator(db),
		Locker:       storage.NopLocker{},
		DistanceUnit: UnitMeters,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SearchRestaurants looks name up on Naver and keeps the hits located in
// Daegu or Gyeongsan.
func (s *Service) SearchRestaurants(ctx context.Context, name string) ([]SearchResult, error) {
	places, err := s.Provider.SearchPlaces(ctx, name, searchDisplay)
	if err != nil {
		s.Logger.Warn(ctx).WithMeta(utils.Map{"name": name, "error": err.Error()}).Logs("Restaurant search failed")
		return nil, TranslateSearchError(err)
	}

	results := make([]SearchResult, 0, len(places))
	for _, p := range FilterRegion(places) {
		title := utils.StripHTML(p.Title)
		results = append(results, SearchResult{
			Name:        title,
			RoadAddress: CleanRoadAddress(title, p.RoadAddress),
		})
	}

	if len(results) == 0 {
		return nil, utils.NewError(utils.KindNotFound, "해당하는 식당이 없습니다.")
	}
	return results, nil
}

// FilterRegion keeps the places whose road address is in Daegu or Gyeongsan.
func FilterRegion(places []naver.Place) []naver.Place {
	out := make([]naver.Place, 0, len(places))
	for _, p := range places {
		if strings.HasPrefix(p.RoadAddress, DaeguPrefix) || strings.HasPrefix(p.RoadAddress, GyeongsanPrefix) {
			out = append(out, p)
		}
	}
	return out
}

// CleanRoadAddress drops a trailing copy of the restaurant name from the road address.
func CleanRoadAddress(name, roadAddress string) string {
	if name != "" && strings.HasSuffix(roadAddress, name) {
		return strings.TrimSpace(strings.TrimSuffix(roadAddress, name))
	}
	return roadAddress
}

// CreateRestaurant records one suggestion. The first suggestion of a
// (name, address) pair creates the restaurant, later ones bump its count.
// Storage, review, submitter address and images commit or roll back together.
func (s *Service) CreateRestaurant(ctx context.Context, in CreateInput) (*CreateResult, error) {
	if err := s.Validator.ValidateDuplicateRestaurant(ctx, in.Name, in.Address, in.IP); err != nil {
		return nil, err
	}
	if err := s.Validator.ValidateCategory(in.Category); err != nil {
		return nil, err
	}

	geo, err := s.Provider.GeocodeDistance(ctx, in.Address)
	if err != nil {
		s.Logger.Warn(ctx).WithMeta(utils.Map{"address": in.Address, "error": err.Error()}).Logs("Geocoding failed")
		return nil, TranslateGeocodeError(err)
	}

	km := geo.Distance / MetersPerKM
	if err := s.Validator.ValidateDistance(km); err != nil {
		return nil, err
	}

	longitude, err := strconv.ParseFloat(geo.X, 64)
	if err != nil {
		return nil, utils.WrapError(err, utils.KindInternal, "Invalid longitude from geocoder")
	}
	latitude, err := strconv.ParseFloat(geo.Y, 64)
	if err != nil {
		return nil, utils.WrapError(err, utils.KindInternal, "Invalid latitude from geocoder")
	}

	stored := geo.Distance
	if s.DistanceUnit == UnitKilometers {
		stored = km
	}

	release, err := s.Locker.Lock(ctx, "restaurant:"+restaurant.IdentityKey(in.Name, in.Address, in.Name))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.Logger.Warn(ctx).WithMeta(utils.Map{"error": err.Error()}).Logs("Failed to release submission lock")
		}
	}()

	var count int
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := restaurant.GetRestaurantByIdentity(ctx, tx, in.Name, in.Address, in.Name)
		switch {
		case err == nil:
			if err := restaurant.IncrementSuggestedCount(ctx, tx, r); err != nil {
				return err
			}
		case errors.Is(err, utils.ErrNotFound):
			r, err = restaurant.NewRestaurant(ctx, tx, in.Name, in.Address,
				restaurant.WithDetailAddress(in.Name),
				restaurant.WithCategory(restaurant.Category(in.Category)),
				restaurant.WithCoordinates(longitude, latitude),
				restaurant.WithFarFromLionsPark(stored),
			)
			if err != nil {
				return err
			}
		default:
			return err
		}

		if in.Review != "" {
			if _, err := restaurant.AddReview(ctx, tx, r.ID, in.Review); err != nil {
				return err
			}
		}

		if _, err := restaurant.AddIPAddress(ctx, tx, r.ID, in.IP); err != nil {
			return err
		}

		links, err := s.imageLinks(ctx, in.Name)
		if err != nil {
			return err
		}
		if _, err := restaurant.AddImages(ctx, tx, r.ID, links); err != nil {
			return err
		}

		count = r.SuggestedCount
		return nil
	})
	if err != nil {
		s.Logger.Error(ctx).WithMeta(utils.Map{"name": in.Name, "error": err.Error()}).Logs("Failed to store restaurant suggestion")
		return nil, err
	}

	s.Logger.Info(ctx).WithMeta(utils.Map{"name": in.Name, "count": strconv.Itoa(count)}).Logs("Restaurant suggested")
	return &CreateResult{Count: count}, nil
}

// imageLinks fetches images for name and keeps the https ones.
func (s *Service) imageLinks(ctx context.Context, name string) ([]string, error) {
	images, err := s.Provider.GetImages(ctx, name, imageDisplay)
	if err != nil {
		return nil, TranslateSearchError(err)
	}
	return HTTPSLinks(images), nil
}

// HTTPSLinks returns the image links served over https, in order.
func HTTPSLinks(images []naver.Image) []string {
	links := make([]string, 0, len(images))
	for _, img := range images {
		if strings.HasPrefix(img.Link, "https://") {
			links = append(links, img.Link)
		}
	}
	return links
}
