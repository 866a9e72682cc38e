package models

import (
	"context"
	"time"

	"github.com/mnuddindev/winoreat/pkg/utils"
	"gorm.io/gorm"
)

// ImagesPerRestaurant is how many of the latest images a listing carries.
const ImagesPerRestaurant = 2

// ListFilter narrows the ranked listing. Zero values mean no filter.
type ListFilter struct {
	Category Category
	MaxRange *float64
}

// RankedRestaurant is one row of the ranked listing.
type RankedRestaurant struct {
	ID               uint      `json:"id"`
	Created          time.Time `json:"created"`
	Modified         time.Time `json:"modified"`
	Name             string    `json:"name"`
	Address          string    `json:"address"`
	DetailAddress    string    `json:"detail_address"`
	FullAddress      string    `json:"full_address"`
	Longitude        float64   `json:"longitude"`
	Latitude         float64   `json:"latitude"`
	FarFromLionsPark float64   `json:"far_from_lions_park"`
	Category         Category  `json:"category"`
	CategoryLabel    string    `json:"category_label"`
	PlayersPick      *string   `json:"players_pick"`
	SuggestedCount   int       `json:"suggested_count"`
	AddressCount     int64     `json:"address_count"`
	ReviewCount      int64     `json:"review_count"`
	HasPlayerPick    bool      `json:"has_player_pick"`
	ReviewPosts      []string  `json:"review_posts"`
	ImageURLs        []string  `json:"image_urls"`
}

type rankedRow struct {
	ID               uint
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Name             string
	Address          string
	DetailAddress    string
	Longitude        float64
	Latitude         float64
	FarFromLionsPark float64
	Category         Category
	PlayersPick      *string
	SuggestedCount   int
	AddressCount     int64
	ReviewCount      int64
	HasPlayerPick    int
}

const rankedSelect = `restaurants.*,
	(SELECT COUNT(*) FROM restaurants same
		WHERE same.address = restaurants.address AND same.detail_address = restaurants.detail_address) AS address_count,
	(SELECT COUNT(*) FROM reviews WHERE reviews.restaurant_id = restaurants.id) AS review_count,
	CASE WHEN restaurants.players_pick IS NOT NULL AND restaurants.players_pick <> '' THEN 1 ELSE 0 END AS has_player_pick`

// ListRanked returns the restaurants ordered for display: player picks first,
// then nearest to the ballpark, then most restaurants sharing the address,
// then most reviews. ID breaks the remaining ties.
func ListRanked(ctx context.Context, gormDB *gorm.DB, filter ListFilter) ([]RankedRestaurant, error) {
	q := gormDB.WithContext(ctx).Model(&Restaurant{}).Select(rankedSelect)
	if filter.Category != "" {
		if !filter.Category.Valid() {
			return nil, utils.NewError(utils.KindBadRequest, "Select a valid choice for category", string(filter.Category))
		}
		q = q.Where("restaurants.category = ?", filter.Category)
	}
	if filter.MaxRange != nil {
		q = q.Where("restaurants.far_from_lions_park <= ?", *filter.MaxRange)
	}

	var rows []rankedRow
	err := q.Order("has_player_pick DESC").
		Order("restaurants.far_from_lions_park ASC").
		Order("address_count DESC").
		Order("review_count DESC").
		Order("restaurants.id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, utils.WrapError(err, utils.KindInternal, "Failed to list restaurants")
	}
	if len(rows) == 0 {
		return []RankedRestaurant{}, nil
	}

	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	posts, err := reviewPostsByRestaurant(ctx, gormDB, ids)
	if err != nil {
		return nil, err
	}
	images, err := latestImagesByRestaurant(ctx, gormDB, ids)
	if err != nil {
		return nil, err
	}

	out := make([]RankedRestaurant, 0, len(rows))
	for _, row := range rows {
		full := Restaurant{Address: row.Address, DetailAddress: row.DetailAddress}
		item := RankedRestaurant{
			ID:               row.ID,
			Created:          row.CreatedAt,
			Modified:         row.UpdatedAt,
			Name:             row.Name,
			Address:          row.Address,
			DetailAddress:    row.DetailAddress,
			FullAddress:      full.FullAddress(),
			Longitude:        row.Longitude,
			Latitude:         row.Latitude,
			FarFromLionsPark: row.FarFromLionsPark,
			Category:         row.Category,
			CategoryLabel:    row.Category.Label(),
			PlayersPick:      row.PlayersPick,
			SuggestedCount:   row.SuggestedCount,
			AddressCount:     row.AddressCount,
			ReviewCount:      row.ReviewCount,
			HasPlayerPick:    row.HasPlayerPick == 1,
			ReviewPosts:      posts[row.ID],
			ImageURLs:        images[row.ID],
		}
		if item.ReviewPosts == nil {
			item.ReviewPosts = []string{}
		}
		if item.ImageURLs == nil {
			item.ImageURLs = []string{}
		}
		out = append(out, item)
	}
	return out, nil
}

func reviewPostsByRestaurant(ctx context.Context, gormDB *gorm.DB, ids []uint) (map[uint][]string, error) {
	var reviews []Review
	err := gormDB.WithContext(ctx).
		Select("restaurant_id", "post").
		Where("restaurant_id IN ?", ids).
		Order("id ASC").
		Find(&reviews).Error
	if err != nil {
		return nil, utils.WrapError(err, utils.KindInternal, "Failed to load reviews")
	}
	out := make(map[uint][]string, len(ids))
	for _, rv := range reviews {
		out[rv.RestaurantID] = append(out[rv.RestaurantID], rv.Post)
	}
	return out, nil
}

func latestImagesByRestaurant(ctx context.Context, gormDB *gorm.DB, ids []uint) (map[uint][]string, error) {
	var images []RestaurantImage
	err := gormDB.WithContext(ctx).
		Select("restaurant_id", "img_url").
		Where("restaurant_id IN ?", ids).
		Order("created_at DESC").
		Order("id DESC").
		Find(&images).Error
	if err != nil {
		return nil, utils.WrapError(err, utils.KindInternal, "Failed to load restaurant images")
	}
	out := make(map[uint][]string, len(ids))
	for _, img := range images {
		if len(out[img.RestaurantID]) < ImagesPerRestaurant {
			out[img.RestaurantID] = append(out[img.RestaurantID], img.ImgURL)
		}
	}
	return out, nil
}
