package models

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/mnuddindev/winoreat/pkg/utils"
	"gorm.io/gorm"
)

type Category string

const (
	Korean       Category = "KOREAN"
	Japanese     Category = "JAPANESE"
	Chinese      Category = "CHINESE"
	WesternFood  Category = "WESTERN_FOOD"
	Meat         Category = "MEAT"
	FriedChicken Category = "FRIED_CHICKEN"
	Chicken      Category = "CHICKEN"
	Fish         Category = "FISH"
	Drink        Category = "DRINK"
	Cafe         Category = "CAFE"
)

var categoryLabels = map[Category]string{
	Korean:       "한식",
	Japanese:     "일식",
	Chinese:      "중식",
	WesternFood:  "양식",
	Meat:         "고기",
	FriedChicken: "치킨",
	Chicken:      "닭요리",
	Fish:         "물고기",
	Drink:        "술집",
	Cafe:         "카페",
}

// validate checks the struct tags of rows before they are written.
var validate = utils.NewValidator()

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label is the Korean display name.
func (c Category) Label() string {
	return categoryLabels[c]
}

type Restaurant struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"modified"`

	Name             string   `gorm:"size:63;not null" json:"name" validate:"required,max=63"`
	Address          string   `gorm:"size:1023;not null" json:"address" validate:"required,max=1023"`
	DetailAddress    string   `gorm:"size:127;not null;default:'';index" json:"detail_address" validate:"max=127"`
	IdentityHash     string   `gorm:"size:64;not null;uniqueIndex" json:"-"`
	Longitude        float64  `gorm:"not null" json:"longitude"`
	Latitude         float64  `gorm:"not null" json:"latitude"`
	FarFromLionsPark float64  `gorm:"not null;index" json:"far_from_lions_park" validate:"gte=0"`
	Category         Category `gorm:"size:63;not null" json:"category"`
	PlayersPick      *string  `gorm:"size:15" json:"players_pick" validate:"omitempty,max=15"`
	SuggestedCount   int      `gorm:"not null;default:1" json:"suggested_count" validate:"gte=1"`

	Reviews     []Review          `gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE" json:"-"`
	Images      []RestaurantImage `gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE" json:"-"`
	IPAddresses []IPAddress       `gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE" json:"-"`
}

type Review struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"modified"`
	RestaurantID uint      `gorm:"not null;index" json:"restaurant_id"`
	Post         string    `gorm:"type:text;not null" json:"post"`
}

type RestaurantImage struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"modified"`
	RestaurantID uint      `gorm:"not null;index" json:"restaurant_id"`
	ImgURL       string    `gorm:"size:4095;not null" json:"img_url" validate:"required,https_url,max=4095"`
}

type IPAddress struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"modified"`
	RestaurantID uint      `gorm:"not null;index" json:"restaurant_id"`
	IP           string    `gorm:"column:ip_address;size:63;not null;index" json:"ip_address"`
}

func (IPAddress) TableName() string {
	return "ip_addresses"
}

// IdentityKey hashes the dedup identity of a restaurant. The raw address is
// too long for a portable composite unique index.
func IdentityKey(name, address, detailAddress string) string {
	sum := sha256.Sum256([]byte(name + "\x00" + address + "\x00" + detailAddress))
	return hex.EncodeToString(sum[:])
}

func (r *Restaurant) BeforeSave(tx *gorm.DB) error {
	r.IdentityHash = IdentityKey(r.Name, r.Address, r.DetailAddress)
	return nil
}

// FullAddress joins the road address and the detail address.
func (r *Restaurant) FullAddress() string {
	return strings.TrimSpace(r.Address + " " + r.DetailAddress)
}

// HasPlayerPick reports whether a player recommended this restaurant.
func (r *Restaurant) HasPlayerPick() bool {
	return r.PlayersPick != nil && *r.PlayersPick != ""
}

// NewRestaurant inserts a restaurant built from the given options.
func NewRestaurant(ctx context.Context, gormDB *gorm.DB, name, address string, opts ...RestaurantOption) (*Restaurant, error) {
	r := &Restaurant{
		Name:           name,
		Address:        address,
		SuggestedCount: 1,
	}
	for _, opt := range opts {
		opt(r)
	}

	if !r.Category.Valid() {
		return nil, utils.NewError(utils.KindCategoryNotFound, "Category not found", string(r.Category))
	}
	if verr := validate.Validate(r); verr != nil {
		return nil, utils.NewError(utils.KindBadRequest, "Invalid restaurant", verr.Error())
	}

	if err := gormDB.WithContext(ctx).Create(r).Error; err != nil {
		return nil, utils.WrapError(err, utils.KindInternal, "Failed to create restaurant")
	}
	return r, nil
}

// GetRestaurantByIdentity finds the restaurant with the exact dedup identity.
func GetRestaurantByIdentity(ctx context.Context, gormDB *gorm.DB, name, address, detailAddress string) (*Restaurant, error) {
	var r Restaurant
	err := gormDB.WithContext(ctx).
		Where("name = ? AND address = ? AND detail_address = ?", name, address, detailAddress).
		First(&r).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewError(utils.KindNotFound, "Restaurant not found")
		}
		return nil, utils.WrapError(err, utils.KindInternal, "Failed to get restaurant")
	}
	return &r, nil
}

// IncrementSuggestedCount adds one suggestion in the database and reloads the count.
func IncrementSuggestedCount(ctx context.Context, gormDB *gorm.DB, r *Restaurant) error {
	tx := gormDB.WithContext(ctx)
	if err := tx.Model(r).Update("suggested_count", gorm.Expr("suggested_count + ?", 1)).Error; err != nil {
		return utils.WrapError(err, utils.KindInternal, "Failed to increment suggested count")
	}
	if err := tx.Model(&Restaurant{}).Where("id = ?", r.ID).Select("suggested_count").Scan(&r.SuggestedCount).Error; err != nil {
		return utils.WrapError(err, utils.KindInternal, "Failed to reload suggested count")
	}
	return nil
}

// HasRecentSubmission reports whether ip already suggested the restaurant
// with this identity at or after since.
func HasRecentSubmission(ctx context.Context, gormDB *gorm.DB, name, address, detailAddress, ip string, since time.Time) (bool, error) {
	submitted := gormDB.Session(&gorm.Session{NewDB: true}).
		Model(&IPAddress{}).
		Select("1").
		Where("ip_addresses.restaurant_id = restaurants.id AND ip_addresses.ip_address = ?", ip)

	var count int64
	err := gormDB.WithContext(ctx).Model(&Restaurant{}).
		Where("restaurants.name = ? AND restaurants.address = ? AND restaurants.detail_address = ?", name, address, detailAddress).
		Where("restaurants.updated_at >= ?", since).
		Where("EXISTS (?)", submitted).
		Count(&count).Error
	if err != nil {
		return false, utils.WrapError(err, utils.KindInternal, "Failed to check recent submissions")
	}
	return count > 0, nil
}

// AddReview stores a review post for the restaurant.
func AddReview(ctx context.Context, gormDB *gorm.DB, restaurantID uint, post string) (*Review, error) {
	rv := &Review{RestaurantID: restaurantID, Post: post}
	if err := gormDB.WithContext(ctx).Create(rv).Error; err != nil {
		return nil, utils.WrapError(err, utils.KindInternal, "Failed to create review")
	}
	return rv, nil
}

// AddIPAddress records the submitter address of a suggestion.
func AddIPAddress(ctx context.Context, gormDB *gorm.DB, restaurantID uint, ip string) (*IPAddress, error) {
	a := &IPAddress{RestaurantID: restaurantID, IP: ip}
	if err := gormDB.WithContext(ctx).Create(a).Error; err != nil {
		return nil, utils.WrapError(err, utils.KindInternal, "Failed to record ip address")
	}
	return a, nil
}

// AddImages bulk inserts image urls for the restaurant. Empty input is a no-op.
func AddImages(ctx context.Context, gormDB *gorm.DB, restaurantID uint, urls []string) ([]RestaurantImage, error) {
	if len(urls) == 0 {
		return nil, nil
	}
	images := make([]RestaurantImage, 0, len(urls))
	for _, u := range urls {
		img := RestaurantImage{RestaurantID: restaurantID, ImgURL: u}
		if verr := validate.Validate(&img); verr != nil {
			return nil, utils.NewError(utils.KindBadRequest, "Invalid image url", verr.Error())
		}
		images = append(images, img)
	}
	if err := gormDB.WithContext(ctx).Create(&images).Error; err != nil {
		return nil, utils.WrapError(err, utils.KindInternal, "Failed to create restaurant images")
	}
	return images, nil
}
