package models_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mnuddindev/winoreat/internal/db/dbtest"
	restaurant "github.com/mnuddindev/winoreat/internal/models/restaurant"
	"github.com/mnuddindev/winoreat/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newDB(t *testing.T) *gorm.DB {
	return dbtest.New(t,
		&restaurant.Restaurant{},
		&restaurant.Review{},
		&restaurant.RestaurantImage{},
		&restaurant.IPAddress{},
	)
}

func create(t *testing.T, gdb *gorm.DB, name, address string, opts ...restaurant.RestaurantOption) *restaurant.Restaurant {
	t.Helper()
	opts = append([]restaurant.RestaurantOption{
		restaurant.WithDetailAddress(name),
		restaurant.WithCategory(restaurant.Korean),
	}, opts...)
	r, err := restaurant.NewRestaurant(context.Background(), gdb, name, address, opts...)
	require.NoError(t, err)
	return r
}

func TestCategory(t *testing.T) {
	assert.True(t, restaurant.Korean.Valid())
	assert.Equal(t, "카페", restaurant.Cafe.Label())
	assert.False(t, restaurant.Category("PIZZA").Valid())
}

func TestNewRestaurantRejectsUnknownCategory(t *testing.T) {
	gdb := newDB(t)
	_, err := restaurant.NewRestaurant(context.Background(), gdb, "a", "b", restaurant.WithCategory("PIZZA"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrCategoryNotFound))
}

func TestIdentityIsUnique(t *testing.T) {
	gdb := newDB(t)
	create(t, gdb, "국밥집", "대구광역시 수성구 1")

	_, err := restaurant.NewRestaurant(context.Background(), gdb, "국밥집", "대구광역시 수성구 1",
		restaurant.WithDetailAddress("국밥집"), restaurant.WithCategory(restaurant.Korean))
	require.Error(t, err)

	// same name elsewhere is a different restaurant
	create(t, gdb, "국밥집", "대구광역시 북구 2")
}

func TestGetRestaurantByIdentity(t *testing.T) {
	gdb := newDB(t)
	ctx := context.Background()
	want := create(t, gdb, "국밥집", "대구광역시 수성구 1")

	got, err := restaurant.GetRestaurantByIdentity(ctx, gdb, "국밥집", "대구광역시 수성구 1", "국밥집")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, "대구광역시 수성구 1 국밥집", got.FullAddress())

	_, err = restaurant.GetRestaurantByIdentity(ctx, gdb, "국밥집", "대구광역시 수성구 1", "")
	assert.True(t, errors.Is(err, utils.ErrNotFound))
}

func TestIncrementSuggestedCount(t *testing.T) {
	gdb := newDB(t)
	r := create(t, gdb, "국밥집", "대구광역시 수성구 1")
	assert.Equal(t, 1, r.SuggestedCount)

	require.NoError(t, restaurant.IncrementSuggestedCount(context.Background(), gdb, r))
	require.NoError(t, restaurant.IncrementSuggestedCount(context.Background(), gdb, r))
	assert.Equal(t, 3, r.SuggestedCount)

	var stored restaurant.Restaurant
	require.NoError(t, gdb.First(&stored, r.ID).Error)
	assert.Equal(t, 3, stored.SuggestedCount)
}

func TestHasRecentSubmission(t *testing.T) {
	gdb := newDB(t)
	ctx := context.Background()
	r := create(t, gdb, "국밥집", "대구광역시 수성구 1")
	_, err := restaurant.AddIPAddress(ctx, gdb, r.ID, "1.1.1.1")
	require.NoError(t, err)

	since := time.Now().Add(-72 * time.Hour)

	dup, err := restaurant.HasRecentSubmission(ctx, gdb, "국밥집", "대구광역시 수성구 1", "국밥집", "1.1.1.1", since)
	require.NoError(t, err)
	assert.True(t, dup)

	dup, err = restaurant.HasRecentSubmission(ctx, gdb, "국밥집", "대구광역시 수성구 1", "국밥집", "2.2.2.2", since)
	require.NoError(t, err)
	assert.False(t, dup)

	// an address recorded for another restaurant does not count
	other := create(t, gdb, "냉면집", "대구광역시 수성구 1")
	_, err = restaurant.AddIPAddress(ctx, gdb, other.ID, "3.3.3.3")
	require.NoError(t, err)
	dup, err = restaurant.HasRecentSubmission(ctx, gdb, "국밥집", "대구광역시 수성구 1", "국밥집", "3.3.3.3", since)
	require.NoError(t, err)
	assert.False(t, dup)

	require.NoError(t, gdb.Model(r).UpdateColumn("updated_at", time.Now().Add(-96*time.Hour)).Error)
	dup, err = restaurant.HasRecentSubmission(ctx, gdb, "국밥집", "대구광역시 수성구 1", "국밥집", "1.1.1.1", since)
	require.NoError(t, err)
	assert.False(t, dup)
}

func TestAddImagesEmptyIsNoop(t *testing.T) {
	gdb := newDB(t)
	r := create(t, gdb, "국밥집", "대구광역시 수성구 1")

	images, err := restaurant.AddImages(context.Background(), gdb, r.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, images)

	images, err = restaurant.AddImages(context.Background(), gdb, r.ID, []string{"https://a", "https://c"})
	require.NoError(t, err)
	assert.Len(t, images, 2)

	var urls []string
	require.NoError(t, gdb.Model(&restaurant.RestaurantImage{}).Order("id").Pluck("img_url", &urls).Error)
	assert.Equal(t, []string{"https://a", "https://c"}, urls)
}

func TestAddImagesRejectsPlainHTTP(t *testing.T) {
	gdb := newDB(t)
	r := create(t, gdb, "국밥집", "대구광역시 수성구 1")

	_, err := restaurant.AddImages(context.Background(), gdb, r.ID, []string{"https://a", "http://b"})
	assert.True(t, errors.Is(err, utils.ErrBadRequest))

	var n int64
	gdb.Model(&restaurant.RestaurantImage{}).Count(&n)
	assert.Zero(t, n)
}

func TestNewRestaurantChecksFieldLimits(t *testing.T) {
	gdb := newDB(t)
	ctx := context.Background()

	_, err := restaurant.NewRestaurant(ctx, gdb, strings.Repeat("가", 64), "대구광역시", restaurant.WithCategory(restaurant.Korean))
	assert.True(t, errors.Is(err, utils.ErrBadRequest))

	_, err = restaurant.NewRestaurant(ctx, gdb, "국밥집", "", restaurant.WithCategory(restaurant.Korean))
	assert.True(t, errors.Is(err, utils.ErrBadRequest))

	_, err = restaurant.NewRestaurant(ctx, gdb, "국밥집", "대구광역시",
		restaurant.WithCategory(restaurant.Korean), restaurant.WithPlayersPick(strings.Repeat("a", 16)))
	assert.True(t, errors.Is(err, utils.ErrBadRequest))

	// 63 runes of Korean text still fits
	_, err = restaurant.NewRestaurant(ctx, gdb, strings.Repeat("가", 63), "대구광역시", restaurant.WithCategory(restaurant.Korean))
	assert.NoError(t, err)

	var n int64
	gdb.Model(&restaurant.Restaurant{}).Count(&n)
	assert.Equal(t, int64(1), n)
}

func TestWithPlayersPick(t *testing.T) {
	r := &restaurant.Restaurant{}
	restaurant.WithPlayersPick("  ")(r)
	assert.Nil(t, r.PlayersPick)
	assert.False(t, r.HasPlayerPick())

	restaurant.WithPlayersPick("구자욱")(r)
	require.NotNil(t, r.PlayersPick)
	assert.True(t, r.HasPlayerPick())
}
