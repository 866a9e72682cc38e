package restaurants

import (
	"context"
	"fmt"
	"time"

	restaurant "github.com/mnuddindev/winoreat/internal/models/restaurant"
	"github.com/mnuddindev/winoreat/pkg/utils"
	"gorm.io/gorm"
)

const (
	DefaultCooldown      = 3 * 24 * time.Hour
	DefaultMaxDistanceKM = 20.0
)

// Validator holds the business checks run before a suggestion is stored.
type Validator struct {
	DB            *gorm.DB
	Cooldown      time.Duration
	MaxDistanceKM float64
	Now           func() time.Time
}

func NewValidator(db *gorm.DB) *Validator {
	return &Validator{
		DB:            db,
		Cooldown:      DefaultCooldown,
		MaxDistanceKM: DefaultMaxDistanceKM,
		Now:           time.Now,
	}
}

func (v *Validator) ValidateCategory(category string) error {
	if !restaurant.Category(category).Valid() {
		return utils.NewError(utils.KindCategoryNotFound, "해당하는 카테고리를 찾을 수 없습니다.", category)
	}
	return nil
}

// ValidateDuplicateRestaurant rejects a second suggestion of the same
// restaurant from the same address while the restaurant was touched within
// the cooldown window.
func (v *Validator) ValidateDuplicateRestaurant(ctx context.Context, name, address, ip string) error {
	since := v.Now().Add(-v.Cooldown)
	dup, err := restaurant.HasRecentSubmission(ctx, v.DB, name, address, name, ip, since)
	if err != nil {
		return err
	}
	if dup {
		return utils.NewError(utils.KindAlreadyExists, fmt.Sprintf("같은 식당은 %s에 1번만 추천할 수 있습니다.", cooldownText(v.Cooldown)))
	}
	return nil
}

// ValidateDistance rejects a restaurant farther than MaxDistanceKM from the
// ballpark. A zero maximum disables the check.
func (v *Validator) ValidateDistance(km float64) error {
	if v.MaxDistanceKM > 0 && km > v.MaxDistanceKM {
		return utils.NewError(utils.KindBadRequest, fmt.Sprintf("라팍과의 거리가 %gkm를 넘습니다.", v.MaxDistanceKM))
	}
	return nil
}

// cooldownText renders d in the largest unit that divides it evenly.
func cooldownText(d time.Duration) string {
	switch {
	case d >= 24*time.Hour && d%(24*time.Hour) == 0:
		return fmt.Sprintf("%d일", int(d/(24*time.Hour)))
	case d >= time.Hour && d%time.Hour == 0:
		return fmt.Sprintf("%d시간", int(d/time.Hour))
	case d >= time.Minute:
		return fmt.Sprintf("%d분", int(d/time.Minute))
	default:
		return fmt.Sprintf("%d초", int(d/time.Second))
	}
}
