package models

import (
	"context"

	"github.com/mnuddindev/winoreat/pkg/utils"
	"gorm.io/gorm"
)

// MergeReport summarizes a MergeDuplicates run.
type MergeReport struct {
	Groups  int `json:"groups"`
	Removed int `json:"removed"`
}

// MergeDuplicates folds restaurants sharing a name into one row. The row with
// a player pick survives, otherwise the lowest ID. The survivor's suggested
// count becomes the group size and it adopts every review, image and submitter
// address of the group. Everything runs in one transaction.
func MergeDuplicates(ctx context.Context, gormDB *gorm.DB) (MergeReport, error) {
	var report MergeReport

	err := gormDB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var names []string
		if err := tx.Model(&Restaurant{}).
			Group("name").
			Having("COUNT(*) > 1").
			Order("name").
			Pluck("name", &names).Error; err != nil {
			return utils.WrapError(err, utils.KindInternal, "Failed to group restaurants")
		}

		for _, name := range names {
			var group []Restaurant
			if err := tx.Where("name = ?", name).Order("id ASC").Find(&group).Error; err != nil {
				return utils.WrapError(err, utils.KindInternal, "Failed to load restaurant group")
			}

			target := group[0]
			for _, r := range group {
				if r.HasPlayerPick() {
					target = r
					break
				}
			}

			others := make([]uint, 0, len(group)-1)
			for _, r := range group {
				if r.ID != target.ID {
					others = append(others, r.ID)
				}
			}

			for _, child := range []interface{}{&Review{}, &RestaurantImage{}, &IPAddress{}} {
				if err := tx.Model(child).
					Where("restaurant_id IN ?", others).
					Update("restaurant_id", target.ID).Error; err != nil {
					return utils.WrapError(err, utils.KindInternal, "Failed to move restaurant children")
				}
			}

			if err := tx.Model(&Restaurant{}).
				Where("id = ?", target.ID).
				UpdateColumn("suggested_count", len(group)).Error; err != nil {
				return utils.WrapError(err, utils.KindInternal, "Failed to update suggested count")
			}

			if err := tx.Where("id IN ?", others).Delete(&Restaurant{}).Error; err != nil {
				return utils.WrapError(err, utils.KindInternal, "Failed to delete duplicate restaurants")
			}

			report.Groups++
			report.Removed += len(others)
		}
		return nil
	})
	if err != nil {
		return MergeReport{}, err
	}
	return report, nil
}
