package models

import (
	bug "github.com/mnuddindev/winoreat/internal/models/bug"
	restaurant "github.com/mnuddindev/winoreat/internal/models/restaurant"
)

// RegisterModels lists every table the application migrates.
func RegisterModels() []interface{} {
	return []interface{}{
		&restaurant.Restaurant{},
		&restaurant.Review{},
		&restaurant.RestaurantImage{},
		&restaurant.IPAddress{},
		&bug.Bug{},
		&bug.Answer{},
	}
}

type (
	RankedRestaurant = restaurant.RankedRestaurant
	StatusType       = bug.StatusType
)

var (
	MergeDuplicates = restaurant.MergeDuplicates
	AnswerBug       = bug.AnswerBug
	MarkDone        = bug.MarkDone
)
