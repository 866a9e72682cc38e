package models

import "strings"

type RestaurantOption func(*Restaurant)

func WithDetailAddress(detail string) RestaurantOption {
	return func(r *Restaurant) { r.DetailAddress = detail }
}

func WithCategory(category Category) RestaurantOption {
	return func(r *Restaurant) { r.Category = category }
}

func WithCoordinates(longitude, latitude float64) RestaurantOption {
	return func(r *Restaurant) {
		r.Longitude = longitude
		r.Latitude = latitude
	}
}

func WithFarFromLionsPark(distance float64) RestaurantOption {
	return func(r *Restaurant) { r.FarFromLionsPark = distance }
}

func WithPlayersPick(player string) RestaurantOption {
	return func(r *Restaurant) {
		player = strings.TrimSpace(player)
		if player == "" {
			r.PlayersPick = nil
			return
		}
		r.PlayersPick = &player
	}
}
