package v1

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	restaurant "github.com/mnuddindev/winoreat/internal/models/restaurant"
	"github.com/mnuddindev/winoreat/internal/services/restaurants"
	"github.com/mnuddindev/winoreat/pkg/utils"
)

// createStatus maps create failures; anything not listed is a server error.
var createStatus = utils.StatusMap{
	utils.KindBadRequest:       fiber.StatusUnprocessableEntity,
	utils.KindAlreadyExists:    fiber.StatusUnprocessableEntity,
	utils.KindCategoryNotFound: fiber.StatusNotFound,
}

type searchQuery struct {
	Name string `query:"name" validate:"required"`
}

type createRestaurantRequest struct {
	Name     string `json:"name" validate:"required,max=63"`
	Address  string `json:"address" validate:"required,max=1023"`
	Category string `json:"category" validate:"required,max=63"`
	Review   string `json:"review"`
}

// ListRestaurants returns the ranked listing, optionally narrowed by
// category and by max_range on the landmark distance.
func (h *Handler) ListRestaurants(c *fiber.Ctx) error {
	filter := restaurant.ListFilter{Category: restaurant.Category(c.Query("category"))}

	if raw := c.Query("max_range"); raw != "" {
		maxRange, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return utils.SendValidation(c, &utils.ErrorResponse{Errors: []utils.CError{
				{Field: "max_range", Msg: "max_range must be a number"},
			}})
		}
		filter.MaxRange = &maxRange
	}

	items, err := restaurant.ListRanked(c.UserContext(), h.DB, filter)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, items)
}

// SearchRestaurants looks a name up at the place provider, restricted to the
// service area.
func (h *Handler) SearchRestaurants(c *fiber.Ctx) error {
	q := new(searchQuery)
	if err := c.QueryParser(q); err != nil {
		return utils.SendError(c, utils.NewError(utils.KindBadRequest, "Invalid query"))
	}
	if verr := h.Validator.Validate(q); verr != nil {
		return utils.SendValidation(c, verr)
	}

	results, err := h.Restaurants.SearchRestaurants(c.UserContext(), q.Name)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, results)
}

// CreateRestaurant records a suggestion and answers with the new count.
func (h *Handler) CreateRestaurant(c *fiber.Ctx) error {
	req := new(createRestaurantRequest)
	if err := utils.StrictBodyParser(c, req); err != nil {
		return h.invalidBody(c, err)
	}
	if verr := h.Validator.Validate(req); verr != nil {
		return utils.SendValidation(c, verr)
	}

	res, err := h.Restaurants.CreateRestaurant(c.UserContext(), restaurants.CreateInput{
		Name:     req.Name,
		Address:  req.Address,
		Category: req.Category,
		IP:       utils.ClientIP(c),
		Review:   req.Review,
	})
	if err != nil {
		return utils.Error(c, err).WithStatusMap(createStatus).Send()
	}
	return utils.Success(c).WithStatus(fiber.StatusCreated).WithData(res).Send()
}
