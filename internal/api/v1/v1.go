package v1

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mnuddindev/winoreat/internal/services/restaurants"
	"github.com/mnuddindev/winoreat/pkg/logger"
	"github.com/mnuddindev/winoreat/pkg/utils"
	"gorm.io/gorm"
)

// DefaultBugPageSize is the bug board page size when none is configured.
const DefaultBugPageSize = 1000

// Handler holds what the v1 endpoints need.
type Handler struct {
	DB          *gorm.DB
	Logger      *logger.Logger
	Validator   *utils.Validator
	Restaurants *restaurants.Service
	BugPageSize int
}

type HandlerOption func(*Handler)

func WithLogger(log *logger.Logger) HandlerOption {
	return func(h *Handler) { h.Logger = log }
}

func WithBugPageSize(size int) HandlerOption {
	return func(h *Handler) {
		if size > 0 {
			h.BugPageSize = size
		}
	}
}

func NewHandler(db *gorm.DB, svc *restaurants.Service, opts ...HandlerOption) *Handler {
	h := &Handler{
		DB:          db,
		Validator:   utils.NewValidator(),
		Restaurants: svc,
		BugPageSize: DefaultBugPageSize,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the v1 endpoints on router.
func (h *Handler) Register(router fiber.Router) {
	r := router.Group("/restaurants")
	r.Get("/", h.ListRestaurants)
	r.Get("/search", h.SearchRestaurants)
	r.Post("/", h.CreateRestaurant)

	b := router.Group("/bugs")
	b.Get("/", h.ListBugs)
	b.Post("/", h.CreateBug)
	b.Get("/:id", h.GetBug)
}

// invalidBody answers a request whose JSON body could not be decoded.
func (h *Handler) invalidBody(c *fiber.Ctx, err error) error {
	h.Logger.Warn(c.UserContext()).WithFields(err).Logs("Failed to parse request body: %v")
	return utils.Error(c, utils.NewError(utils.KindBadRequest, "Invalid request format")).Send()
}
