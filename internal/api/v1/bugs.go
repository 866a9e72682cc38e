package v1

import (
	"net/url"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	bug "github.com/mnuddindev/winoreat/internal/models/bug"
	"github.com/mnuddindev/winoreat/pkg/utils"
)

type bugSummary struct {
	ID         uint           `json:"id"`
	BugType    bug.BugType    `json:"bug_type"`
	Title      string         `json:"title"`
	StatusType bug.StatusType `json:"status_type"`
}

type answerView struct {
	Answer  string    `json:"answer"`
	Created time.Time `json:"created"`
}

type bugDetail struct {
	ID          uint           `json:"id"`
	BugType     bug.BugType    `json:"bug_type"`
	Title       string         `json:"title"`
	StatusType  bug.StatusType `json:"status_type"`
	Description string         `json:"description"`
	Answers     []answerView   `json:"answers"`
	Created     time.Time      `json:"created"`
}

type createdBug struct {
	BugType     bug.BugType `json:"bug_type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Email       *string     `json:"email"`
}

type bugPage struct {
	Count    int64        `json:"count"`
	Next     *string      `json:"next"`
	Previous *string      `json:"previous"`
	Results  []bugSummary `json:"results"`
}

// ListBugs returns one page of bug reports filtered by bug_type and status_type.
func (h *Handler) ListBugs(c *fiber.Ctx) error {
	page := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return utils.SendError(c, utils.NewError(utils.KindNotFound, "Invalid page"))
		}
		page = n
	}

	filter := bug.BugFilter{
		BugType:    bug.BugType(c.Query("bug_type")),
		StatusType: bug.StatusType(c.Query("status_type")),
	}

	bugs, total, err := bug.ListBugs(c.UserContext(), h.DB, filter, page, h.BugPageSize)
	if err != nil {
		return utils.SendError(c, err)
	}

	out := bugPage{Count: total, Results: make([]bugSummary, 0, len(bugs))}
	for _, b := range bugs {
		out.Results = append(out.Results, bugSummary{ID: b.ID, BugType: b.BugType, Title: b.Title, StatusType: b.StatusType})
	}
	if int64(page*h.BugPageSize) < total {
		next := pageURL(c, page+1)
		out.Next = &next
	}
	if page > 1 {
		prev := pageURL(c, page-1)
		out.Previous = &prev
	}
	return utils.SendSuccess(c, out)
}

// pageURL rebuilds the request URL pointing at page. The first page carries
// no page parameter.
func pageURL(c *fiber.Ctx, page int) string {
	q := url.Values{}
	for k, v := range c.Queries() {
		q.Set(k, v)
	}
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}

	u := c.BaseURL() + c.Path()
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

// CreateBug stores a new report.
func (h *Handler) CreateBug(c *fiber.Ctx) error {
	in := new(bug.NewBugInput)
	if err := utils.StrictBodyParser(c, in); err != nil {
		return h.invalidBody(c, err)
	}
	if verr := h.Validator.Validate(in); verr != nil {
		return utils.SendValidation(c, verr)
	}

	b, err := bug.NewBug(c.UserContext(), h.DB, *in)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.Success(c).WithStatus(fiber.StatusCreated).WithData(createdBug{
		BugType:     b.BugType,
		Title:       b.Title,
		Description: b.Description,
		Email:       b.Email,
	}).Send()
}

// GetBug returns a report with its answers.
func (h *Handler) GetBug(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return utils.SendError(c, utils.NewError(utils.KindNotFound, "Bug not found"))
	}

	b, err := bug.GetBug(c.UserContext(), h.DB, uint(id))
	if err != nil {
		return utils.SendError(c, err)
	}

	out := bugDetail{
		ID:          b.ID,
		BugType:     b.BugType,
		Title:       b.Title,
		StatusType:  b.StatusType,
		Description: b.Description,
		Answers:     make([]answerView, 0, len(b.Answers)),
		Created:     b.CreatedAt,
	}
	for _, a := range b.Answers {
		out.Answers = append(out.Answers, answerView{Answer: a.Answer, Created: a.CreatedAt})
	}
	return utils.SendSuccess(c, out)
}
