package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func TestCustomErrorKinds(t *testing.T) {
	err := NewError(KindNotFound, "Bug not found")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrBadRequest))

	wrapped := fmt.Errorf("outer: %w", WrapError(errors.New("boom"), KindAlreadyExists, "dup"))
	assert.Equal(t, KindAlreadyExists, KindOf(wrapped))
	assert.Equal(t, "dup", MessageOf(wrapped))
	assert.Equal(t, "ALREADY_EXISTS: dup (boom)", errors.Unwrap(wrapped).Error())

	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, "plain", MessageOf(errors.New("plain")))

	c := ErrInternalServerError.WithCause(errors.New("db"))
	assert.Equal(t, "db", c.Details)
	assert.Empty(t, ErrInternalServerError.Details)
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "국밥집", StripHTML("<b>국밥</b>집"))
	assert.Equal(t, "A&B", StripHTML("A&amp;B"))
	assert.Equal(t, "plain", StripHTML("plain"))
	assert.Equal(t, "", StripHTML("<b></b>"))
}

type bugInput struct {
	Title   string `json:"title" validate:"required,max=5"`
	Kind    string `json:"kind" validate:"oneof=A B"`
	Email   string `json:"email" validate:"omitempty,email"`
	Image   string `json:"image" validate:"omitempty,https_url"`
	Page    int    `query:"page" validate:"gte=1"`
	Ignored string `json:"-"`
}

func TestValidator(t *testing.T) {
	v := NewValidator()

	assert.Nil(t, v.Validate(&bugInput{Title: "t", Kind: "A", Page: 1}))

	verr := v.Validate(&bugInput{Title: "toolong", Kind: "C", Email: "x", Image: "http://a", Page: 0})
	require.NotNil(t, verr)
	fields := map[string]string{}
	for _, e := range verr.Errors {
		fields[e.Field] = e.Msg
	}
	assert.Equal(t, "title must be at most 5 characters long", fields["title"])
	assert.Equal(t, "kind must be one of the following values: A B", fields["kind"])
	assert.Equal(t, "email must be a valid email address", fields["email"])
	assert.Equal(t, "image must be a valid https URL", fields["image"])
	assert.Equal(t, "page must be greater than or equal to 1", fields["page"])
	assert.Contains(t, verr.Error(), "title must be")
}

func TestClientIP(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(ClientIP(c)) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "10.0.0.1", string(body))

	resp, err = app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.NotEmpty(t, string(body))
	assert.NotContains(t, string(body), ",")
}

func TestClientIPOutlivesRequest(t *testing.T) {
	var seen []string
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		seen = append(seen, ClientIP(c))
		return nil
	})

	for _, ip := range []string{"1.1.1.1", "22.22.22.22", "3.3.3.3"} {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Forwarded-For", ip)
		_, err := app.Test(req)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"1.1.1.1", "22.22.22.22", "3.3.3.3"}, seen)
}

func TestStatusMapAndErrorBody(t *testing.T) {
	assert.Equal(t, fiber.StatusUnprocessableEntity, DefaultStatus.Status(ErrAlreadyExists))
	assert.Equal(t, fiber.StatusUnauthorized, DefaultStatus.Status(ErrForbidden))
	assert.Equal(t, fiber.StatusInternalServerError, DefaultStatus.Status(errors.New("x")))

	app := fiber.New()
	app.Get("/nf", func(c *fiber.Ctx) error {
		return SendError(c, NewError(KindNotFound, "없음"))
	})
	app.Get("/internal", func(c *fiber.Ctx) error {
		return SendError(c, errors.New("sql: secret details"))
	})
	app.Get("/custom", func(c *fiber.Ctx) error {
		return Error(c, ErrBadRequest).WithStatusMap(StatusMap{KindBadRequest: fiber.StatusBadRequest}).Send()
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/nf", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"errors":["없음"]}`, string(body))

	resp, err = app.Test(httptest.NewRequest("GET", "/internal", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	body, _ = io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"errors":["Internal server error"]}`, string(body))

	resp, err = app.Test(httptest.NewRequest("GET", "/custom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

type recordingSender struct {
	msgs []*gomail.Message
	err  error
}

func (r *recordingSender) DialAndSend(m ...*gomail.Message) error {
	r.msgs = append(r.msgs, m...)
	return r.err
}

func TestMailerSendBugAnswer(t *testing.T) {
	sender := &recordingSender{}
	m := &Mailer{
		Config: EmailConfig{FromEmail: "no-reply@winoreat.com", AppURL: "https://winoreat.com"},
		Sender: sender,
	}

	require.NoError(t, m.SendBugAnswer(context.Background(), "fan@example.com", "사진 오류", "고쳤어요"))
	require.Len(t, sender.msgs, 1)
	msg := sender.msgs[0]
	assert.Equal(t, []string{"fan@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"no-reply@winoreat.com"}, msg.GetHeader("From"))

	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Subject:")

	sender.err = errors.New("smtp down")
	err = m.SendBugAnswer(context.Background(), "fan@example.com", "t", "a")
	assert.Equal(t, KindInternal, KindOf(err))
}

func TestEmailConfigEnabled(t *testing.T) {
	assert.False(t, EmailConfig{}.Enabled())
	assert.True(t, EmailConfig{SMTPHost: "smtp", SMTPPort: 25, FromEmail: "a@b"}.Enabled())
}
