package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestRequireRole(t *testing.T) {
	cases := map[string]struct {
		userID  string
		role    interface{}
		status  int
		message string
	}{
		"admin allowed":          {userID: "uid-1", role: "admin", status: fiber.StatusOK},
		"role is case folded":    {userID: "uid-1", role: " Moderator ", status: fiber.StatusOK},
		"student forbidden":      {userID: "uid-2", role: "student", status: fiber.StatusForbidden, message: "insufficient permissions"},
		"missing role forbidden": {userID: "uid-3", status: fiber.StatusForbidden, message: "insufficient permissions"},
		"anonymous rejected":     {role: "admin", status: fiber.StatusUnauthorized, message: "authentication required"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			app := fiber.New()
			app.Use(func(c *fiber.Ctx) error {
				if tc.userID != "" {
					c.Locals("user_id", tc.userID)
				}
				if tc.role != nil {
					c.Locals("user_role", tc.role)
				}
				return c.Next()
			})
			app.Use(RequireRole("admin", "moderator"))
			app.Get("/admin", func(c *fiber.Ctx) error {
				return c.SendStatus(fiber.StatusOK)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin", nil), -1)
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)

			if tc.message != "" {
				var body struct {
					Success bool   `json:"success"`
					Message string `json:"message"`
				}
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				require.False(t, body.Success)
				require.Equal(t, tc.message, body.Message)
			}
		})
	}
}
