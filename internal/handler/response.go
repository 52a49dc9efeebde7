// Package handler implements the HTTP endpoints. Every response uses
// the same envelope: {"success": bool, "message"?, "data"|"error"},
// which the legacy mobile clients already parse.
package handler

import "github.com/labstack/echo/v4"

// respond writes a success envelope with optional message and data.
func respond(c echo.Context, status int, message string, data any) error {
	body := echo.Map{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	return c.JSON(status, body)
}

// fail writes an error envelope. extra merges additional fields into
// the body (remainingMinutes on 423, retry hints and the like).
func fail(c echo.Context, status int, msg string, extra ...echo.Map) error {
	body := echo.Map{"success": false, "error": msg}
	for _, m := range extra {
		for k, v := range m {
			body[k] = v
		}
	}
	return c.JSON(status, body)
}
