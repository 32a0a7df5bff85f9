package presenter

import "github.com/gofiber/fiber/v2"

// RequestIDKey is the Locals key the request id middleware writes to.
const RequestIDKey = "requestid"

type ErrorResponse struct {
	Detail    string       `json:"detail"`
	RequestID string       `json:"request_id,omitempty"`
	Fields    []FieldError `json:"fields,omitempty"`
}

// FieldError describes one failed validation rule on a request field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// TokenResponse is returned by signup and login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ChatResponse carries the model answer verbatim.
type ChatResponse struct {
	Result string `json:"result"`
}

func JSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

func Error(c *fiber.Ctx, status int, detail string) error {
	return JSON(c, status, ErrorResponse{Detail: detail, RequestID: RequestID(c)})
}

// ValidationError responds 400 with per-field details.
func ValidationError(c *fiber.Ctx, detail string, fields []FieldError) error {
	return JSON(c, fiber.StatusBadRequest, ErrorResponse{Detail: detail, RequestID: RequestID(c), Fields: fields})
}

// RequestID returns the id assigned to the current request, if any.
func RequestID(c *fiber.Ctx) string {
	id, _ := c.Locals(RequestIDKey).(string)
	return id
}
