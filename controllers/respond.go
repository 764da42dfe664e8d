package controllers

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hardik18-hk19/urbifix_backend/models"
)

// fail maps a service error onto the response envelope. Domain errors
// carry their own HTTP status; anything else is a 500 with a generic
// message and the detail only in the log.
func fail(ctx echo.Context, err error) error {
	if appErr, ok := models.AsAppError(err); ok {
		return ctx.JSON(appErr.HTTPStatus(), models.Response{
			Status:  appErr.HTTPStatus(),
			Message: appErr.Message,
		})
	}
	log.Printf("internal error on %s %s: %v", ctx.Request().Method, ctx.Path(), err)
	return ctx.JSON(http.StatusInternalServerError, models.Response{
		Status:  http.StatusInternalServerError,
		Message: "Internal server error",
	})
}

// ok writes a success envelope.
func ok(ctx echo.Context, status int, message string, data interface{}) error {
	return ctx.JSON(status, models.Response{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// okPaginated writes a success envelope carrying paging metadata.
func okPaginated(ctx echo.Context, status int, message string, data interface{}, pagination *models.Pagination) error {
	return ctx.JSON(status, models.PaginatedResponse{
		Status:     status,
		Message:    message,
		Data:       data,
		Pagination: pagination,
	})
}

// badRequest writes a 400 envelope.
func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, models.Response{
		Status:  http.StatusBadRequest,
		Message: message,
	})
}

// unauthorized writes a 401 envelope.
func unauthorized(ctx echo.Context) error {
	return ctx.JSON(http.StatusUnauthorized, models.Response{
		Status:  http.StatusUnauthorized,
		Message: "Unauthorized",
	})
}
