package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hardik18-hk19/urbifix_backend/middleware"
	"github.com/hardik18-hk19/urbifix_backend/services"
)

// NotificationController handles notification API endpoints
type NotificationController struct {
	notifications *services.NotificationService
}

// NewNotificationController creates a new notification controller
func NewNotificationController(notifications *services.NotificationService) *NotificationController {
	return &NotificationController{notifications: notifications}
}

// GetNotifications returns the requester's notifications, paginated and
// filterable by type, read state, priority and date range
func (c *NotificationController) GetNotifications(ctx echo.Context) error {
	userID, err := middleware.ExtractUserObjectID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	page, _ := strconv.Atoi(ctx.QueryParam("page"))
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))

	filter := services.NotificationFilter{
		Type:     ctx.QueryParam("type"),
		Priority: ctx.QueryParam("priority"),
	}
	if isReadStr := ctx.QueryParam("isRead"); isReadStr != "" {
		isRead := isReadStr == "true"
		filter.IsRead = &isRead
	}
	if start := ctx.QueryParam("startDate"); start != "" {
		if t, err := time.Parse(time.RFC3339, start); err == nil {
			filter.StartDate = &t
		}
	}
	if end := ctx.QueryParam("endDate"); end != "" {
		if t, err := time.Parse(time.RFC3339, end); err == nil {
			filter.EndDate = &t
		}
	}

	notifications, pagination, unread, err := c.notifications.List(ctx.Request().Context(), userID, page, limit, filter)
	if err != nil {
		return fail(ctx, err)
	}

	return okPaginated(ctx, http.StatusOK, "Notifications retrieved", map[string]interface{}{
		"notifications": notifications,
		"unreadCount":   unread,
	}, pagination)
}

// GetUnreadCount returns the requester's unread notification count
func (c *NotificationController) GetUnreadCount(ctx echo.Context) error {
	userID, err := middleware.ExtractUserObjectID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	count, err := c.notifications.UnreadCount(ctx.Request().Context(), userID)
	if err != nil {
		return fail(ctx, err)
	}

	return ok(ctx, http.StatusOK, "Unread count retrieved", map[string]int64{"unreadCount": count})
}

// MarkAsRead marks the given notification ids read
func (c *NotificationController) MarkAsRead(ctx echo.Context) error {
	userID, err := middleware.ExtractUserObjectID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	var request struct {
		NotificationIDs []string `json:"notificationIds" validate:"required,min=1"`
	}
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request")
	}
	if err := ctx.Validate(&request); err != nil {
		return badRequest(ctx, err.Error())
	}

	ids := make([]primitive.ObjectID, 0, len(request.NotificationIDs))
	for _, idStr := range request.NotificationIDs {
		id, err := primitive.ObjectIDFromHex(idStr)
		if err != nil {
			return badRequest(ctx, "Invalid notification ID: "+idStr)
		}
		ids = append(ids, id)
	}

	count, err := c.notifications.MarkAsRead(ctx.Request().Context(), userID, ids)
	if err != nil {
		return fail(ctx, err)
	}

	return ok(ctx, http.StatusOK, "Notifications marked as read", map[string]int64{"modifiedCount": count})
}

// MarkAllAsRead marks every unread notification read
func (c *NotificationController) MarkAllAsRead(ctx echo.Context) error {
	userID, err := middleware.ExtractUserObjectID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	count, err := c.notifications.MarkAllAsRead(ctx.Request().Context(), userID)
	if err != nil {
		return fail(ctx, err)
	}

	return ok(ctx, http.StatusOK, "All notifications marked as read", map[string]int64{"modifiedCount": count})
}

// DeleteNotification deletes one of the requester's notifications
func (c *NotificationController) DeleteNotification(ctx echo.Context) error {
	userID, err := middleware.ExtractUserObjectID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	notificationID, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid notification ID")
	}

	if err := c.notifications.Delete(ctx.Request().Context(), userID, notificationID); err != nil {
		return fail(ctx, err)
	}

	return ok(ctx, http.StatusOK, "Notification deleted", nil)
}
