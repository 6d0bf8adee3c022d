package api

import (
	"errors"
	"net/http"

	"studio-booking/internal/handler/httperr"
	"studio-booking/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type errorMapping struct {
	status  int
	code    string
	message string
}

// commandErrorMap translates use case failures into the stable error codes
// clients switch on.
var commandErrorMap = []struct {
	err     error
	mapping errorMapping
}{
	{commands.ErrServiceNotFound, errorMapping{http.StatusNotFound, "INVALID_SERVICE", "Service not found"}},
	{commands.ErrServiceInactive, errorMapping{http.StatusUnprocessableEntity, "SERVICE_INACTIVE", "Service is not active"}},
	{commands.ErrAddonNotFound, errorMapping{http.StatusNotFound, "ADDON_NOT_FOUND", "Addon not found"}},
	{commands.ErrAddonInactive, errorMapping{http.StatusUnprocessableEntity, "ADDON_INACTIVE", "Addon is not active"}},
	{commands.ErrAddonNotApplicable, errorMapping{http.StatusUnprocessableEntity, "ADDON_NOT_APPLICABLE", "Addon does not apply to this category"}},
	{commands.ErrMinNoticeViolated, errorMapping{http.StatusUnprocessableEntity, "MIN_BOOKING_NOTICE_VIOLATED", "Booking date violates minimum notice"}},
	{commands.ErrMaxAheadViolated, errorMapping{http.StatusUnprocessableEntity, "MAX_BOOKING_AHEAD_VIOLATED", "Booking date exceeds maximum ahead window"}},
	{commands.ErrSlotUnavailable, errorMapping{http.StatusConflict, "SLOT_UNAVAILABLE", "Requested slot is already booked"}},
	{commands.ErrCouponNotFound, errorMapping{http.StatusUnprocessableEntity, "COUPON_NOT_FOUND", "Coupon not found"}},
	{commands.ErrCouponRejected, errorMapping{http.StatusUnprocessableEntity, "COUPON_REJECTED", "Coupon cannot be applied"}},
	{commands.ErrFileUploadFailed, errorMapping{http.StatusBadRequest, "FILE_UPLOAD_FAILED", "Payment proof upload failed"}},
	{commands.ErrBookingNotFound, errorMapping{http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found"}},
	{commands.ErrInvalidStatusChange, errorMapping{http.StatusUnprocessableEntity, "INVALID_STATUS_CHANGE", "Status change is not allowed"}},
	{commands.ErrDomainValidation, errorMapping{http.StatusUnprocessableEntity, "VALIDATION_FAILED", "Request failed validation"}},
	{commands.ErrDuplicateRequest, errorMapping{http.StatusConflict, "IDEMPOTENCY_KEY_REUSED", "Idempotency key reused with a different request"}},
	{commands.ErrIdempotencyInProgress, errorMapping{http.StatusConflict, "REQUEST_IN_PROGRESS", "Request with this idempotency key is being processed"}},
	{commands.ErrInvalidSettings, errorMapping{http.StatusUnprocessableEntity, "INVALID_SETTINGS", "Settings failed validation"}},
	{commands.ErrInvalidCredentials, errorMapping{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password"}},
	{commands.ErrUserInactive, errorMapping{http.StatusForbidden, "USER_INACTIVE", "User account is deactivated"}},
}

func abortCommandError(c *gin.Context, err error) {
	for _, entry := range commandErrorMap {
		if errors.Is(err, entry.err) {
			httperr.AbortWithError(c, entry.mapping.status, err, entry.mapping.code, entry.mapping.message)
			return
		}
	}
	httperr.AbortWithError(c, http.StatusInternalServerError, err, "INTERNAL_ERROR", "Internal server error")
}

func abortBadRequest(c *gin.Context, err error, msg string) {
	httperr.AbortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", msg)
}
