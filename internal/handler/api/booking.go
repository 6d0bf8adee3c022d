package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"studio-booking/internal/domain/booking"
	reqdto "studio-booking/internal/handler/dto/request"
	resdto "studio-booking/internal/handler/dto/response"
	"studio-booking/internal/handler/httperr"
	"studio-booking/internal/usecase/commands"
	"studio-booking/internal/usecase/queries"
	"studio-booking/internal/usecase/readmodel"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type BookingHandler struct {
	bookingCommands commands.BookingCommands
	bookingQueries  queries.BookingQueries
	estimateQueries queries.EstimateQueries
	exportQueries   queries.ExportQueries
}

func NewBookingHandler(
	bookingCommands commands.BookingCommands,
	bookingQueries queries.BookingQueries,
	estimateQueries queries.EstimateQueries,
	exportQueries queries.ExportQueries,
) *BookingHandler {
	return &BookingHandler{
		bookingCommands: bookingCommands,
		bookingQueries:  bookingQueries,
		estimateQueries: estimateQueries,
		exportQueries:   exportQueries,
	}
}

// @Summary Create booking
// @Description Create a booking from the public form. Accepts JSON, or multipart/form-data with a "payload" JSON part and an optional "payment_proof" file.
// @Tags bookings
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param Idempotency-Key header string false "Optional idempotency key (UUID)"
// @Success 201 {object} resdto.CreateBookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /bookings [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	idempotencyKey, err := getIdempotencyKey(c)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "INVALID_IDEMPOTENCY_KEY", "Idempotency-Key must be a UUID")
		return
	}

	var req reqdto.CreateBookingRequest
	var proof *commands.UploadedFile

	if isMultipart(c) {
		proof, err = h.bindMultipartCreate(c, &req)
		if err != nil {
			abortBadRequest(c, err, "Invalid request format")
			return
		}
		if proof != nil {
			defer closeUpload(proof)
		}
	} else if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		abortBadRequest(c, bindErr, "Invalid request format")
		return
	}

	result, err := h.bookingCommands.CreateBooking(c.Request.Context(), req.ToInput(), proof, idempotencyKey)
	if err != nil {
		abortCommandError(c, err)
		return
	}

	status := http.StatusCreated
	if result.IsReplayed {
		status = http.StatusOK
	}
	c.JSON(status, resdto.FromCreateResult(result))
}

// @Summary Estimate booking price
// @Description Preview the price breakdown for a service, addons and coupon
// @Tags bookings
// @Accept json
// @Produce json
// @Success 200 {object} queries.EstimateView
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /bookings/estimate [post]
func (h *BookingHandler) Estimate(c *gin.Context) {
	var req reqdto.EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err, "Invalid request format")
		return
	}

	view, err := h.estimateQueries.Estimate(c.Request.Context(), req.ToInput())
	if err != nil {
		abortCommandError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary List bookings
// @Description List bookings, newest first, optionally filtered by status
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param status query string false "Booking status filter"
// @Success 200 {array} readmodel.BookingView
// @Router /admin/bookings [get]
func (h *BookingHandler) ListBookings(c *gin.Context) {
	status, err := getStatusFilter(c)
	if err != nil {
		abortBadRequest(c, err, "Unknown booking status")
		return
	}

	views, err := h.bookingQueries.List(c.Request.Context(), status)
	if err != nil {
		abortCommandError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// @Summary Search bookings
// @Description Search bookings by customer name or WhatsApp number
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param q query string true "Search term"
// @Success 200 {array} readmodel.BookingView
// @Router /admin/bookings/search [get]
func (h *BookingHandler) SearchBookings(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		abortBadRequest(c, errors.New("missing search term"), "Query parameter q is required")
		return
	}

	views, err := h.bookingQueries.Search(c.Request.Context(), q)
	if err != nil {
		abortCommandError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// @Summary Get booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} readmodel.BookingView
// @Failure 404 {object} httperr.Response
// @Router /admin/bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	view, err := h.bookingQueries.GetByID(c.Request.Context(), id)
	if err != nil {
		abortCommandError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary Adjust booking price
// @Description Replace the booking's addon lines, optionally with custom prices, and recompute totals
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} readmodel.BookingView
// @Failure 422 {object} httperr.Response
// @Router /admin/bookings/{id}/price [put]
func (h *BookingHandler) AdjustPrice(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req reqdto.AdjustPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err, "Invalid request format")
		return
	}

	b, err := h.bookingCommands.AdjustPrice(c.Request.Context(), id, req.ToLines())
	if err != nil {
		abortCommandError(c, err)
		return
	}
	c.JSON(http.StatusOK, readmodel.BookingViewFromEntity(b))
}

// @Summary Reschedule booking
// @Description Move the booking to a new date, recording the change in its history
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} readmodel.BookingView
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /admin/bookings/{id}/schedule [put]
func (h *BookingHandler) Reschedule(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req reqdto.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err, "Invalid request format")
		return
	}

	b, err := h.bookingCommands.Reschedule(c.Request.Context(), id, req.NewDate, strings.TrimSpace(req.Reason))
	if err != nil {
		abortCommandError(c, err)
		return
	}
	c.JSON(http.StatusOK, readmodel.BookingViewFromEntity(b))
}

// @Summary Update booking status
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 204
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /admin/bookings/{id}/status [patch]
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req reqdto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err, "Invalid request format")
		return
	}

	status := booking.Status(req.Status)
	if !status.IsValid() {
		abortBadRequest(c, fmt.Errorf("unknown status %q", req.Status), "Unknown booking status")
		return
	}

	if err := h.bookingCommands.UpdateStatus(c.Request.Context(), id, status); err != nil {
		abortCommandError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Add payment
// @Description Record an additional payment, optionally with a proof file (multipart fields: amount, note, payment_proof)
// @Tags bookings
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 204
// @Failure 422 {object} httperr.Response
// @Router /admin/bookings/{id}/payments [post]
func (h *BookingHandler) AddPayment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var input commands.PaymentInput
	var proof *commands.UploadedFile

	if isMultipart(c) {
		var err error
		input, proof, err = h.bindMultipartPayment(c)
		if err != nil {
			abortBadRequest(c, err, "Invalid request format")
			return
		}
		if proof != nil {
			defer closeUpload(proof)
		}
	} else {
		var req reqdto.PaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortBadRequest(c, err, "Invalid request format")
			return
		}
		input = commands.PaymentInput{Amount: req.Amount, Note: strings.TrimSpace(req.Note)}
	}

	if err := h.bookingCommands.AddPayment(c.Request.Context(), id, input, proof); err != nil {
		abortCommandError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Delete booking
// @Description Permanently remove a booking and its payments, addons and history
// @Tags bookings
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 204
// @Failure 404 {object} httperr.Response
// @Router /admin/bookings/{id} [delete]
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.bookingCommands.DeleteBooking(c.Request.Context(), id); err != nil {
		abortCommandError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Export bookings
// @Description Download the booking list as an xlsx spreadsheet
// @Tags bookings
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param status query string false "Booking status filter"
// @Success 200 {file} binary
// @Router /admin/bookings/export.xlsx [get]
func (h *BookingHandler) ExportBookings(c *gin.Context) {
	status, err := getStatusFilter(c)
	if err != nil {
		abortBadRequest(c, err, "Unknown booking status")
		return
	}

	data, err := h.exportQueries.ExportBookingsXLSX(c.Request.Context(), status)
	if err != nil {
		abortCommandError(c, err)
		return
	}

	filename := fmt.Sprintf("bookings-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *BookingHandler) bindMultipartCreate(c *gin.Context, req *reqdto.CreateBookingRequest) (*commands.UploadedFile, error) {
	payload := c.PostForm("payload")
	if payload == "" {
		return nil, errors.New("missing payload field")
	}
	if err := json.Unmarshal([]byte(payload), req); err != nil {
		return nil, err
	}
	if err := binding.Validator.ValidateStruct(*req); err != nil {
		return nil, err
	}
	return openUpload(c, "payment_proof")
}

func (h *BookingHandler) bindMultipartPayment(c *gin.Context) (commands.PaymentInput, *commands.UploadedFile, error) {
	var input commands.PaymentInput
	if raw := c.PostForm("amount"); raw != "" {
		amount, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || amount < 0 {
			return input, nil, errors.New("invalid amount")
		}
		input.Amount = amount
	}
	input.Note = strings.TrimSpace(c.PostForm("note"))

	proof, err := openUpload(c, "payment_proof")
	if err != nil {
		return input, nil, err
	}
	return input, proof, nil
}

// openUpload returns nil when the part is absent; the caller must close the
// returned file via closeUpload.
func openUpload(c *gin.Context, field string) (*commands.UploadedFile, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	return &commands.UploadedFile{
		Filename: fh.Filename,
		MIMEType: fh.Header.Get("Content-Type"),
		Size:     fh.Size,
		Content:  f,
	}, nil
}

func closeUpload(u *commands.UploadedFile) {
	if closer, ok := u.Content.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

func getIdempotencyKey(c *gin.Context) (*uuid.UUID, error) {
	keyStr := c.GetHeader("Idempotency-Key")
	if keyStr == "" {
		return nil, nil
	}

	key, err := uuid.Parse(keyStr)
	if err != nil {
		return nil, errors.New("invalid idempotency key format")
	}
	return &key, nil
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortBadRequest(c, err, "Invalid booking ID format")
		return uuid.Nil, false
	}
	return id, true
}

func getStatusFilter(c *gin.Context) (*booking.Status, error) {
	raw := c.Query("status")
	if raw == "" {
		return nil, nil
	}

	status := booking.Status(raw)
	if !status.IsValid() {
		return nil, fmt.Errorf("unknown status %q", raw)
	}
	return &status, nil
}

