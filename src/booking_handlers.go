package main

import (
	"errors"
	"hbs/src/db"
	"hbs/src/lib"
	"hbs/src/middlewares"
	"hbs/src/models"
	"hbs/src/types"
	"hbs/src/utils"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("", func(ctx *gin.Context) {
			var body types.CreateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			checkout, err := utils.CreateBookingCheckout(userId, &body)
			if err != nil {
				switch {
				case errors.Is(err, utils.ErrRoomNotFound):
					ctx.JSON(http.StatusNotFound, gin.H{"message": "Room not found"})
				case errors.Is(err, utils.ErrUserNotFound):
					ctx.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
				default:
					log.Printf("Error creating booking: %s\n", err.Error())
					ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				}
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": checkout})
		}).
		GET("/all", middlewares.AdminMiddleware, func(ctx *gin.Context) {
			var query types.ListQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			order := "created_at DESC"
			if query.Sort == "asc" {
				order = "created_at ASC"
			}
			gdb := db.GetDb()
			var bookings []models.Booking
			var total int64
			if err := gdb.
				Model(&models.Booking{}).
				Count(&total).
				Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			if err := gdb.
				Model(&models.Booking{}).
				Preload("Room").
				Preload("Payment").
				Preload("Guest").
				Preload("Feedback").
				Order(order).
				Offset((query.Page - 1) * query.Limit).
				Limit(query.Limit).
				Find(&bookings).
				Error; err != nil {
				log.Printf("Error listing bookings: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{
				"bookings": bookings,
				"total":    utils.PageCount(total, query.Limit),
			}})
		}).
		GET("/user", func(ctx *gin.Context) {
			var query types.ListQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			order := "created_at DESC"
			if query.Sort == "asc" {
				order = "created_at ASC"
			}
			gdb := db.GetDb()
			var bookings []models.Booking
			var total int64
			if err := gdb.
				Model(&models.Booking{}).
				Where(&models.Booking{GuestID: userId}).
				Count(&total).
				Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			if err := gdb.
				Model(&models.Booking{}).
				Where(&models.Booking{GuestID: userId}).
				Preload("Payment").
				Preload("Room").
				Order(order).
				Offset((query.Page - 1) * query.Limit).
				Limit(query.Limit).
				Find(&bookings).
				Error; err != nil {
				log.Printf("Error listing user bookings: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{
				"bookings": bookings,
				"total":    utils.PageCount(total, query.Limit),
			}})
		}).
		POST("/manual-payment/:bookingId", middlewares.AdminMiddleware, func(ctx *gin.Context) {
			var params types.BookingIDParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			var body types.ManualPaymentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			gdb := db.GetDb()
			var booking models.Booking
			if err := gdb.
				Model(&models.Booking{}).
				Preload("Payment").
				Where(&models.Booking{ID: params.BookingID}).
				First(&booking).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"message": "Booking not found"})
				return
			}
			if booking.Payment != nil && booking.Payment.Status == types.PAYMENT_COMPLETED {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": "Payment already confirmed"})
				return
			}
			err := gdb.Transaction(func(tx *gorm.DB) error {
				payment := models.Payment{
					BookingID:       booking.ID,
					Amount:          body.Amount,
					PaymentIntentId: types.CASH_PAYMENT_INTENT_ID,
					PaymentMethod:   types.PAYMENT_CASH,
					Status:          types.PAYMENT_COMPLETED,
				}
				if err := tx.Create(&payment).Error; err != nil {
					return err
				}
				updates := models.Booking{PaymentID: &payment.ID}
				if booking.Status == types.BOOKING_PENDING {
					updates.Status = types.BOOKING_BOOKED
				}
				return tx.
					Model(&models.Booking{}).
					Where(&models.Booking{ID: booking.ID}).
					Updates(&updates).
					Error
			})
			if err != nil {
				log.Printf("Error confirming manual payment: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"message": "Payment confirmed manually"})
		}).
		POST("/cancel/:id", middlewares.AdminMiddleware, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			gdb := db.GetDb()
			var booking models.Booking
			if err := gdb.
				Model(&models.Booking{}).
				Preload("Payment").
				Where(&models.Booking{ID: params.ID}).
				First(&booking).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"message": "Booking not found"})
				return
			}
			if err := gdb.Transaction(func(tx *gorm.DB) error {
				return tx.
					Model(&models.Booking{}).
					Where(&models.Booking{ID: booking.ID}).
					Update("status", types.BOOKING_CANCELLED).
					Error
			}); err != nil {
				log.Printf("Error cancelling booking %d: %s\n", booking.ID, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}

			if booking.Payment == nil || booking.Payment.Status != types.PAYMENT_COMPLETED {
				ctx.JSON(http.StatusOK, gin.H{"message": "Booking cancelled successfully."})
				return
			}

			payment := booking.Payment
			if payment.PaymentMethod == types.PAYMENT_ONLINE {
				if _, err := lib.RefundPaymentIntent(payment.PaymentIntentId); err != nil {
					log.Printf("Error refunding payment %d: %s\n", payment.ID, err.Error())
					ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
					return
				}
			}
			if err := gdb.Transaction(func(tx *gorm.DB) error {
				return tx.
					Model(&models.Payment{}).
					Where(&models.Payment{ID: payment.ID}).
					Update("status", types.PAYMENT_REFUNDED).
					Error
			}); err != nil {
				log.Printf("Error marking payment %d refunded: %s\n", payment.ID, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			if payment.PaymentMethod == types.PAYMENT_CASH {
				ctx.JSON(http.StatusOK, gin.H{"message": "Booking cancelled. Please refund cash manually."})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"message": "Booking cancelled and payment refunded."})
		}).
		PATCH("/:id/status", middlewares.AdminMiddleware, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			var body types.UpdateBookingStatusRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status."})
				return
			}
			gdb := db.GetDb()
			var booking models.Booking
			if err := gdb.
				Model(&models.Booking{}).
				Preload("Payment").
				Where(&models.Booking{ID: params.ID}).
				First(&booking).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"message": "Booking not found"})
				return
			}
			if booking.Payment == nil || booking.Payment.Status != types.PAYMENT_COMPLETED {
				ctx.JSON(http.StatusNotFound, gin.H{"message": "Payment was not completed."})
				return
			}
			if err := gdb.Transaction(func(tx *gorm.DB) error {
				return tx.
					Model(&models.Booking{}).
					Where(&models.Booking{ID: booking.ID}).
					Update("status", types.BookingStatus(body.Status)).
					Error
			}); err != nil {
				log.Printf("Error updating booking status: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"message": "Booking status updated successfully."})
		}).
		POST("/feedback/:bookingId", func(ctx *gin.Context) {
			var params types.BookingIDParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			var body types.AddFeedbackRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			gdb := db.GetDb()
			var booking models.Booking
			if err := gdb.
				Model(&models.Booking{}).
				Preload("Payment").
				Where(&models.Booking{ID: params.BookingID}).
				First(&booking).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"message": "Booking not found"})
				return
			}
			if booking.Payment == nil || booking.Payment.Status != types.PAYMENT_COMPLETED {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": "Payment not completed"})
				return
			}
			if err := gdb.Transaction(func(tx *gorm.DB) error {
				feedback := models.Feedback{
					BookingID: booking.ID,
					Rating:    body.Rating,
					Comment:   body.Comment,
				}
				if err := tx.Create(&feedback).Error; err != nil {
					return err
				}
				return tx.
					Model(&models.Booking{}).
					Where(&models.Booking{ID: booking.ID}).
					Updates(&models.Booking{FeedbackID: &feedback.ID}).
					Error
			}); err != nil {
				log.Printf("Error adding feedback: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"message": "Feedback added successfully"})
		}).
		GET("/payment/:id", middlewares.AdminMiddleware, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			gdb := db.GetDb()
			var payment models.Payment
			if err := gdb.
				Where(&models.Payment{ID: params.ID}).
				First(&payment).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"message": "Payment not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": payment})
		})
	return g
}
