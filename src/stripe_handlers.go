package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hbs/src/db"
	"hbs/src/lib"
	"hbs/src/models"
	"hbs/src/types"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"gorm.io/gorm"
)

func stripeWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	api := apiGroup(g)
	api.POST("/bookings/confirm-payment", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		whsecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		event, err := webhook.ConstructEvent(payload, ctx.GetHeader("Stripe-Signature"), whsecret)
		if err != nil {
			log.Printf("Error verifying webhook signature: %s\n", err.Error())
			ctx.String(http.StatusBadRequest, fmt.Sprintf("Webhook Error: %s", err.Error()))
			return
		}
		log.Printf("[StripeEvent] %s\n", event.Type)
		switch event.Type {
		case "checkout.session.completed":
			var cs stripe.CheckoutSession
			if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
				log.Printf("[Stripe] Error parsing CheckoutSession: %s\n", err.Error())
				break
			}
			id := cs.Metadata["bookingId"]
			if id == "" {
				// Fall back to the mapping cached at checkout creation.
				if rd := lib.GetRedisClient(); rd != nil {
					id = rd.Get(context.Background(), fmt.Sprintf("checkout:%s", cs.ID)).Val()
				}
			}
			atoi, err := strconv.Atoi(id)
			if err != nil {
				log.Printf("Could not read booking id for session %s: %s\n", cs.ID, err.Error())
				break
			}
			bookingId := uint(atoi)
			gdb := db.GetDb()
			var booking models.Booking
			if err := gdb.
				Model(&models.Booking{}).
				Where(&models.Booking{ID: bookingId}).
				First(&booking).
				Error; err != nil {
				// Unmatched bookings are ignored; the gateway still gets its ack.
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					log.Printf("Error retrieving booking %d: %s\n", bookingId, err.Error())
				}
				break
			}
			paymentIntentId := ""
			if cs.PaymentIntent != nil {
				paymentIntentId = cs.PaymentIntent.ID
			}
			err = gdb.Transaction(func(tx *gorm.DB) error {
				payment := models.Payment{
					BookingID:       booking.ID,
					Amount:          booking.TotalPrice,
					PaymentMethod:   types.PAYMENT_ONLINE,
					Status:          types.PAYMENT_COMPLETED,
					PaymentIntentId: paymentIntentId,
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
				log.Printf("Error recording payment for booking %d: %s\n", booking.ID, err.Error())
				break
			}
			go sendBookingConfirmation(booking.ID)
		case "customer.created":
			var cus stripe.Customer
			if err := json.Unmarshal(event.Data.Raw, &cus); err != nil {
				log.Printf("[Stripe] Error parsing Customer: %s\n", err.Error())
				break
			}
			id := cus.Metadata["userId"]
			atoi, err := strconv.Atoi(id)
			if err != nil {
				log.Printf("Could not retrieve user id for customer %s: %s\n", cus.ID, err.Error())
				break
			}
			userId := uint(atoi)
			gdb := db.GetDb()
			if err := gdb.Transaction(func(tx *gorm.DB) error {
				return tx.
					Model(&models.User{}).
					Where("id = ?", userId).
					Updates(&models.User{StripeCustomerId: &cus.ID}).
					Error
			}); err != nil {
				log.Printf("Error updating user %d: %s\n", userId, err.Error())
			}
		}
		ctx.JSON(http.StatusOK, gin.H{"received": true})
	})
	return api
}

func sendBookingConfirmation(bookingId uint) {
	gdb := db.GetDb()
	var booking models.Booking
	if err := gdb.
		Model(&models.Booking{}).
		Preload("Guest").
		Preload("Room").
		Where(&models.Booking{ID: bookingId}).
		First(&booking).
		Error; err != nil {
		log.Printf("Error loading booking %d for confirmation email: %s\n", bookingId, err.Error())
		return
	}
	if booking.Guest == nil || booking.Room == nil {
		return
	}
	body := fmt.Sprintf(
		"Hi %s,\n\nYour payment for %s (%s to %s) has been received. Total: $%.2f.\n\nSee you soon!",
		booking.Guest.Name,
		booking.Room.Name,
		booking.CheckInDate.Format("2006-01-02"),
		booking.CheckOutDate.Format("2006-01-02"),
		booking.TotalPrice,
	)
	input := lib.SendMailInput{
		From:     os.Getenv("MAIL_FROM"),
		FromName: "Reservations",
		To:       []string{booking.Guest.Email},
		Subject:  fmt.Sprintf("Booking #%d confirmed", booking.ID),
		Body:     body,
	}
	if err := lib.SendMail(&input); err != nil {
		log.Printf("Error sending confirmation email for booking %d: %s\n", booking.ID, err.Error())
	}
}
