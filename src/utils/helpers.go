package utils

import (
	"context"
	"errors"
	"fmt"
	"hbs/src/config"
	"hbs/src/db"
	"hbs/src/lib"
	"hbs/src/models"
	"hbs/src/types"
	"log"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

var ErrRoomNotFound = errors.New("room not found")
var ErrUserNotFound = errors.New("user not found")

func GenerateJWT(email string, id uint, role string) (string, error) {
	claims := types.Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(int(id)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(config.TOKEN_TTL_HOURS * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	return token.SignedString(jwtKey)
}

// CalculateTotalPrice keeps the absolute day difference so a reversed range
// still prices positive; reversed ranges are rejected earlier at binding.
func CalculateTotalPrice(pricePerNight float64, checkIn, checkOut time.Time) float64 {
	diff := math.Abs(checkOut.Sub(checkIn).Hours())
	nights := math.Ceil(diff / 24)
	return pricePerNight * nights
}

// PageCount is what list endpoints report as "total": the number of pages,
// never the raw row count, and never less than 1.
func PageCount(total int64, limit int) int64 {
	if total == 0 {
		return 1
	}
	pages := int64(math.Ceil(float64(total) / float64(limit)))
	if pages < 1 {
		return 1
	}
	return pages
}

type BookingCheckout struct {
	BookingID uint   `json:"bookingId"`
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// CreateBookingCheckout runs the two-phase booking flow: persist the booking
// as pending, create the hosted checkout session, then confirm the row with
// the session id. A session failure rolls the pending row back so no orphaned
// booking survives.
func CreateBookingCheckout(userId uint, params *types.CreateBookingRequestBody) (*BookingCheckout, error) {
	checkIn, err := time.Parse(config.DATE_PARSE_FORMAT, params.CheckInDate)
	if err != nil {
		return nil, err
	}
	checkOut, err := time.Parse(config.DATE_PARSE_FORMAT, params.CheckOutDate)
	if err != nil {
		return nil, err
	}

	gdb := db.GetDb()
	var room models.Room
	if err := gdb.
		Where(&models.Room{ID: params.RoomID}).
		First(&room).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	var user models.User
	if err := gdb.
		Where(&models.User{ID: userId}).
		First(&user).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	totalPrice := CalculateTotalPrice(room.Price, checkIn, checkOut)
	booking := models.Booking{
		GuestID:         userId,
		RoomID:          room.ID,
		CheckInDate:     checkIn,
		CheckOutDate:    checkOut,
		TotalPrice:      totalPrice,
		SpecialRequests: params.SpecialRequests,
		Status:          types.BOOKING_PENDING,
	}
	if err := gdb.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&booking).Error
	}); err != nil {
		return nil, err
	}

	customerId, err := ensureStripeCustomer(gdb, &user)
	if err != nil {
		rollbackPendingBooking(gdb, booking.ID)
		return nil, err
	}

	session, err := createCheckoutSession(&room, &user, customerId, booking.ID, totalPrice)
	if err != nil {
		rollbackPendingBooking(gdb, booking.ID)
		return nil, err
	}

	if err := gdb.Transaction(func(tx *gorm.DB) error {
		return tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: booking.ID}).
			Updates(&models.Booking{
				Status:            types.BOOKING_BOOKED,
				CheckoutSessionId: &session.ID,
			}).
			Error
	}); err != nil {
		return nil, err
	}

	if rd := lib.GetRedisClient(); rd != nil {
		key := fmt.Sprintf("checkout:%s", session.ID)
		if _, err := rd.SetEx(context.Background(), key, booking.ID, 10*time.Minute).Result(); err != nil {
			log.Printf("Error caching checkout session [%s]: %s\n", session.ID, err.Error())
		}
	}

	return &BookingCheckout{
		BookingID: booking.ID,
		SessionID: session.ID,
		URL:       session.URL,
	}, nil
}

func ensureStripeCustomer(gdb *gorm.DB, user *models.User) (string, error) {
	if user.StripeCustomerId != nil && *user.StripeCustomerId != "" {
		return *user.StripeCustomerId, nil
	}
	customer, err := lib.CreateStripeCustomer(user.Name, user.Email, user.ID)
	if err != nil {
		return "", err
	}
	if err := gdb.Transaction(func(tx *gorm.DB) error {
		return tx.
			Model(&models.User{}).
			Where("id = ?", user.ID).
			Updates(&models.User{StripeCustomerId: &customer.ID}).
			Error
	}); err != nil {
		log.Printf("Error storing customer id for user %d: %s\n", user.ID, err.Error())
		return "", err
	}
	user.StripeCustomerId = &customer.ID
	return customer.ID, nil
}

func createCheckoutSession(room *models.Room, user *models.User, customerId string, bookingId uint, totalPrice float64) (*stripe.CheckoutSession, error) {
	sc := lib.GetStripeClient()
	frontend := os.Getenv("FRONTEND_URL")
	successUrl := fmt.Sprintf("%s/rooms/%d?session_id={CHECKOUT_SESSION_ID}&type=success", frontend, room.ID)
	cancelUrl := fmt.Sprintf("%s/rooms/%d?session_id={CHECKOUT_SESSION_ID}&type=cancel", frontend, room.ID)
	metadata := map[string]string{
		"bookingId": strconv.Itoa(int(bookingId)),
	}
	createParams := stripe.CheckoutSessionCreateParams{
		SuccessURL:         stripe.String(successUrl),
		CancelURL:          stripe.String(cancelUrl),
		Mode:               stripe.String("payment"),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Customer:           stripe.String(customerId),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency: stripe.String("usd"),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Room Booking: %s", room.Name)),
					},
					UnitAmount: stripe.Int64(int64(totalPrice * 100)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: metadata,
	}
	createParams.SetIdempotencyKey(uuid.NewString())
	session, err := sc.V1CheckoutSessions.Create(context.Background(), &createParams)
	if err != nil {
		log.Printf("CreateBookingCheckout failed: %s\n", err.Error())
		return nil, err
	}
	log.Printf("CheckoutSessionID: %s\n", session.ID)
	return session, nil
}

func rollbackPendingBooking(gdb *gorm.DB, bookingId uint) {
	if err := gdb.Transaction(func(tx *gorm.DB) error {
		return tx.
			Where(&models.Booking{ID: bookingId, Status: types.BOOKING_PENDING}).
			Delete(&models.Booking{}).
			Error
	}); err != nil {
		log.Printf("Could not roll back pending booking %d: %s\n", bookingId, err.Error())
	}
}
