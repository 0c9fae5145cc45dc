package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

// Preferences is a typed key/value map persisted as jsonb. Keys are
// validated on input instead of merging arbitrary fields into the row.
type Preferences map[string]string

func (p Preferences) Value() (driver.Value, error) {
	valueString, err := json.Marshal(p)
	return string(valueString), err
}
func (p *Preferences) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	return nil
}

var knownPreferenceKeys = map[string]bool{
	"roomType":     true,
	"floor":        true,
	"smoking":      true,
	"newsletter":   true,
	"earlyCheckIn": true,
}

func (p Preferences) Validate() error {
	for k := range p {
		if !knownPreferenceKeys[k] {
			return errors.New("unknown preference key: " + k)
		}
	}
	return nil
}

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type BookingStatus string

const (
	BOOKING_PENDING    BookingStatus = "pending"
	BOOKING_BOOKED     BookingStatus = "booked"
	BOOKING_CHECKEDIN  BookingStatus = "checked-in"
	BOOKING_CHECKEDOUT BookingStatus = "checked-out"
	BOOKING_CANCELLED  BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PAYMENT_PENDING   PaymentStatus = "pending"
	PAYMENT_COMPLETED PaymentStatus = "completed"
	PAYMENT_REFUNDED  PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PAYMENT_ONLINE PaymentMethod = "online"
	PAYMENT_CASH   PaymentMethod = "cash"
)

// Cash payments have no gateway intent behind them.
const CASH_PAYMENT_INTENT_ID = "-1"

type RequestStatus string

const (
	REQUEST_PENDING  RequestStatus = "pending"
	REQUEST_ACCEPTED RequestStatus = "accepted"
	REQUEST_REJECTED RequestStatus = "rejected"
)

const (
	ROLE_GUEST = "guest"
	ROLE_ADMIN = "admin"
)

type RegisterRequestBody struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type CreateBookingRequestBody struct {
	RoomID          uint   `json:"roomId" binding:"required"`
	CheckInDate     string `json:"checkInDate" binding:"required,bookingdate"`
	CheckOutDate    string `json:"checkOutDate" binding:"required,bookingdate,gtdate=CheckInDate"`
	SpecialRequests string `json:"specialRequests,omitempty"`
}

type ManualPaymentRequestBody struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

type UpdateBookingStatusRequestBody struct {
	Status string `json:"status" binding:"required,oneof=checked-in checked-out"`
}

type AddFeedbackRequestBody struct {
	Rating  uint8  `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment,omitempty"`
}

type CreateRoomRequestBody struct {
	Name        string  `form:"name" binding:"required"`
	Description string  `form:"description" binding:"required"`
	RoomNumber  string  `form:"roomNumber" binding:"required"`
	Type        string  `form:"type" binding:"required,oneof=single double triple"`
	Price       float64 `form:"price" binding:"required,gt=0"`
}

type UpdateRoomRequestBody struct {
	Name               *string  `form:"name"`
	Description        *string  `form:"description"`
	RoomNumber         *string  `form:"roomNumber"`
	Type               *string  `form:"type" binding:"omitempty,oneof=single double triple"`
	Price              *float64 `form:"price" binding:"omitempty,gt=0"`
	Availability       *bool    `form:"availability"`
	HousekeepingStatus *string  `form:"housekeepingStatus" binding:"omitempty,oneof=clean dirty maintenance"`
}

type UpdateUserRequestBody struct {
	Name        *string     `json:"name"`
	Phone       *string     `json:"phone"`
	Address     *string     `json:"address"`
	State       *string     `json:"state"`
	Country     *string     `json:"country"`
	PostalCode  *string     `json:"postalCode"`
	Preferences Preferences `json:"preferences"`
}

type CreateRequestRequestBody struct {
	RoomID      uint   `json:"roomId" binding:"required"`
	Description string `json:"description" binding:"required"`
}

type UpdateRequestStatusRequestBody struct {
	Status string `json:"status" binding:"required,oneof=pending accepted rejected"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type BookingIDParams struct {
	BookingID uint `uri:"bookingId" binding:"required"`
}

type ListQuery struct {
	Page  int    `form:"page,default=1"`
	Limit int    `form:"limit,default=10"`
	Sort  string `form:"sort,default=desc"`
}

type RoomQueryFilters struct {
	ListQuery
	SortBy       string   `form:"sortBy"`
	Search       string   `form:"search"`
	MinPrice     *float64 `form:"minPrice"`
	MaxPrice     *float64 `form:"maxPrice"`
	Availability *bool    `form:"availability"`
	Type         string   `form:"type,default=all"`
}

type RevenueQuery struct {
	StartDate string `form:"startDate" binding:"required,bookingdate"`
	EndDate   string `form:"endDate" binding:"required,bookingdate"`
}
