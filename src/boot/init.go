package boot

import (
	"hbs/src/db"
	"hbs/src/lib"
	"hbs/src/models"
	"hbs/src/types"
	"log"
	"time"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.Booking{},
		&models.Payment{},
		&models.Feedback{},
		&models.Request{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// SweepStalePendingBookings cancels bookings that never got a completed
// checkout. A booking stays pending only while its payment session is live;
// anything older than an hour is abandoned.
func SweepStalePendingBookings() {
	gdb := db.GetDb()
	cutoff := time.Now().Add(-1 * time.Hour)
	tx := gdb.
		Model(&models.Booking{}).
		Where("status = ? AND created_at < ?", types.BOOKING_PENDING, cutoff).
		Update("status", types.BOOKING_CANCELLED)
	if tx.Error != nil {
		log.Printf("Error sweeping pending bookings: %s\n", tx.Error.Error())
		return
	}
	if tx.RowsAffected > 0 {
		log.Printf("Cancelled %d stale pending bookings\n", tx.RowsAffected)
	}
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	jobId, err := lib.CreateCronJob(SweepStalePendingBookings, 10*time.Minute)
	if err != nil {
		log.Printf("Error running job: %s\n", err.Error())
		return
	}
	log.Printf("Job ID: %s\n", *jobId)
	sched.Start()
}
