package main

import (
	"fmt"
	"hbs/src/config"
	"hbs/src/db"
	"hbs/src/models"
	"hbs/src/types"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func reportHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/occupancy", func(ctx *gin.Context) {
			gdb := db.GetDb()
			var totalRooms int64
			if err := gdb.Model(&models.Room{}).Count(&totalRooms).Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			now := time.Now()
			var occupied int64
			if err := gdb.
				Model(&models.Booking{}).
				Where("status = ? AND check_in_date <= ? AND check_out_date >= ?", types.BOOKING_BOOKED, now, now).
				Count(&occupied).
				Error; err != nil {
				log.Printf("Error computing occupancy: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			rate := 0.0
			if totalRooms > 0 {
				rate = float64(occupied) / float64(totalRooms) * 100
			}
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{
				"totalRooms":    totalRooms,
				"occupiedRooms": occupied,
				"occupancyRate": fmt.Sprintf("%.2f%%", rate),
			}})
		}).
		GET("/revenue", func(ctx *gin.Context) {
			var query types.RevenueQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": "startDate and endDate are required"})
				return
			}
			start, _ := time.Parse(config.DATE_PARSE_FORMAT, query.StartDate)
			end, _ := time.Parse(config.DATE_PARSE_FORMAT, query.EndDate)
			end = end.Add(24*time.Hour - time.Second)
			gdb := db.GetDb()
			var total float64
			if err := gdb.
				Model(&models.Payment{}).
				Select("COALESCE(SUM(amount), 0)").
				Where("status = ? AND payment_date BETWEEN ? AND ?", types.PAYMENT_COMPLETED, start, end).
				Scan(&total).
				Error; err != nil {
				log.Printf("Error computing revenue: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{
				"totalRevenue": fmt.Sprintf("$%v", total),
				"startDate":    query.StartDate,
				"endDate":      query.EndDate,
			}})
		}).
		GET("/satisfaction", func(ctx *gin.Context) {
			gdb := db.GetDb()
			var count int64
			if err := gdb.Model(&models.Feedback{}).Count(&count).Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			avg := 0.0
			if count > 0 {
				if err := gdb.
					Model(&models.Feedback{}).
					Select("AVG(rating)").
					Scan(&avg).
					Error; err != nil {
					log.Printf("Error computing satisfaction: %s\n", err.Error())
					ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
					return
				}
			}
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{
				"averageRating": fmt.Sprintf("%.2f", avg),
				"totalFeedback": count,
			}})
		}).
		GET("/stats", func(ctx *gin.Context) {
			gdb := db.GetDb()
			now := time.Now()
			var totalRooms, occupiedRooms, totalUsers, totalBookings int64
			var totalAmount float64
			if err := gdb.Model(&models.Room{}).Count(&totalRooms).Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			if err := gdb.
				Model(&models.Booking{}).
				Where("status = ? AND check_in_date <= ? AND check_out_date >= ?", types.BOOKING_BOOKED, now, now).
				Count(&occupiedRooms).
				Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			if err := gdb.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			if err := gdb.Model(&models.Booking{}).Count(&totalBookings).Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			if err := gdb.
				Model(&models.Payment{}).
				Select("COALESCE(SUM(amount), 0)").
				Where("status = ?", types.PAYMENT_COMPLETED).
				Scan(&totalAmount).
				Error; err != nil {
				log.Printf("Error computing stats: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{
				"totalRooms":    totalRooms,
				"occupiedRooms": occupiedRooms,
				"totalUsers":    totalUsers,
				"totalBookings": totalBookings,
				"totalAmount":   totalAmount,
			}})
		})
	return g
}
