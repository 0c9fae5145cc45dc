package main

import (
	"hbs/src/db"
	"hbs/src/middlewares"
	"hbs/src/models"
	"hbs/src/types"
	"hbs/src/utils"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func requestHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("", func(ctx *gin.Context) {
			var body types.CreateRequestRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			guestId := ctx.GetUint("id")
			gdb := db.GetDb()
			var room models.Room
			if err := gdb.
				Where(&models.Room{ID: body.RoomID}).
				First(&room).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"message": "Room not found"})
				return
			}
			request := models.Request{
				GuestID:     guestId,
				RoomID:      body.RoomID,
				Description: body.Description,
				Status:      types.REQUEST_PENDING,
			}
			if err := gdb.Transaction(func(tx *gorm.DB) error {
				return tx.Create(&request).Error
			}); err != nil {
				log.Printf("Error creating request: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"message": "Request created successfully", "data": request})
		}).
		GET("", middlewares.AdminMiddleware, func(ctx *gin.Context) {
			var query types.ListQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			gdb := db.GetDb()
			var total int64
			if err := gdb.Model(&models.Request{}).Count(&total).Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			order := "created_at DESC"
			if query.Sort == "asc" {
				order = "created_at ASC"
			}
			var requests []models.Request
			if err := gdb.
				Model(&models.Request{}).
				Preload("Guest").
				Preload("Room").
				Order(order).
				Offset((query.Page - 1) * query.Limit).
				Limit(query.Limit).
				Find(&requests).
				Error; err != nil {
				log.Printf("Error listing requests: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{
				"requests": requests,
				"total":    utils.PageCount(total, query.Limit),
			}})
		}).
		GET("/user", func(ctx *gin.Context) {
			guestId := ctx.GetUint("id")
			gdb := db.GetDb()
			var requests []models.Request
			if err := gdb.
				Model(&models.Request{}).
				Preload("Room").
				Where(&models.Request{GuestID: guestId}).
				Order("created_at DESC").
				Find(&requests).
				Error; err != nil {
				log.Printf("Error listing requests for user %d: %s\n", guestId, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": requests})
		}).
		PUT("/:id", middlewares.AdminMiddleware, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			var body types.UpdateRequestStatusRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status."})
				return
			}
			gdb := db.GetDb()
			var request models.Request
			if err := gdb.
				Where(&models.Request{ID: params.ID}).
				First(&request).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"message": "Request not found"})
				return
			}
			if err := gdb.Transaction(func(tx *gorm.DB) error {
				return tx.
					Model(&request).
					Update("status", body.Status).
					Error
			}); err != nil {
				log.Printf("Error updating request %d: %s\n", request.ID, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"message": "Request updated successfully", "data": request})
		}).
		DELETE("/:id", middlewares.AdminMiddleware, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			gdb := db.GetDb()
			var request models.Request
			if err := gdb.
				Where(&models.Request{ID: params.ID}).
				First(&request).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"message": "Request not found"})
				return
			}
			if err := gdb.Transaction(func(tx *gorm.DB) error {
				return tx.Delete(&request).Error
			}); err != nil {
				log.Printf("Error deleting request %d: %s\n", request.ID, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"message": "Request deleted successfully"})
		})
	return g
}
