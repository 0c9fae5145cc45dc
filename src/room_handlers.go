package main

import (
	"fmt"
	"hbs/src/db"
	"hbs/src/models"
	"hbs/src/types"
	"hbs/src/utils"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func saveRoomImage(ctx *gin.Context) (string, error) {
	file, err := ctx.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			return "", nil
		}
		return "", err
	}
	filename := fmt.Sprintf("%d%s", time.Now().UnixMilli(), filepath.Ext(file.Filename))
	if err := ctx.SaveUploadedFile(file, filepath.Join("uploads", filename)); err != nil {
		return "", err
	}
	return "/uploads/" + filename, nil
}

func roomPublicHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("", func(ctx *gin.Context) {
			var query types.RoomQueryFilters
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			sortBy := "created_at"
			if query.SortBy != "" {
				sortBy = query.SortBy
			}
			order := fmt.Sprintf("%s DESC", sortBy)
			if query.Sort == "asc" {
				order = fmt.Sprintf("%s ASC", sortBy)
			}
			gdb := db.GetDb()
			tx := gdb.Model(&models.Room{})
			if query.Search != "" {
				tx = tx.Where("name ILIKE ?", "%"+query.Search+"%")
			}
			if query.MinPrice != nil {
				tx = tx.Where("price >= ?", *query.MinPrice)
			}
			if query.MaxPrice != nil {
				tx = tx.Where("price <= ?", *query.MaxPrice)
			}
			if query.Availability != nil {
				tx = tx.Where("availability = ?", *query.Availability)
			}
			if query.Type != "" && query.Type != "all" {
				tx = tx.Where("type = ?", query.Type)
			}
			var total int64
			if err := tx.Count(&total).Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			var rooms []models.Room
			if err := tx.
				Order(order).
				Offset((query.Page - 1) * query.Limit).
				Limit(query.Limit).
				Find(&rooms).
				Error; err != nil {
				log.Printf("Error listing rooms: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{
				"rooms": rooms,
				"total": utils.PageCount(total, query.Limit),
			}})
		}).
		GET("/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			gdb := db.GetDb()
			var room models.Room
			if err := gdb.
				Where(&models.Room{ID: params.ID}).
				First(&room).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"message": "Room not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": room})
		})
	return g
}

func roomAdminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("", func(ctx *gin.Context) {
			var body types.CreateRoomRequestBody
			if err := ctx.ShouldBind(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": "All fields are required"})
				return
			}
			image, err := saveRoomImage(ctx)
			if err != nil {
				log.Printf("Error saving room image: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			room := models.Room{
				Name:        body.Name,
				Description: body.Description,
				RoomNumber:  body.RoomNumber,
				Type:        body.Type,
				Price:       body.Price,
				Image:       image,
			}
			gdb := db.GetDb()
			if err := gdb.Transaction(func(tx *gorm.DB) error {
				return tx.Create(&room).Error
			}); err != nil {
				log.Printf("Error creating room: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"message": "Room created successfully", "data": room})
		}).
		PUT("/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			var body types.UpdateRoomRequestBody
			if err := ctx.ShouldBind(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			gdb := db.GetDb()
			var room models.Room
			if err := gdb.
				Where(&models.Room{ID: params.ID}).
				First(&room).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"message": "Room not found"})
				return
			}
			if body.Name != nil {
				room.Name = *body.Name
			}
			if body.Description != nil {
				room.Description = *body.Description
			}
			if body.RoomNumber != nil {
				room.RoomNumber = *body.RoomNumber
			}
			if body.Type != nil {
				room.Type = *body.Type
			}
			if body.Price != nil {
				room.Price = *body.Price
			}
			if body.Availability != nil {
				room.Availability = *body.Availability
			}
			if body.HousekeepingStatus != nil {
				room.HousekeepingStatus = *body.HousekeepingStatus
			}
			image, err := saveRoomImage(ctx)
			if err != nil {
				log.Printf("Error saving room image: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			if image != "" {
				room.Image = image
			}
			if err := gdb.Transaction(func(tx *gorm.DB) error {
				return tx.Save(&room).Error
			}); err != nil {
				log.Printf("Error updating room %d: %s\n", room.ID, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"message": "Room updated successfully", "data": room})
		}).
		DELETE("/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			gdb := db.GetDb()
			var room models.Room
			if err := gdb.
				Where(&models.Room{ID: params.ID}).
				First(&room).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"message": "Room not found"})
				return
			}
			if err := gdb.Transaction(func(tx *gorm.DB) error {
				return tx.Delete(&room).Error
			}); err != nil {
				log.Printf("Error deleting room %d: %s\n", room.ID, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			if room.Image != "" {
				name := strings.TrimPrefix(room.Image, "/uploads/")
				if err := os.Remove(filepath.Join("uploads", name)); err != nil {
					log.Printf("Could not remove image for room %d: %s\n", room.ID, err.Error())
				}
			}
			ctx.JSON(http.StatusOK, gin.H{"message": "Room deleted successfully"})
		})
	return g
}
