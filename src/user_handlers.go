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

func userHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("", middlewares.AdminMiddleware, func(ctx *gin.Context) {
			var query types.ListQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			gdb := db.GetDb()
			var total int64
			if err := gdb.Model(&models.User{}).Count(&total).Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			order := "created_at DESC"
			if query.Sort == "asc" {
				order = "created_at ASC"
			}
			var users []models.User
			if err := gdb.
				Model(&models.User{}).
				Order(order).
				Offset((query.Page - 1) * query.Limit).
				Limit(query.Limit).
				Find(&users).
				Error; err != nil {
				log.Printf("Error listing users: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{
				"users": users,
				"total": utils.PageCount(total, query.Limit),
			}})
		}).
		GET("/:id", middlewares.AdminMiddleware, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			gdb := db.GetDb()
			var user models.User
			if err := gdb.
				Where(&models.User{ID: params.ID}).
				First(&user).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": user})
		}).
		PUT("/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			requesterId := ctx.GetUint("id")
			role := ctx.GetString("role")
			if requesterId != params.ID && role != types.ROLE_ADMIN {
				ctx.JSON(http.StatusForbidden, gin.H{"message": "Access denied"})
				return
			}
			var body types.UpdateUserRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			if body.Preferences != nil {
				if err := body.Preferences.Validate(); err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
					return
				}
			}
			gdb := db.GetDb()
			var user models.User
			if err := gdb.
				Where(&models.User{ID: params.ID}).
				First(&user).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
				return
			}
			if body.Name != nil {
				user.Name = *body.Name
			}
			if body.Phone != nil {
				user.Phone = *body.Phone
			}
			if body.Address != nil {
				user.Address = *body.Address
			}
			if body.State != nil {
				user.State = *body.State
			}
			if body.Country != nil {
				user.Country = *body.Country
			}
			if body.PostalCode != nil {
				user.PostalCode = *body.PostalCode
			}
			if body.Preferences != nil {
				user.Preferences = body.Preferences
			}
			if err := gdb.Transaction(func(tx *gorm.DB) error {
				return tx.Save(&user).Error
			}); err != nil {
				log.Printf("Error updating user %d: %s\n", user.ID, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"message": "User updated successfully", "data": user})
		}).
		DELETE("/:id", middlewares.AdminMiddleware, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			gdb := db.GetDb()
			var user models.User
			if err := gdb.
				Where(&models.User{ID: params.ID}).
				First(&user).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
				return
			}
			if user.Role == types.ROLE_ADMIN {
				ctx.JSON(http.StatusForbidden, gin.H{"message": "Admin user cannot be deleted"})
				return
			}
			if err := gdb.Transaction(func(tx *gorm.DB) error {
				return tx.Delete(&user).Error
			}); err != nil {
				log.Printf("Error deleting user %d: %s\n", user.ID, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
		})
	return g
}
