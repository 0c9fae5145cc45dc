package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hbs/src/db"
	"hbs/src/lib"
	"hbs/src/models"
	"hbs/src/types"
	"hbs/src/utils"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func AuthRegister(ctx *gin.Context) (*AuthResponse, int, error) {
	var body types.RegisterRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}

	gdb := db.GetDb()
	var count int64
	if err := gdb.
		Model(&models.User{}).
		Where("email = ?", body.Email).
		Count(&count).
		Error; err != nil {
		return nil, http.StatusInternalServerError, err
	}
	if count > 0 {
		return nil, http.StatusBadRequest, errors.New("User already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	user := models.User{
		Name:     body.Name,
		Email:    body.Email,
		Password: string(hashed),
		Role:     types.ROLE_GUEST,
	}
	if err := gdb.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&user).Error
	}); err != nil {
		return nil, http.StatusInternalServerError, err
	}

	token, err := utils.GenerateJWT(user.Email, user.ID, user.Role)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	return &AuthResponse{Token: token, User: &user}, http.StatusOK, nil
}

func AuthLogin(ctx *gin.Context) (*AuthResponse, int, error) {
	var body types.LoginRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}

	gdb := db.GetDb()
	var user models.User
	if err := gdb.
		Where(&models.User{Email: body.Email}).
		First(&user).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, http.StatusBadRequest, errors.New("Invalid credentials")
		}
		return nil, http.StatusInternalServerError, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.Password)); err != nil {
		return nil, http.StatusBadRequest, errors.New("Invalid credentials")
	}

	token, err := utils.GenerateJWT(user.Email, user.ID, user.Role)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}

	if rd := lib.GetRedisClient(); rd != nil {
		if cached, err := json.Marshal(&user); err == nil {
			key := fmt.Sprintf("%d:user", user.ID)
			if err := rd.Set(context.Background(), key, cached, 24*time.Hour).Err(); err != nil {
				log.Printf("[redis] Error updating user cache: %s\n", err.Error())
			}
		}
	}

	return &AuthResponse{Token: token, User: &user}, http.StatusOK, nil
}

func AuthMe(ctx *gin.Context) (*models.User, int, error) {
	userId := ctx.GetUint("id")
	cacheKey := fmt.Sprintf("%d:user", userId)
	if rd := lib.GetRedisClient(); rd != nil {
		if cached := rd.Get(context.Background(), cacheKey).Val(); cached != "" {
			var user models.User
			if err := json.Unmarshal([]byte(cached), &user); err == nil {
				return &user, http.StatusOK, nil
			}
			log.Printf("[redis] Discarding unreadable user cache entry [%s]\n", cacheKey)
		}
	}

	gdb := db.GetDb()
	var user models.User
	if err := gdb.
		Where(&models.User{ID: userId}).
		First(&user).
		Error; err != nil {
		return nil, http.StatusNotFound, err
	}

	if rd := lib.GetRedisClient(); rd != nil {
		if cached, err := json.Marshal(&user); err == nil {
			if err := rd.Set(context.Background(), cacheKey, cached, 24*time.Hour).Err(); err != nil {
				log.Printf("[redis] Error updating user cache: %s\n", err.Error())
			}
		}
	}
	return &user, http.StatusOK, nil
}
