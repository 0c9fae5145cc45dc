package main

import (
	"hbs/src/boot"
	"hbs/src/config"
	"hbs/src/controllers"
	"hbs/src/db"
	"hbs/src/middlewares"
	"hbs/src/models"
	"hbs/src/types"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"regexp"
	"time"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	_ "github.com/joho/godotenv/autoload"
)

const (
	apiPrefix string = "/api"
)

var bookingDateValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := time.Parse(config.DATE_PARSE_FORMAT, date)
	return err == nil
}

var gtfield validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	datetime, err := time.Parse(config.DATE_PARSE_FORMAT, date)
	if err != nil {
		return false
	}
	field := fl.Parent().FieldByName(fl.Param())
	fieldValue := field.Interface().(string)
	fielddatetime, err := time.Parse(config.DATE_PARSE_FORMAT, fieldValue)
	if err != nil {
		return false
	}
	if ok {
		// Equal dates price to zero nights, so require strictly after.
		if !datetime.After(fielddatetime) {
			return false
		}
	}
	return true
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	router.Static("/uploads", "./uploads")
	return router
}

func apiGroup(g *gin.Engine) *gin.RouterGroup {
	api := g.Group(apiPrefix)
	return api
}

func guestAuthRoutes(g *gin.Engine) *gin.RouterGroup {
	api := apiGroup(g)
	guest := api.Group("/auth")
	guest.
		POST("/register", func(ctx *gin.Context) {
			resp, status, err := controllers.AuthRegister(ctx)
			if err != nil {
				log.Printf("[AuthRegister] error: %s\n", err.Error())
				ctx.JSON(status, gin.H{"message": err.Error()})
				return
			}

			ctx.JSON(http.StatusCreated, gin.H{"data": resp})
		}).
		POST("/login", func(ctx *gin.Context) {
			resp, status, err := controllers.AuthLogin(ctx)
			if err != nil {
				log.Printf("[AuthLogin] error: %s\n", err.Error())
				ctx.JSON(status, gin.H{"message": err.Error()})
				return
			}

			ctx.JSON(http.StatusOK, gin.H{"data": resp})
		}).
		GET("/me", middlewares.AuthMiddleware, func(ctx *gin.Context) {
			user, status, err := controllers.AuthMe(ctx)
			if err != nil {
				log.Printf("[AuthMe] error: %s\n", err.Error())
				ctx.JSON(status, gin.H{"message": err.Error()})
				return
			}

			ctx.JSON(http.StatusOK, gin.H{"data": user})
		})
	return guest
}

func publicRoutes(g *gin.Engine) *gin.RouterGroup {
	api := apiGroup(g)
	roomPublicHandlers(api.Group("/rooms"))
	api.
		GET("/bookings/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			gdb := db.GetDb()
			var booking models.Booking
			if err := gdb.
				Model(&models.Booking{}).
				Preload("Room").
				Preload("Payment").
				Where(&models.Booking{ID: params.ID}).
				First(&booking).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"message": "Booking not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		})
	return api
}

func initLogger() {
	cwd, _ := os.Getwd()
	serverLogs := path.Join(cwd, "logs", "server.log")
	apiLogs := path.Join(cwd, "logs", "api.log")
	gin.ForceConsoleColor()

	f, _ := os.Create(apiLogs)
	gin.DefaultWriter = io.MultiWriter(f, os.Stdout)
	log.SetOutput(&lumberjack.Logger{
		Filename:   serverLogs,
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	})
}

func main() {
	apiEnv := os.Getenv("API_ENV")
	if apiEnv == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			panic(err)
		}
	}
	initLogger()

	boot.InitDb()
	boot.InitScheduler()

	router := setupRouter()

	appHost := os.Getenv("APP_HOST")
	if apiEnv == "local" {
		router.Use(cors.Default())
	} else {
		cc := cors.DefaultConfig()
		cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PATCH", "PUT", "DELETE", "HEAD")
		cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization")
		cc.AllowOriginFunc = func(origin string) bool {
			match, _ := regexp.MatchString(appHost, origin)
			return match
		}
		cc.AllowCredentials = true
		cc.AllowAllOrigins = false
		router.Use(cors.New(cc))
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("bookingdate", bookingDateValidatorFunc)
		v.RegisterValidation("gtdate", gtfield)
	}

	publicRoutes(router)

	guestAuthRoutes(router)

	stripeWebhookRoute(router)

	authorized := router.Group(apiPrefix)
	authorized.Use(middlewares.AuthMiddleware)
	{
		bookingHandlers(authorized.Group("/bookings"))
		roomAdminHandlers(authorized.Group("/rooms", middlewares.AdminMiddleware))
		userHandlers(authorized.Group("/users"))
		requestHandlers(authorized.Group("/requests"))
		reportHandlers(authorized.Group("/reports", middlewares.AdminMiddleware))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %s", err)
	}
}
