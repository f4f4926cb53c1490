package router

import (
	"net/http"
	"strings"

	"github.com/decodeit/internal/handler"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
)

// Options 描述路由需要的运行参数。
type Options struct {
	SessionSecret string
	UploadDir     string
	UploadURLPath string
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, opts Options) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件，小游戏的猜测次数保存在签名 cookie 中
	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   2 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("decodeit_session", store))

	// 上传的善行照片
	if dir := strings.TrimSpace(opts.UploadDir); dir != "" {
		urlPath := "/" + strings.Trim(strings.TrimSpace(opts.UploadURLPath), "/")
		if urlPath == "/" {
			urlPath = "/static/uploads"
		}
		r.Static(urlPath, dir)
	}

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/health", api.Health)
		apiGroup.GET("/openapi.json", api.OpenAPI)
		apiGroup.GET("/zodiac", api.Zodiac)
		apiGroup.POST("/contact", api.Contact)

		auth := apiGroup.Group("/auth")
		{
			auth.POST("/register", api.Register)
			auth.POST("/login", api.Login)
		}

		data := apiGroup.Group("/data")
		{
			data.GET("/leaderboard", api.Leaderboard)
			data.GET("/community", api.Community)
			data.GET("/userdata", api.AuthRequired(), api.GetUserData)
			data.PUT("/userdata", api.AuthRequired(), api.PutUserData)
		}

		likes := apiGroup.Group("/likes")
		{
			likes.POST("/counts", api.LikeCounts)
			likes.POST("/toggle", api.AuthRequired(), api.ToggleLike)
			likes.POST("/status", api.AuthRequired(), api.LikeStatus)
		}

		puzzles := apiGroup.Group("/puzzles")
		puzzles.Use(api.OptionalAuth())
		{
			puzzles.GET("/bottle/today", api.BottleToday)
			puzzles.POST("/bottle/guess", api.BottleGuess)
			puzzles.GET("/numeric/today", api.NumericToday)
			puzzles.POST("/numeric/guess", api.NumericGuess)
		}

		// 需要登录的路由
		secured := apiGroup.Group("")
		secured.Use(api.AuthRequired())
		{
			secured.GET("/user/profile", api.GetProfile)
			secured.PUT("/user/profile", api.UpdateProfile)
			secured.PUT("/user/password", api.ChangePassword)
			secured.DELETE("/user/account", api.DeleteAccount)

			secured.GET("/deed/today", api.TodayDeed)
			secured.POST("/deed/solve", api.SolveDeed)
			secured.POST("/uploads/image", api.UploadImage)

			secured.GET("/games/:game/stats", api.GameStats)
		}
	}

	return r
}

// WithCORS 为引擎加上跨域处理；origins 为空时允许任意来源但不携带凭据。
func WithCORS(h http.Handler, origins []string) http.Handler {
	allowed := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			allowed = append(allowed, o)
		}
	}
	opts := cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	}
	if len(allowed) > 0 {
		opts.AllowedOrigins = allowed
		opts.AllowCredentials = true
	}
	return cors.Handler(opts)(h)
}
