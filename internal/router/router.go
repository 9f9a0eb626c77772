package router

import (
	"github.com/gin-gonic/gin"
	"github.com/user/yamdb/internal/handler"
	"github.com/user/yamdb/internal/middleware"
	"github.com/user/yamdb/internal/permission"
)

// RegisterRoutes 注册所有路由
// authLimit 作用于注册和换取令牌接口
func RegisterRoutes(r *gin.Engine, h *handler.Handler, authLimit gin.HandlerFunc) {
	r.HandleMethodNotAllowed = true
	r.NoMethod(h.NoMethod)
	r.NoRoute(h.NoRoute)

	// 健康检查
	r.GET("/health", h.Health)

	v1 := r.Group("/v1")

	// ==================== 认证 ====================
	auth := v1.Group("/auth")
	auth.Use(authLimit, middleware.Authorize(permission.AllowAny))
	{
		auth.POST("/signup/", h.Signup)
		auth.POST("/resend/", h.ResendCode)
		auth.POST("/token/", h.Token)
	}

	// ==================== 用户 ====================
	users := v1.Group("/users")
	{
		self := middleware.Authorize(permission.IsAuthenticated)
		users.GET("/me/", self, h.Me)
		users.PATCH("/me/", self, h.UpdateMe)
		users.DELETE("/me/", self, h.DeleteMe)

		admin := middleware.Authorize(permission.AdminOnly)
		users.GET("/", admin, h.ListUsers)
		users.POST("/", admin, h.CreateUser)
		users.GET("/:username/", admin, h.GetUser)
		users.PATCH("/:username/", admin, h.UpdateUser)
		users.DELETE("/:username/", admin, h.DeleteUser)
	}

	// ==================== 分类与类型 ====================
	categories := v1.Group("/categories")
	categories.Use(middleware.Authorize(permission.ReadOrAdminOnly))
	{
		categories.GET("/", h.ListCategories)
		categories.POST("/", h.CreateCategory)
		categories.DELETE("/:slug/", h.DeleteCategory)
	}

	genres := v1.Group("/genres")
	genres.Use(middleware.Authorize(permission.ReadOrAdminOnly))
	{
		genres.GET("/", h.ListGenres)
		genres.POST("/", h.CreateGenre)
		genres.DELETE("/:slug/", h.DeleteGenre)
	}

	// ==================== 作品 ====================
	titles := v1.Group("/titles")
	{
		catalog := middleware.Authorize(permission.ReadOrAdminOnly)
		titles.GET("/", catalog, h.ListTitles)
		titles.POST("/", catalog, h.CreateTitle)
		titles.GET("/:title_id/", catalog, h.GetTitle)
		titles.PUT("/:title_id/", catalog, h.UpdateTitle)
		titles.PATCH("/:title_id/", catalog, h.PatchTitle)
		titles.DELETE("/:title_id/", catalog, h.DeleteTitle)
	}

	// ==================== 评论与回复 ====================
	// 对象级权限在服务层校验
	reviews := titles.Group("/:title_id/reviews")
	reviews.Use(middleware.Authorize(permission.AuthorOrAdminOrModeratorOnly))
	{
		reviews.GET("/", h.ListReviews)
		reviews.POST("/", h.CreateReview)
		reviews.GET("/:review_id/", h.GetReview)
		reviews.PUT("/:review_id/", h.UpdateReview)
		reviews.PATCH("/:review_id/", h.PatchReview)
		reviews.DELETE("/:review_id/", h.DeleteReview)

		comments := reviews.Group("/:review_id/comments")
		comments.GET("/", h.ListComments)
		comments.POST("/", h.CreateComment)
		comments.GET("/:comment_id/", h.GetComment)
		comments.PUT("/:comment_id/", h.UpdateComment)
		comments.PATCH("/:comment_id/", h.PatchComment)
		comments.DELETE("/:comment_id/", h.DeleteComment)
	}
}
