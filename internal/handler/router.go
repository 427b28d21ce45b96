package handler

import "github.com/gin-gonic/gin"

// Handlers groups every API handler for route registration.
type Handlers struct {
	Courses   *CourseHandler
	Semesters *SemesterHandler
	Colors    *ColorHandler
	Calendar  *CalendarHandler
	Exports   *ExportHandler
	Auth      *AuthHandler
}

// Register mounts the API under api. Everything except the signed export
// download sits behind requireAuth.
func (h Handlers) Register(api *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	api.GET("/exports/download/:token", h.Exports.Download)

	secured := api.Group("")
	secured.Use(requireAuth)

	secured.GET("/me", h.Auth.Me)
	secured.POST("/parse", h.Courses.Parse)
	secured.GET("/colors", h.Colors.Palette)

	courses := secured.Group("/courses")
	courses.GET("", h.Courses.List)
	courses.POST("", h.Courses.Create)
	courses.POST("/import", h.Courses.Import)
	courses.GET("/:id", h.Courses.Get)
	courses.PATCH("/:id", h.Courses.Edit)
	courses.DELETE("/:id", h.Courses.Delete)
	courses.PUT("/:id/color", h.Colors.SetCourseColor)
	courses.POST("/:id/units", h.Courses.AddUnit)
	courses.DELETE("/:id/units/:unitId", h.Courses.RemoveUnit)
	courses.POST("/:id/units/:unitId/evaluations", h.Courses.AddEvaluation)
	courses.DELETE("/:id/units/:unitId/evaluations/:evalId", h.Courses.RemoveEvaluation)
	courses.PUT("/:id/units/:unitId/evaluations/:evalId/grade", h.Courses.UpdateGrade)

	semesters := secured.Group("/semesters")
	semesters.GET("", h.Semesters.List)
	semesters.POST("", h.Semesters.Create)
	semesters.PUT("/:name", h.Semesters.Rename)
	semesters.DELETE("/:name", h.Semesters.Delete)
	semesters.PUT("/:name/color", h.Colors.SetSemesterColor)

	calendar := secured.Group("/calendar")
	calendar.GET("/upcoming", h.Calendar.Upcoming)
	calendar.GET("/overdue", h.Calendar.Overdue)

	exports := secured.Group("/exports")
	exports.POST("", h.Exports.Request)
	exports.GET("/:id", h.Exports.Status)
}
