package lead

import "github.com/gin-gonic/gin"

// RegisterRoutes registers lead routes on an authenticated group
func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	leads := r.Group("/leads")
	{
		leads.GET("", handler.ListLeads)
		leads.GET("/suggestions", handler.GetSuggestions)
		leads.GET("/filter-options", handler.GetFilterOptions)
		leads.GET("/stats", handler.GetStats)
		leads.GET("/export", handler.ExportLeads)
		leads.POST("/bulk", handler.BulkOperation)
		leads.GET("/:id", handler.GetLead)
		leads.GET("/:id/activities", handler.ListActivities)
	}
	r.PUT("/demo-access", handler.SetDemoAccess)
}
