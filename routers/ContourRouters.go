package routers

import (
	"github.com/GrainArc/ContourMap/views"
	"github.com/gin-gonic/gin"
)

func ContourRouters(r *gin.Engine) {
	contourHandler := views.NewContourHandler()
	contourRouter := r.Group("/contour")
	{
		contourRouter.POST("/Generate", contourHandler.Generate)
		contourRouter.POST("/GenerateFromDEM", contourHandler.GenerateFromDEM)

		// 异步任务接口
		contourRouter.POST("/StartContourTask", contourHandler.StartContourTask)
		contourRouter.GET("/ContourTaskStatus/:taskId", contourHandler.GetContourTaskStatus)
		contourRouter.GET("/ContourTaskWS/:taskId", contourHandler.ContourTaskWebSocket)

		// 历史记录
		contourRouter.GET("/Records", contourHandler.ListRecords)
		contourRouter.GET("/Records/:id/geojson", contourHandler.GetRecordGeoJSON)
	}
}
