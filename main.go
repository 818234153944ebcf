package main

import (
	"log"

	"github.com/GrainArc/ContourMap/config"
	"github.com/GrainArc/ContourMap/models"
	"github.com/GrainArc/ContourMap/routers"
	"github.com/gin-gonic/gin"
)

func main() {
	models.InitDB()

	r := gin.Default()
	r.Use(Cors())
	routers.ContourRouters(r)

	log.Printf("服务启动于 %s", config.MainRouter)
	if err := r.Run(config.MainRouter); err != nil {
		log.Fatalf("服务启动失败: %v", err)
	}
}

// Cors 跨域中间件
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
