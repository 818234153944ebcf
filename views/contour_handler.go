package views

import (
	"errors"
	"strconv"

	"github.com/GrainArc/ContourMap/Contour"
	"github.com/GrainArc/ContourMap/response"
	"github.com/GrainArc/ContourMap/services"
	"github.com/gin-gonic/gin"
)

type ContourHandler struct {
	service    *services.ContourService
	demService *services.DemService
}

func NewContourHandler() *ContourHandler {
	return &ContourHandler{
		service:    services.NewContourService(),
		demService: services.NewDemService(),
	}
}

// Generate 同步生成等高线
// @Summary 由高程格网生成等高线
// @Accept json
// @Param body body services.GenerateRequest true "格网与生成参数"
func (h *ContourHandler) Generate(c *gin.Context) {
	var req services.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数格式错误: "+err.Error())
		return
	}

	resp, err := h.service.Generate(&req, nil)
	if err != nil {
		h.writeGenerateError(c, err)
		return
	}

	h.service.SaveRecord("", "grid", &req, resp)
	response.Success(c, resp)
}

// GenerateFromDEMRequest 由DEM瓦片库生成等高线的请求
type GenerateFromDEMRequest struct {
	MinLon           float64 `json:"min_lon" binding:"required"`
	MinLat           float64 `json:"min_lat" binding:"required"`
	MaxLon           float64 `json:"max_lon" binding:"required"`
	MaxLat           float64 `json:"max_lat" binding:"required"`
	Zoom             int64   `json:"zoom"` // 0时取瓦片库最大层级
	Interval         float64 `json:"interval"`
	MajorInterval    float64 `json:"major_interval"`
	BlurPasses       int     `json:"blur_passes"`
	SmoothIterations int     `json:"smooth_iterations"`
}

// GenerateFromDEM 从DEM瓦片库采样高程并生成等高线
func (h *ContourHandler) GenerateFromDEM(c *gin.Context) {
	var req GenerateFromDEMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数格式错误: "+err.Error())
		return
	}

	grid, step, err := h.demService.GridFromDEM(req.MinLon, req.MinLat, req.MaxLon, req.MaxLat, req.Zoom)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	genReq := demToGenerateRequest(&req, grid, step)
	resp, err := h.service.Generate(genReq, nil)
	if err != nil {
		h.writeGenerateError(c, err)
		return
	}

	h.service.SaveRecord("", "dem", genReq, resp)
	response.Success(c, resp)
}

// ListRecords 查询历史生成记录
func (h *ContourHandler) ListRecords(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	records, err := h.service.ListRecords(limit)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, records)
}

// GetRecordGeoJSON 下载单条记录的要素集合
func (h *ContourHandler) GetRecordGeoJSON(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "记录ID非法")
		return
	}

	data, err := h.service.GetRecordGeoJSON(uint(id))
	if err != nil {
		response.NotFound(c, "记录不存在")
		return
	}
	c.Data(200, "application/geo+json", data)
}

// writeGenerateError 按错误类别写响应
func (h *ContourHandler) writeGenerateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, Contour.ErrEmptyGrid):
		response.BadRequest(c, "格网中不存在有效高程数据")
	case errors.Is(err, Contour.ErrInvalidConfig):
		response.BadRequest(c, "生成参数非法: "+err.Error())
	default:
		response.InternalError(c, err.Error())
	}
}

// demToGenerateRequest 将DEM采样结果包装为标准生成请求
func demToGenerateRequest(req *GenerateFromDEMRequest, grid *Contour.Grid, step float64) *services.GenerateRequest {
	cells := make([][]*float64, grid.Height)
	for row := range cells {
		cells[row] = make([]*float64, grid.Width)
		for col := range cells[row] {
			if grid.IsValid(row, col) {
				v := grid.Data[row][col]
				cells[row][col] = &v
			}
		}
	}
	return &services.GenerateRequest{
		Grid:             cells,
		Width:            grid.Width,
		Height:           grid.Height,
		Bounds:           services.BoundsParam{MinX: req.MinLon, MinY: req.MinLat},
		CellSize:         step,
		Interval:         req.Interval,
		MajorInterval:    req.MajorInterval,
		BlurPasses:       req.BlurPasses,
		SmoothIterations: req.SmoothIterations,
	}
}
