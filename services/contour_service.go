package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/GrainArc/ContourMap/Contour"
	"github.com/GrainArc/ContourMap/config"
	"github.com/GrainArc/ContourMap/models"
	"github.com/paulmach/orb/geojson"
)

type ContourService struct{}

func NewContourService() *ContourService {
	return &ContourService{}
}

// BoundsParam 格网原点（世界坐标最小角）
type BoundsParam struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
}

// GenerateRequest 等高线生成请求。
// Grid按行优先存储，null表示无数据，尺寸必须为Height行Width列。
type GenerateRequest struct {
	Grid              [][]*float64 `json:"grid" binding:"required"`
	Width             int          `json:"width" binding:"required"`
	Height            int          `json:"height" binding:"required"`
	Bounds            BoundsParam  `json:"bounds"`
	CellSize          float64      `json:"cell_size" binding:"required"`
	Interval          float64      `json:"interval"`
	MajorInterval     float64      `json:"major_interval"`
	BlurPasses        int          `json:"blur_passes"`
	SimplifyTolerance float64      `json:"simplify_tolerance"`
	SmoothIterations  int          `json:"smooth_iterations"` // 0时取默认值2
}

// Metadata 一次生成的运行元数据
type Metadata struct {
	TotalLines       int        `json:"total_lines"`
	ElevationRange   [2]float64 `json:"elevation_range"`
	Interval         float64    `json:"interval"`
	MajorInterval    float64    `json:"major_interval"`
	ProcessingTimeMs float64    `json:"processing_time_ms"`
}

// GenerateResponse 等高线生成结果：要素集合 + 元数据
type GenerateResponse struct {
	FeatureCollection *geojson.FeatureCollection `json:"feature_collection"`
	Metadata          Metadata                   `json:"metadata"`
}

// Generate 执行等高线生成并转换为geojson要素集合。
// progress为可选的进度回调，透传给流水线
func (s *ContourService) Generate(req *GenerateRequest, progress func(done, total int, message string)) (*GenerateResponse, error) {
	grid, err := s.buildGrid(req)
	if err != nil {
		return nil, err
	}

	opts := Contour.Options{
		Interval:          req.Interval,
		MajorInterval:     req.MajorInterval,
		CellSize:          req.CellSize,
		OriginX:           req.Bounds.MinX,
		OriginY:           req.Bounds.MinY,
		BlurPasses:        req.BlurPasses,
		SimplifyTolerance: req.SimplifyTolerance,
		SmoothIterations:  req.SmoothIterations,
		Progress:          progress,
	}
	// 请求未给出的参数回落到配置默认值
	if opts.Interval == 0 {
		opts.Interval = config.MainConfig.Contour.Interval
	}
	if opts.MajorInterval == 0 {
		opts.MajorInterval = config.MainConfig.Contour.MajorInterval
	}
	if opts.SmoothIterations == 0 {
		opts.SmoothIterations = config.MainConfig.Contour.SmoothIterations
	}

	result, err := Contour.Generate(grid, opts)
	if err != nil {
		return nil, err
	}

	resp := &GenerateResponse{
		FeatureCollection: toFeatureCollection(result),
		Metadata: Metadata{
			TotalLines:       result.TotalLines,
			ElevationRange:   [2]float64{result.MinZ, result.MaxZ},
			Interval:         result.Interval,
			MajorInterval:    result.MajorInterval,
			ProcessingTimeMs: result.ProcessingTimeMs,
		},
	}
	return resp, nil
}

// buildGrid 将请求中的格网数据转换为内部格网，null转为NaN
func (s *ContourService) buildGrid(req *GenerateRequest) (*Contour.Grid, error) {
	if len(req.Grid) != req.Height {
		return nil, fmt.Errorf("%w: 格网行数与height不一致", Contour.ErrInvalidConfig)
	}
	grid := Contour.NewGrid(req.Width, req.Height)
	for row, line := range req.Grid {
		if len(line) != req.Width {
			return nil, fmt.Errorf("%w: 格网列数与width不一致", Contour.ErrInvalidConfig)
		}
		for col, v := range line {
			if v != nil {
				grid.Data[row][col] = *v
			} else {
				grid.Data[row][col] = math.NaN()
			}
		}
	}
	return grid, nil
}

// toFeatureCollection 将流水线输出转换为geojson要素集合
func toFeatureCollection(result *Contour.Result) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range result.Features {
		feature := geojson.NewFeature(f.Line)
		feature.Properties = map[string]interface{}{
			"elevation":   f.Level,
			"is_major":    f.IsMajor,
			"point_count": f.PointCount,
		}
		fc.Append(feature)
	}
	return fc
}

// SaveRecord 将一次生成结果写入主数据库，失败仅记录日志不中断请求
func (s *ContourService) SaveRecord(taskID, source string, req *GenerateRequest, resp *GenerateResponse) {
	db := models.GetDB()
	if db == nil {
		return
	}

	geoBytes, err := json.Marshal(resp.FeatureCollection)
	if err != nil {
		log.Printf("等高线结果序列化失败: %v", err)
		return
	}

	record := models.ContourRecord{
		TaskID:           taskID,
		Source:           source,
		GridWidth:        req.Width,
		GridHeight:       req.Height,
		Interval:         resp.Metadata.Interval,
		MajorInterval:    resp.Metadata.MajorInterval,
		MinZ:             resp.Metadata.ElevationRange[0],
		MaxZ:             resp.Metadata.ElevationRange[1],
		TotalLines:       resp.Metadata.TotalLines,
		ProcessingTimeMs: resp.Metadata.ProcessingTimeMs,
		GeoJSON:          geoBytes,
	}
	if err := db.Create(&record).Error; err != nil {
		log.Printf("等高线记录保存失败: %v", err)
	}
}

// ListRecords 查询历史生成记录（不含geojson数据）
func (s *ContourService) ListRecords(limit int) ([]models.ContourRecord, error) {
	db := models.GetDB()
	if db == nil {
		return nil, errors.New("数据库未初始化")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var records []models.ContourRecord
	err := db.Omit("geo_json").Order("id DESC").Limit(limit).Find(&records).Error
	return records, err
}

// GetRecordGeoJSON 取单条记录的要素集合
func (s *ContourService) GetRecordGeoJSON(id uint) ([]byte, error) {
	db := models.GetDB()
	if db == nil {
		return nil, errors.New("数据库未初始化")
	}

	var record models.ContourRecord
	if err := db.First(&record, id).Error; err != nil {
		return nil, err
	}
	return record.GeoJSON, nil
}
