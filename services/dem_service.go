package services

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"math"
	"strings"

	"github.com/GrainArc/ContourMap/Contour"
	"github.com/GrainArc/ContourMap/config"
	"github.com/GrainArc/ContourMap/models"
	"github.com/GrainArc/ContourMap/tilemath"
	"github.com/chai2010/webp"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 单次采样的格网列数上限，行数按范围纵横比换算
const maxSampleColumns = 256

type DemService struct{}

func NewDemService() *DemService {
	return &DemService{}
}

// GridFromDEM 从DEM瓦片库采样指定经纬度范围的高程格网。
// 返回格网与采样间隔（度）。缺失瓦片或范围外的采样记为无数据。
// zoom<=0时取瓦片库的最大层级。
func (s *DemService) GridFromDEM(minLon, minLat, maxLon, maxLat float64, zoom int64) (*Contour.Grid, float64, error) {
	if minLon >= maxLon || minLat >= maxLat {
		return nil, 0, errors.New("经纬度范围非法")
	}

	DB, err := gorm.Open(sqlite.Open(config.Dem), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("打开DEM瓦片库失败: %w", err)
	}
	defer func() {
		if sqlDB, err := DB.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	if zoom <= 0 {
		DB.Model(&models.Tile{}).Select("MAX(zoom_level)").Scan(&zoom)
		if zoom <= 0 {
			return nil, 0, errors.New("DEM瓦片库为空")
		}
	}

	// 向数据库批量请求覆盖范围内的瓦片
	cover := tilemath.CoverBounds(minLon, minLat, maxLon, maxLat, zoom)
	var conditions []string
	var args []interface{}
	for _, t := range cover {
		conditions = append(conditions, "(tile_column = ? AND tile_row = ? AND zoom_level = ?)")
		args = append(args, t.X, t.Y, t.Z)
	}
	var resultTiles []models.Tile
	if err := DB.Where(strings.Join(conditions, " OR "), args...).Find(&resultTiles).Error; err != nil {
		return nil, 0, fmt.Errorf("查询DEM瓦片失败: %w", err)
	}
	if len(resultTiles) == 0 {
		return nil, 0, errors.New("指定范围内没有DEM瓦片")
	}

	// 瓦片解码缓存，同一瓦片只解码一次
	decoded := make(map[tilemath.Tile]image.Image)
	lookup := func(t tilemath.Tile) (image.Image, bool) {
		if img, ok := decoded[t]; ok {
			return img, img != nil
		}
		for _, item := range resultTiles {
			if item.TileColumn == t.X && item.TileRow == t.Y && item.ZoomLevel == t.Z {
				img, format, err := decodeTileImage(item.TileData)
				if err != nil {
					log.Printf("瓦片解码失败（格式：%s）：%v", format, err)
					decoded[t] = nil
					return nil, false
				}
				decoded[t] = img
				return img, true
			}
		}
		decoded[t] = nil
		return nil, false
	}

	// 按范围纵横比确定采样格网尺寸
	width := maxSampleColumns
	step := (maxLon - minLon) / float64(width-1)
	height := int(math.Round((maxLat-minLat)/step)) + 1
	if height < 2 {
		height = 2
	}

	grid := Contour.NewGrid(width, height)
	for row := 0; row < height; row++ {
		// 第0行对应南边界，保证 行号*step+minLat 的线性映射成立
		lat := minLat + float64(row)*step
		for col := 0; col < width; col++ {
			lon := minLon + float64(col)*step
			x, y := tilemath.LonLatToTile(lon, lat, zoom)
			img, ok := lookup(tilemath.Tile{Z: zoom, X: x, Y: y})
			if !ok {
				continue
			}
			if h, ok := sampleElevation(img, tilemath.Tile{Z: zoom, X: x, Y: y}, lon, lat); ok {
				grid.Data[row][col] = h
			}
		}
	}
	return grid, step, nil
}

// sampleElevation 在瓦片图像上取经纬度对应像素的高程
func sampleElevation(img image.Image, t tilemath.Tile, lon, lat float64) (float64, bool) {
	west, south, east, north := tilemath.TileBounds(t)

	lonRatio := (lon - west) / (east - west)
	latRatio := (north - lat) / (north - south)

	bounds := img.Bounds()
	width := bounds.Max.X - bounds.Min.X
	height := bounds.Max.Y - bounds.Min.Y

	x := bounds.Min.X + int(math.Floor(float64(width)*lonRatio))
	y := bounds.Min.Y + int(math.Floor(float64(height)*latRatio))
	if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
		return 0, false
	}

	r, g, b := getRGB(img.At(x, y))
	return calculateElevation(r, g, b), true
}

// decodeTileImage 自动检测并解码瓦片图像
func decodeTileImage(data []byte) (image.Image, string, error) {
	// 先尝试WebP解码（Mapbox常用）
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, "webp", nil
	}

	// 再尝试PNG等标准格式
	if img, format, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, format, nil
	}

	return nil, "unknown", fmt.Errorf("无法识别的图片格式")
}

// getRGB 统一获取RGB值
func getRGB(c color.Color) (r, g, b uint8) {
	switch color := c.(type) {
	case color.NRGBA:
		return color.R, color.G, color.B
	case color.RGBA:
		return color.R, color.G, color.B
	default:
		r32, g32, b32, _ := c.RGBA()
		return uint8(r32 >> 8), uint8(g32 >> 8), uint8(b32 >> 8)
	}
}

// calculateElevation 高程计算公式（Mapbox官方算法）
// height = (R * 256² + G * 256 + B) * 0.1 - 10000
func calculateElevation(r, g, b uint8) float64 {
	return (float64(r)*65536+float64(g)*256+float64(b))*0.1 - 10000
}
