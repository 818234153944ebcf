package tilemath

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	EarthRadius = 6378137.0
	OriginShift = 2 * math.Pi * EarthRadius / 2.0
	tileSize    = 256
)

// Tile 瓦片坐标（Web墨卡托切片方案）
type Tile struct {
	Z int64
	X int64
	Y int64
}

// LonLatToTile 计算经纬度所在的瓦片坐标
func LonLatToTile(lon, lat float64, zoom int64) (x, y int64) {
	// 先转换为Web墨卡托坐标
	mercX := lon * OriginShift / 180.0
	mercY := math.Log(math.Tan((90+lat)*math.Pi/360.0)) * OriginShift / math.Pi

	// 计算瓦片坐标
	resolution := (2 * OriginShift) / math.Exp2(float64(zoom))
	x = int64(math.Floor((mercX + OriginShift) / resolution))
	y = int64(math.Floor((OriginShift - mercY) / resolution))

	// 处理边界情况
	maxTile := int64(math.Exp2(float64(zoom))) - 1
	if x < 0 {
		x = 0
	} else if x > maxTile {
		x = maxTile
	}
	if y < 0 {
		y = 0
	} else if y > maxTile {
		y = maxTile
	}

	return
}

// pixelToLonLat 将全球像素坐标转换为经纬度
func pixelToLonLat(px, py int64, z int64) (lon, lat float64) {
	mapSize := int64(tileSize) * int64(math.Exp2(float64(z)))
	lon = float64(px)/float64(mapSize)*360.0 - 180.0
	latRad := math.Atan(math.Sinh(math.Pi * (1 - 2*float64(py)/float64(mapSize))))
	lat = latRad * 180.0 / math.Pi
	return
}

// TileBounds 返回瓦片的经纬度范围（西、南、东、北）
func TileBounds(t Tile) (west, south, east, north float64) {
	west, north = pixelToLonLat(t.X*tileSize, t.Y*tileSize, t.Z)
	east, south = pixelToLonLat((t.X+1)*tileSize, (t.Y+1)*tileSize, t.Z)
	return
}

// CoverBounds 计算覆盖经纬度范围所需的全部瓦片
func CoverBounds(minLon, minLat, maxLon, maxLat float64, zoom int64) []Tile {
	x0, y0 := LonLatToTile(minLon, maxLat, zoom) // 左上
	x1, y1 := LonLatToTile(maxLon, minLat, zoom) // 右下

	var tiles []Tile
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			tiles = append(tiles, Tile{Z: zoom, X: x, Y: y})
		}
	}
	return tiles
}

// CoverGeometry 计算覆盖几何对象外包框所需的全部瓦片
func CoverGeometry(geo orb.Geometry, zoom int64) []Tile {
	b := geo.Bound()
	return CoverBounds(b.Min[0], b.Min[1], b.Max[0], b.Max[1], zoom)
}
