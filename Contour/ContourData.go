package Contour

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
)

var (
	// ErrEmptyGrid 格网中不存在任何有效高程采样
	ErrEmptyGrid = errors.New("elevation grid contains no valid sample")
	// ErrInvalidConfig 等高线参数非法（等高距非正、格网尺寸不匹配等）
	ErrInvalidConfig = errors.New("invalid contour configuration")
)

// Grid 表示规则高程格网，Data按[行][列]存储，math.NaN()表示无数据
type Grid struct {
	Width  int
	Height int
	Data   [][]float64
}

// NewGrid 创建指定尺寸的格网，所有单元初始化为无数据
func NewGrid(width, height int) *Grid {
	data := make([][]float64, height)
	for row := range data {
		data[row] = make([]float64, width)
		for col := range data[row] {
			data[row][col] = math.NaN()
		}
	}
	return &Grid{Width: width, Height: height, Data: data}
}

// IsValid 判断指定位置是否为有效高程采样
func (g *Grid) IsValid(row, col int) bool {
	if row < 0 || row >= g.Height || col < 0 || col >= g.Width {
		return false
	}
	v := g.Data[row][col]
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Clone 深拷贝格网，各阶段之间不共享底层数组
func (g *Grid) Clone() *Grid {
	data := make([][]float64, g.Height)
	for row := range data {
		data[row] = make([]float64, g.Width)
		copy(data[row], g.Data[row])
	}
	return &Grid{Width: g.Width, Height: g.Height, Data: data}
}

// Options 等高线生成参数
type Options struct {
	Interval          float64 // 等高距，必须为正
	MajorInterval     float64 // 计曲线间隔，<=0表示不区分计曲线
	CellSize          float64 // 格网单元的世界尺寸
	OriginX           float64 // 格网原点（bounds最小角）
	OriginY           float64
	BlurPasses        int     // 高斯平滑遍数
	SimplifyTolerance float64 // 抽稀容差，<=0时取0.3*CellSize
	SmoothIterations  int     // Chaikin平滑迭代次数
	MergeThreshold    float64 // 端点拼接阈值，<=0时取1.5*CellSize

	// Progress 可选的进度回调，仅用于诊断输出，不影响计算结果
	Progress func(done, total int, message string)
}

// Feature 单条等高线输出
type Feature struct {
	Level      float64        `json:"elevation_level"`
	IsMajor    bool           `json:"is_major"`
	PointCount int            `json:"point_count"`
	Line       orb.LineString `json:"line_coordinates"`
}

// Result 一次等高线生成的全部输出
type Result struct {
	Features         []Feature `json:"features"`
	TotalLines       int       `json:"total_lines"`
	MinZ             float64   `json:"min_z"`
	MaxZ             float64   `json:"max_z"`
	Interval         float64   `json:"interval"`
	MajorInterval    float64   `json:"major_interval"`
	ProcessingTimeMs float64   `json:"processing_time_ms"`
}
