package Contour

import (
	"fmt"
	"math"
	"time"

	"github.com/paulmach/orb"
)

// Generate 执行完整的等高线生成流水线：
// 高斯平滑 -> 层级规划 -> 逐层追踪 -> 坐标变换 -> 线段拼接 -> 抽稀与平滑。
// 流水线为纯函数式的同步批处理：各阶段只读输入并产生新值，
// 调用之间不共享任何状态，失败时不返回部分结果。
func Generate(g *Grid, opts Options) (*Result, error) {
	start := time.Now()

	if err := validate(g, opts); err != nil {
		return nil, err
	}

	smoothed := Smooth(g, opts.BlurPasses)

	minZ, maxZ, levels, err := PlanLevels(smoothed, opts.Interval)
	if err != nil {
		return nil, err
	}

	tolerance := opts.SimplifyTolerance
	if tolerance <= 0 {
		tolerance = 0.3 * opts.CellSize
	}
	mergeThreshold := opts.MergeThreshold
	if mergeThreshold <= 0 {
		mergeThreshold = 1.5 * opts.CellSize
	}

	result := &Result{
		MinZ:          minZ,
		MaxZ:          maxZ,
		Interval:      opts.Interval,
		MajorInterval: opts.MajorInterval,
	}

	for i, level := range levels {
		if opts.Progress != nil {
			opts.Progress(i, len(levels), fmt.Sprintf("tracing level %g", level))
		}

		raw := TraceLevel(smoothed, level)
		world := make([]orb.LineString, 0, len(raw))
		for _, line := range raw {
			world = append(world, toWorld(line, opts))
		}
		merged := MergeLines(world, mergeThreshold)

		for _, line := range merged {
			simplified := Simplify(line, tolerance)
			if len(simplified) < 2 {
				continue
			}
			refined := Chaikin(simplified, opts.SmoothIterations)
			result.Features = append(result.Features, Feature{
				Level:      level,
				IsMajor:    isMajorLevel(level, opts.MajorInterval),
				PointCount: len(refined),
				Line:       refined,
			})
		}
	}

	if opts.Progress != nil {
		opts.Progress(len(levels), len(levels), "done")
	}

	result.TotalLines = len(result.Features)
	result.ProcessingTimeMs = float64(time.Since(start).Microseconds()) / 1000.0
	return result, nil
}

// validate 在追踪开始前校验参数与格网尺寸
func validate(g *Grid, opts Options) error {
	if !(opts.Interval > 0) || math.IsInf(opts.Interval, 0) {
		return fmt.Errorf("%w: interval must be a positive finite number, got %v",
			ErrInvalidConfig, opts.Interval)
	}
	if !(opts.CellSize > 0) || math.IsInf(opts.CellSize, 0) {
		return fmt.Errorf("%w: cell size must be a positive finite number, got %v",
			ErrInvalidConfig, opts.CellSize)
	}
	if len(g.Data) != g.Height {
		return fmt.Errorf("%w: grid has %d rows, expected %d",
			ErrInvalidConfig, len(g.Data), g.Height)
	}
	for row := range g.Data {
		if len(g.Data[row]) != g.Width {
			return fmt.Errorf("%w: grid row %d has %d columns, expected %d",
				ErrInvalidConfig, row, len(g.Data[row]), g.Width)
		}
	}
	return nil
}

// toWorld 将格网分数坐标折线映射到世界坐标 origin + index*cellSize
func toWorld(line orb.LineString, opts Options) orb.LineString {
	out := make(orb.LineString, len(line))
	for i, p := range line {
		out[i] = orb.Point{
			opts.OriginX + p[0]*opts.CellSize,
			opts.OriginY + p[1]*opts.CellSize,
		}
	}
	return out
}

// isMajorLevel 判断层级是否为计曲线（可被计曲线间隔整除）
func isMajorLevel(level, majorInterval float64) bool {
	if majorInterval <= 0 {
		return false
	}
	m := math.Abs(math.Mod(level, majorInterval))
	return m < 1e-9 || majorInterval-m < 1e-9
}
