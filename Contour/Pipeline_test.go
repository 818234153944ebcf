package Contour

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func peakGrid() *Grid {
	return gridFrom([][]float64{
		{0, 0, 0},
		{0, 10, 0},
		{0, 0, 0},
	})
}

func TestGeneratePeakEndToEnd(t *testing.T) {
	opts := Options{
		Interval:         5,
		CellSize:         1,
		BlurPasses:       0,
		SmoothIterations: 2,
	}

	result, err := Generate(peakGrid(), opts)

	require.NoError(t, err)
	assert.Equal(t, 0.0, result.MinZ)
	assert.Equal(t, 10.0, result.MaxZ)

	// 层级0全部角点分类为上方，层级10退化为峰顶单点：
	// 只有层级5产出一条围绕中心峰的闭合等高线
	require.Len(t, result.Features, 1)
	f := result.Features[0]
	assert.Equal(t, 5.0, f.Level)
	assert.Equal(t, len(f.Line), f.PointCount)
	assert.GreaterOrEqual(t, len(f.Line), 2)
	assert.Equal(t, f.Line[0], f.Line[len(f.Line)-1], "峰周等高线应闭合")

	for i, p := range f.Line {
		assert.True(t, p[0] > 0 && p[0] < 2, "点%v越出峰的覆盖范围", p)
		assert.True(t, p[1] > 0 && p[1] < 2, "点%v越出峰的覆盖范围", p)
		if i > 0 {
			assert.NotEqual(t, f.Line[i-1], p, "不允许连续重合点")
		}
	}
	assert.Equal(t, 1, result.TotalLines)
}

func TestGenerateFlatGridIsEmpty(t *testing.T) {
	g := gridFrom([][]float64{
		{0, 0, 0},
		{0, 0, 0},
	})

	result, err := Generate(g, Options{Interval: 5, CellSize: 1})

	require.NoError(t, err)
	assert.Empty(t, result.Features, "全平格网不应产出任何等高线")
	assert.Equal(t, 0, result.TotalLines)
	assert.Equal(t, 0.0, result.MinZ)
	assert.Equal(t, 0.0, result.MaxZ)
}

func TestGenerateEmptyGrid(t *testing.T) {
	_, err := Generate(NewGrid(3, 3), Options{Interval: 5, CellSize: 1})

	assert.ErrorIs(t, err, ErrEmptyGrid)
}

func TestGenerateInvalidConfig(t *testing.T) {
	g := peakGrid()

	tests := []struct {
		name string
		opts Options
	}{
		{"等高距为0", Options{Interval: 0, CellSize: 1}},
		{"等高距为负", Options{Interval: -5, CellSize: 1}},
		{"等高距为NaN", Options{Interval: math.NaN(), CellSize: 1}},
		{"单元尺寸为0", Options{Interval: 5, CellSize: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(g, tt.opts)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	t.Run("格网尺寸不匹配", func(t *testing.T) {
		bad := &Grid{Width: 4, Height: 3, Data: peakGrid().Data}
		_, err := Generate(bad, Options{Interval: 5, CellSize: 1})
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestGenerateWorldMapping(t *testing.T) {
	opts := Options{
		Interval: 5,
		CellSize: 30,
		OriginX:  1000,
		OriginY:  2000,
	}

	result, err := Generate(peakGrid(), opts)

	require.NoError(t, err)
	require.Len(t, result.Features, 1)
	for _, p := range result.Features[0].Line {
		assert.True(t, p[0] > 1000 && p[0] < 1000+2*30)
		assert.True(t, p[1] > 2000 && p[1] < 2000+2*30)
	}
}

func TestGenerateMajorLevels(t *testing.T) {
	g := gridFrom([][]float64{
		{0, 0, 0},
		{0, 20, 0},
		{0, 0, 0},
	})
	opts := Options{Interval: 5, MajorInterval: 10, CellSize: 1}

	result, err := Generate(g, opts)

	require.NoError(t, err)
	require.NotEmpty(t, result.Features)

	var prev float64 = math.Inf(-1)
	for _, f := range result.Features {
		assert.GreaterOrEqual(t, f.Level, prev, "要素必须按层级升序排列")
		prev = f.Level
		assert.Equal(t, math.Mod(f.Level, 10) == 0, f.IsMajor,
			"层级%v的计曲线标记错误", f.Level)
	}
}

func TestGenerateDoesNotMutateInputGrid(t *testing.T) {
	g := peakGrid()
	_, err := Generate(g, Options{Interval: 5, CellSize: 1, BlurPasses: 2})

	require.NoError(t, err)
	assert.Equal(t, 10.0, g.Data[1][1], "流水线不得修改调用方的格网")
	assert.Equal(t, 0.0, g.Data[0][0])
}

func TestGenerateProgressCallback(t *testing.T) {
	var calls int
	var lastDone, lastTotal int
	opts := Options{
		Interval: 5,
		CellSize: 1,
		Progress: func(done, total int, message string) {
			calls++
			lastDone, lastTotal = done, total
		},
	}

	_, err := Generate(peakGrid(), opts)

	require.NoError(t, err)
	assert.Greater(t, calls, 0)
	assert.Equal(t, lastTotal, lastDone, "最后一次回调应报告完成")
}

func TestGenerateMetadata(t *testing.T) {
	opts := Options{Interval: 5, MajorInterval: 25, CellSize: 1}

	result, err := Generate(peakGrid(), opts)

	require.NoError(t, err)
	assert.Equal(t, 5.0, result.Interval)
	assert.Equal(t, 25.0, result.MajorInterval)
	assert.GreaterOrEqual(t, result.ProcessingTimeMs, 0.0)
	assert.Equal(t, len(result.Features), result.TotalLines)
}
