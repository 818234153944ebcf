package Contour

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceUniformGridHasNoLines(t *testing.T) {
	g := gridFrom([][]float64{
		{7, 7, 7},
		{7, 7, 7},
		{7, 7, 7},
	})

	assert.Empty(t, TraceLevel(g, 3), "层级低于所有采样时无穿越")
	assert.Empty(t, TraceLevel(g, 9), "层级高于所有采样时无穿越")
	// v==k的退化情形：所有角点按>=v分类为上方，情形编码1111，
	// 不存在穿越边，输出为空
	assert.Empty(t, TraceLevel(g, 7))
}

func TestTraceVerticalRamp(t *testing.T) {
	g := gridFrom([][]float64{
		{0, 10},
		{0, 10},
	})

	lines := TraceLevel(g, 5)

	require.Len(t, lines, 1)
	assert.Equal(t, orb.LineString{{0.5, 0}, {0.5, 1}}, lines[0])
}

func TestTracePeakClosedLoop(t *testing.T) {
	g := gridFrom([][]float64{
		{0, 0, 0},
		{0, 10, 0},
		{0, 0, 0},
	})

	lines := TraceLevel(g, 5)

	require.Len(t, lines, 1, "中心峰在层级5应只产生一条等高线")
	line := lines[0]
	require.Len(t, line, 5)
	assert.Equal(t, line[0], line[len(line)-1], "环线应闭合")

	// 围绕中心点(1,1)的菱形，四个穿越点都在共享边中点
	want := map[orb.Point]bool{
		{1, 0.5}: true, {0.5, 1}: true, {1, 1.5}: true, {1.5, 1}: true,
	}
	for _, p := range line[:4] {
		assert.True(t, want[p], "意外的穿越点 %v", p)
	}
}

func TestTracePeakLevelAtApexIsDropped(t *testing.T) {
	g := gridFrom([][]float64{
		{0, 0, 0},
		{0, 10, 0},
		{0, 0, 0},
	})

	// 层级等于峰值时所有穿越点都退化到峰顶采样点本身，
	// 连续重合点不被追加，折线不足2个点而被丢弃
	assert.Empty(t, TraceLevel(g, 10))
}

func TestTraceSaddleCenterAboveRule(t *testing.T) {
	g := gridFrom([][]float64{
		{0, 10},
		{10, 0},
	})

	// 中心值(0+10+10+0)/4 = 5 >= 5，取首个候选出边
	lines := TraceLevel(g, 5)

	require.Len(t, lines, 3)
	assert.Equal(t, orb.LineString{{0.5, 0}, {1, 0.5}}, lines[0])
	assert.Equal(t, orb.LineString{{0.5, 1}, {1, 0.5}}, lines[1])
	assert.Equal(t, orb.LineString{{0, 0.5}, {0.5, 0}}, lines[2])
}

func TestTraceSaddleCenterBelowRule(t *testing.T) {
	g := gridFrom([][]float64{
		{0, 8},
		{8, 0},
	})

	// 中心值4 < 5，取末个候选出边：入边为上边时走左边
	lines := TraceLevel(g, 5)

	require.NotEmpty(t, lines)
	assert.Equal(t, orb.LineString{{0.625, 0}, {0, 0.625}}, lines[0])
}

func TestTraceSkipsCellsWithNoData(t *testing.T) {
	g := gridFrom([][]float64{
		{0, 0, 0},
		{0, 10, math.NaN()},
		{0, 0, 0},
	})

	lines := TraceLevel(g, 5)

	require.NotEmpty(t, lines, "有效单元格仍应产出等高线片段")
	for _, line := range lines {
		assert.GreaterOrEqual(t, len(line), 2)
		for _, p := range line {
			assert.False(t, math.IsNaN(p[0]) || math.IsNaN(p[1]))
		}
	}
}

func TestTraceSharedEdgeNotRetracedFromNeighborCell(t *testing.T) {
	// 水平等值带：等高线逐格穿过相邻单元格共享的竖直边。
	// 共享边只在一个单元格键下标记时，邻格扫描会把同一条边
	// 再追踪一遍，产生重复碎片
	g := gridFrom([][]float64{
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{10, 10, 10, 10},
	})

	lines := TraceLevel(g, 5)

	require.Len(t, lines, 3, "三个单元格各产生一段，不含邻格重复")
	for _, line := range lines {
		assert.Len(t, line, 2)
		assert.Equal(t, 1.5, line[0][1], "等高线位于行1与行2的中点")
		assert.Equal(t, 1.5, line[1][1])
	}
}

func TestTraceNoEdgeTracedTwice(t *testing.T) {
	g := gridFrom([][]float64{
		{0, 0, 0, 0, 0},
		{0, 9, 0, 9, 0},
		{0, 0, 0, 0, 0},
		{0, 9, 0, 9, 0},
		{0, 0, 0, 0, 0},
	})

	lines := TraceLevel(g, 5)

	require.Len(t, lines, 4, "四个独立山峰各产生一条环线")

	type segment struct{ a, b orb.Point }
	seen := make(map[segment]bool)
	for _, line := range lines {
		assert.Equal(t, line[0], line[len(line)-1], "每条环线都应闭合")
		for i := 0; i+1 < len(line); i++ {
			a, b := line[i], line[i+1]
			assert.NotEqual(t, a, b, "不允许连续重合点")
			// 无向线段去重
			if b[0] < a[0] || (b[0] == a[0] && b[1] < a[1]) {
				a, b = b, a
			}
			seg := segment{a, b}
			assert.False(t, seen[seg], "线段%v被重复追踪", seg)
			seen[seg] = true
		}
	}
}
