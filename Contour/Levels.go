package Contour

import "math"

// PlanLevels 扫描格网求高程范围，并按等高距生成需要追踪的层级。
// 层级为闭区间 [floor(min/interval)*interval, ceil(max/interval)*interval]，
// 步长为interval，min==max时仍生成单个层级。
// 格网中不存在有效采样时返回ErrEmptyGrid。
func PlanLevels(g *Grid, interval float64) (minZ, maxZ float64, levels []float64, err error) {
	minZ = math.Inf(1)
	maxZ = math.Inf(-1)
	found := false
	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			if !g.IsValid(row, col) {
				continue
			}
			v := g.Data[row][col]
			if v < minZ {
				minZ = v
			}
			if v > maxZ {
				maxZ = v
			}
			found = true
		}
	}
	if !found {
		return 0, 0, nil, ErrEmptyGrid
	}

	lo := math.Floor(minZ/interval) * interval
	hi := math.Ceil(maxZ/interval) * interval
	count := int(math.Round((hi-lo)/interval)) + 1
	levels = make([]float64, count)
	for i := range levels {
		levels[i] = lo + float64(i)*interval
	}
	return minZ, maxZ, levels, nil
}
