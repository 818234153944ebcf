package Contour

// 3x3高斯卷积核，权重和为16
var gaussKernel = [3][3]float64{
	{1, 2, 1},
	{2, 4, 2},
	{1, 2, 1},
}

// Smooth 对格网做高斯平滑，返回同尺寸的新格网，不修改输入。
// 无数据单元原样保留；邻域中的无数据或越界采样不参与加权，
// 权重按实际参与的采样重新归一化。passes=0时返回输入的拷贝。
func Smooth(g *Grid, passes int) *Grid {
	out := g.Clone()
	for p := 0; p < passes; p++ {
		out = smoothOnce(out)
	}
	return out
}

// smoothOnce 单遍高斯平滑
func smoothOnce(g *Grid) *Grid {
	out := NewGrid(g.Width, g.Height)
	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			if !g.IsValid(row, col) {
				out.Data[row][col] = g.Data[row][col]
				continue
			}
			var sum, weight float64
			for dr := -1; dr <= 1; dr++ {
				for dc := -1; dc <= 1; dc++ {
					if !g.IsValid(row+dr, col+dc) {
						continue
					}
					w := gaussKernel[dr+1][dc+1]
					sum += g.Data[row+dr][col+dc] * w
					weight += w
				}
			}
			out.Data[row][col] = sum / weight
		}
	}
	return out
}
