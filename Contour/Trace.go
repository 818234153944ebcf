package Contour

import (
	"math"

	"github.com/paulmach/orb"
)

// 单元格边的编号，固定按 上-右-下-左 的顺序处理
const (
	edgeTop = iota
	edgeRight
	edgeBottom
	edgeLeft
)

var edgeOrder = [4]int{edgeTop, edgeRight, edgeBottom, edgeLeft}

// edgeKey 唯一标识某个单元格的一条边
type edgeKey struct {
	row, col int
	side     int
}

// neighborKey 返回同一条边在相邻单元格视角下的等价键。
// 单元格(row,col)的上边与单元格(row-1,col)的下边是同一条边，
// 两个键必须同时标记，避免共享边被从另一侧重复追踪。
func (k edgeKey) neighborKey() edgeKey {
	switch k.side {
	case edgeTop:
		return edgeKey{k.row - 1, k.col, edgeBottom}
	case edgeBottom:
		return edgeKey{k.row + 1, k.col, edgeTop}
	case edgeLeft:
		return edgeKey{k.row, k.col - 1, edgeRight}
	default:
		return edgeKey{k.row, k.col + 1, edgeLeft}
	}
}

// oppositeSide 返回单元格内与side相对的边
func oppositeSide(side int) int {
	switch side {
	case edgeTop:
		return edgeBottom
	case edgeBottom:
		return edgeTop
	case edgeLeft:
		return edgeRight
	default:
		return edgeLeft
	}
}

// tracer 单个层级的等高线追踪器
type tracer struct {
	grid    *Grid
	level   float64
	visited map[edgeKey]bool
	maxStep int
}

// TraceLevel 追踪单个高程层级的全部等高线，返回格网分数坐标下的折线。
// 含无数据角点的单元格直接跳过；少于2个点的折线被丢弃。
func TraceLevel(g *Grid, level float64) []orb.LineString {
	t := &tracer{
		grid:    g,
		level:   level,
		visited: make(map[edgeKey]bool),
		maxStep: 2 * g.Width * g.Height,
	}

	var lines []orb.LineString
	for row := 0; row < g.Height-1; row++ {
		for col := 0; col < g.Width-1; col++ {
			a, b, c, d, ok := t.corners(row, col)
			if !ok {
				continue
			}
			code := t.caseCode(a, b, c, d)
			if code == 0 || code == 15 {
				continue
			}
			for _, side := range edgeOrder {
				if !t.edgeCrosses(side, a, b, c, d) {
					continue
				}
				key := edgeKey{row, col, side}
				if t.visited[key] {
					continue
				}
				line := t.traceFrom(key)
				if len(line) >= 2 {
					lines = append(lines, line)
				}
			}
		}
	}
	return lines
}

// mark 标记一条边为已访问。
// 共享边在两个相邻单元格视角下各有一个键，必须同时标记，
// 否则同一条边会被从邻格重复追踪出第二条线。
func (t *tracer) mark(k edgeKey) {
	t.visited[k] = true
	t.visited[k.neighborKey()] = true
}

// traceFrom 从一条未访问的穿越边出发，沿边追踪直到线终止
func (t *tracer) traceFrom(start edgeKey) orb.LineString {
	line := orb.LineString{t.crossingPoint(start)}
	t.mark(start)

	row, col, entry := start.row, start.col, start.side
	for steps := 0; steps < t.maxStep; steps++ {
		exit, ok := t.chooseExit(row, col, entry)
		if !ok {
			// 无出边，线在格网内部终止
			break
		}
		key := edgeKey{row, col, exit}
		p := t.crossingPoint(key)
		if t.visited[key] {
			// 回到已追踪的边：闭合成环或并入已有线，补上交点后停止
			line = appendPoint(line, p)
			break
		}
		t.mark(key)
		line = appendPoint(line, p)

		next := key.neighborKey()
		if next.row < 0 || next.row >= t.grid.Height-1 ||
			next.col < 0 || next.col >= t.grid.Width-1 {
			// 到达格网边界
			break
		}
		row, col, entry = next.row, next.col, next.side
	}
	return line
}

// chooseExit 在当前单元格内选择出边。
// 鞍点（4条边均穿越）时剔除与入边相对的边，
// 以单元格中心值消歧：center >= level取首个候选，否则取末个候选。
// 该规则必须对所有鞍点保持一致，避免不同分量被错误桥接。
func (t *tracer) chooseExit(row, col, entry int) (int, bool) {
	a, b, c, d, ok := t.corners(row, col)
	if !ok {
		return 0, false
	}
	var candidates []int
	for _, side := range edgeOrder {
		if side == entry {
			continue
		}
		if t.edgeCrosses(side, a, b, c, d) {
			candidates = append(candidates, side)
		}
	}
	switch len(candidates) {
	case 0:
		return 0, false
	case 1:
		return candidates[0], true
	}

	// 鞍点消歧
	opposite := oppositeSide(entry)
	kept := candidates[:0]
	for _, side := range candidates {
		if side != opposite {
			kept = append(kept, side)
		}
	}
	center := (a + b + c + d) / 4
	if center >= t.level {
		return kept[0], true
	}
	return kept[len(kept)-1], true
}

// corners 取单元格四角高程（左上、右上、右下、左下），任一角无效时ok为false
func (t *tracer) corners(row, col int) (a, b, c, d float64, ok bool) {
	g := t.grid
	if !g.IsValid(row, col) || !g.IsValid(row, col+1) ||
		!g.IsValid(row+1, col+1) || !g.IsValid(row+1, col) {
		return 0, 0, 0, 0, false
	}
	return g.Data[row][col], g.Data[row][col+1],
		g.Data[row+1][col+1], g.Data[row+1][col], true
}

// above 角点分类，>=level视为在等高线上方
func (t *tracer) above(v float64) bool {
	return v >= t.level
}

// caseCode 按四角分类生成4位情形编码
func (t *tracer) caseCode(a, b, c, d float64) int {
	code := 0
	if t.above(a) {
		code |= 1
	}
	if t.above(b) {
		code |= 2
	}
	if t.above(c) {
		code |= 4
	}
	if t.above(d) {
		code |= 8
	}
	return code
}

// edgeCrosses 判断某条边的两个端点分类是否不同
func (t *tracer) edgeCrosses(side int, a, b, c, d float64) bool {
	switch side {
	case edgeTop:
		return t.above(a) != t.above(b)
	case edgeRight:
		return t.above(b) != t.above(c)
	case edgeBottom:
		return t.above(d) != t.above(c)
	default:
		return t.above(a) != t.above(d)
	}
}

// crossingPoint 在边上线性插值求等高线穿越点，坐标为格网分数坐标(x=列, y=行)
func (t *tracer) crossingPoint(k edgeKey) orb.Point {
	g := t.grid
	a := g.Data[k.row][k.col]
	b := g.Data[k.row][k.col+1]
	c := g.Data[k.row+1][k.col+1]
	d := g.Data[k.row+1][k.col]

	fr := float64(k.row)
	fc := float64(k.col)
	switch k.side {
	case edgeTop:
		return orb.Point{fc + interp(t.level, a, b), fr}
	case edgeRight:
		return orb.Point{fc + 1, fr + interp(t.level, b, c)}
	case edgeBottom:
		return orb.Point{fc + interp(t.level, d, c), fr + 1}
	default:
		return orb.Point{fc, fr + interp(t.level, a, d)}
	}
}

// interp 求穿越点在边上的比例位置并夹取到[0,1]
func interp(level, from, to float64) float64 {
	if from == to {
		return 0.5
	}
	return math.Max(0, math.Min(1, (level-from)/(to-from)))
}

// appendPoint 追加折线点，与末点重合时跳过
func appendPoint(line orb.LineString, p orb.Point) orb.LineString {
	if n := len(line); n > 0 && line[n-1] == p {
		return line
	}
	return append(line, p)
}
