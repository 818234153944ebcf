package Contour

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Simplify 道格拉斯-普克抽稀：保留到弦垂距超过容差的点，其余折叠。
// 使用显式栈而非递归，避免病态长线导致的深递归。
// 输入折线不被修改，返回新折线。
func Simplify(line orb.LineString, tolerance float64) orb.LineString {
	if len(line) <= 2 {
		return cloneLine(line)
	}

	keep := make([]bool, len(line))
	keep[0] = true
	keep[len(line)-1] = true

	tolSq := tolerance * tolerance
	stack := [][2]int{{0, len(line) - 1}}
	for len(stack) > 0 {
		seg := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		start, end := seg[0], seg[1]
		if end-start < 2 {
			continue
		}

		maxDistSq := 0.0
		maxIndex := start
		for i := start + 1; i < end; i++ {
			d := planar.DistanceFromSegmentSquared(line[start], line[end], line[i])
			if d > maxDistSq {
				maxDistSq = d
				maxIndex = i
			}
		}
		if maxDistSq > tolSq {
			keep[maxIndex] = true
			stack = append(stack, [2]int{start, maxIndex}, [2]int{maxIndex, end})
		}
	}

	out := make(orb.LineString, 0, len(line))
	for i, p := range line {
		if keep[i] {
			out = appendPoint(out, p)
		}
	}
	return out
}

// Chaikin 切角平滑：每条内部边替换为1/4与3/4处的两个点，端点保持不变。
// 少于3个点或迭代次数非正时原样返回拷贝。
func Chaikin(line orb.LineString, iterations int) orb.LineString {
	out := cloneLine(line)
	for it := 0; it < iterations; it++ {
		if len(out) < 3 {
			break
		}
		next := make(orb.LineString, 0, 2*len(out))
		next = append(next, out[0])
		for i := 0; i < len(out)-1; i++ {
			p0, p1 := out[i], out[i+1]
			q := orb.Point{0.75*p0[0] + 0.25*p1[0], 0.75*p0[1] + 0.25*p1[1]}
			r := orb.Point{0.25*p0[0] + 0.75*p1[0], 0.25*p0[1] + 0.75*p1[1]}
			next = appendPoint(next, q)
			next = appendPoint(next, r)
		}
		next = appendPoint(next, out[len(out)-1])
		out = next
	}
	return out
}
