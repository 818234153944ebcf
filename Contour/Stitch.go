package Contour

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// MergeLines 将端点距离在阈值内的折线贪心拼接，减少单元格边界造成的断裂。
// 对每条未拼接的线，反复扫描其余线的4种端点配对
// （尾-首、尾-尾、首-首、尾向首），取最小距离，在阈值内则拼接
// （必要时反转另一条线以保持方向连续），直到无法继续拼接为止。
// 采取先找到先拼接策略，不保证全局最小碎片数；对已充分拼接的集合幂等。
func MergeLines(lines []orb.LineString, threshold float64) []orb.LineString {
	if len(lines) <= 1 {
		return cloneLines(lines)
	}

	used := make([]bool, len(lines))
	var result []orb.LineString
	for i := range lines {
		if used[i] {
			continue
		}
		used[i] = true
		cur := cloneLine(lines[i])

		for {
			merged := false
			for j := range lines {
				if used[j] {
					continue
				}
				next, ok := tryMerge(cur, lines[j], threshold)
				if ok {
					cur = next
					used[j] = true
					merged = true
					break
				}
			}
			if !merged {
				break
			}
		}
		result = append(result, cur)
	}
	return result
}

// tryMerge 尝试将other拼接到cur上，返回拼接结果
func tryMerge(cur, other orb.LineString, threshold float64) (orb.LineString, bool) {
	cs, ce := cur[0], cur[len(cur)-1]
	os, oe := other[0], other[len(other)-1]

	dEndStart := planar.Distance(ce, os)
	dEndEnd := planar.Distance(ce, oe)
	dStartStart := planar.Distance(cs, os)
	dStartEnd := planar.Distance(cs, oe)

	min := dEndStart
	for _, d := range []float64{dEndEnd, dStartStart, dStartEnd} {
		if d < min {
			min = d
		}
	}
	if min > threshold {
		return cur, false
	}

	switch min {
	case dEndStart:
		return concat(cur, other), true
	case dEndEnd:
		return concat(cur, reverseLine(other)), true
	case dStartStart:
		return concat(reverseLine(cur), other), true
	default:
		return concat(cloneLine(other), cur), true
	}
}

// concat 首尾连接两条折线，接缝处的重合点去重
func concat(head, tail orb.LineString) orb.LineString {
	out := head
	for _, p := range tail {
		out = appendPoint(out, p)
	}
	return out
}

// reverseLine 返回反转后的新折线
func reverseLine(line orb.LineString) orb.LineString {
	out := make(orb.LineString, len(line))
	for i, p := range line {
		out[len(line)-1-i] = p
	}
	return out
}

func cloneLine(line orb.LineString) orb.LineString {
	out := make(orb.LineString, len(line))
	copy(out, line)
	return out
}

func cloneLines(lines []orb.LineString) []orb.LineString {
	out := make([]orb.LineString, len(lines))
	for i := range lines {
		out[i] = cloneLine(lines[i])
	}
	return out
}
