package services

import (
	"math"
	"testing"

	"github.com/GrainArc/ContourMap/Contour"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }

func peakRequest() *GenerateRequest {
	return &GenerateRequest{
		Grid: [][]*float64{
			{fp(0), fp(0), fp(0)},
			{fp(0), fp(10), fp(0)},
			{fp(0), fp(0), fp(0)},
		},
		Width:    3,
		Height:   3,
		CellSize: 1,
		Interval: 5,
	}
}

func TestGenerateProducesFeatureCollection(t *testing.T) {
	svc := NewContourService()

	resp, err := svc.Generate(peakRequest(), nil)

	require.NoError(t, err)
	require.NotNil(t, resp.FeatureCollection)
	require.Len(t, resp.FeatureCollection.Features, 1)

	f := resp.FeatureCollection.Features[0]
	assert.Equal(t, 5.0, f.Properties["elevation"])
	assert.Equal(t, false, f.Properties["is_major"])

	assert.Equal(t, 1, resp.Metadata.TotalLines)
	assert.Equal(t, [2]float64{0, 10}, resp.Metadata.ElevationRange)
	assert.Equal(t, 5.0, resp.Metadata.Interval)
}

func TestGenerateNullCellsBecomeNoData(t *testing.T) {
	svc := NewContourService()
	req := peakRequest()
	req.Grid[0][0] = nil

	grid, err := svc.buildGrid(req)

	require.NoError(t, err)
	assert.True(t, math.IsNaN(grid.Data[0][0]), "null应转换为无数据")
	assert.Equal(t, 10.0, grid.Data[1][1])
}

func TestGenerateDimensionMismatch(t *testing.T) {
	svc := NewContourService()

	req := peakRequest()
	req.Height = 4
	_, err := svc.Generate(req, nil)
	assert.Error(t, err, "行数不匹配必须拒绝")

	req = peakRequest()
	req.Grid[1] = req.Grid[1][:2]
	_, err = svc.Generate(req, nil)
	assert.Error(t, err, "列数不匹配必须拒绝")
}

func TestGenerateAppliesConfigDefaults(t *testing.T) {
	svc := NewContourService()
	req := peakRequest()
	req.Interval = 0 // 回落到配置默认等高距10

	resp, err := svc.Generate(req, nil)

	require.NoError(t, err)
	assert.Equal(t, 10.0, resp.Metadata.Interval)
}

func TestGenerateInvalidIntervalSurfacesError(t *testing.T) {
	svc := NewContourService()
	req := peakRequest()
	req.Interval = -3

	_, err := svc.Generate(req, nil)

	assert.ErrorIs(t, err, Contour.ErrInvalidConfig)
}

func TestGenerateEmptyGridSurfacesError(t *testing.T) {
	svc := NewContourService()
	req := &GenerateRequest{
		Grid: [][]*float64{
			{nil, nil},
			{nil, nil},
		},
		Width:    2,
		Height:   2,
		CellSize: 1,
		Interval: 5,
	}

	_, err := svc.Generate(req, nil)

	assert.ErrorIs(t, err, Contour.ErrEmptyGrid)
}

func TestGenerateProgressPassthrough(t *testing.T) {
	svc := NewContourService()
	var calls int

	_, err := svc.Generate(peakRequest(), func(done, total int, message string) {
		calls++
	})

	require.NoError(t, err)
	assert.Greater(t, calls, 0, "进度回调应透传到流水线")
}
