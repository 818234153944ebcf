package models

// ContourRecord 等高线生成记录，保存运行参数与生成结果
type ContourRecord struct {
	ID               uint    `gorm:"primaryKey" json:"id"`
	TaskID           string  `gorm:"index;type:varchar(64)" json:"task_id"`
	Source           string  `gorm:"type:varchar(32)" json:"source"` // grid 或 dem
	GridWidth        int     `json:"grid_width"`
	GridHeight       int     `json:"grid_height"`
	Interval         float64 `json:"interval"`
	MajorInterval    float64 `json:"major_interval"`
	MinZ             float64 `json:"min_z"`
	MaxZ             float64 `json:"max_z"`
	TotalLines       int     `json:"total_lines"`
	ProcessingTimeMs float64 `json:"processing_time_ms"`
	GeoJSON          []byte  `gorm:"type:BLOB" json:"-"` // 生成的要素集合

	CreatedAt int64 `gorm:"autoCreateTime" json:"created_at"`
}

func (ContourRecord) TableName() string {
	return "contour_records"
}
