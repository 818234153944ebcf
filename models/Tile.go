package models

// Tile DEM地形瓦片（mbtiles方案，terrain-RGB编码）
type Tile struct {
	ZoomLevel  int64
	TileColumn int64
	TileRow    int64
	TileData   []byte
}

func (Tile) TableName() string {
	return "tiles"
}
