package vector

// Stats mirrors the index statistics surfaced at /index/stats.
type Stats struct {
	TotalVectors int     `json:"total_vectors"`
	Dimension    int     `json:"dimension"`
	Fullness     float64 `json:"index_fullness"`
}
