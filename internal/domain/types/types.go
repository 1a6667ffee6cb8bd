// Package types contains the wire shapes shared by the service and HTTP layers.
package types

// Entry is one leaderboard row as returned by GET /api/leaderboard.
// Rank is derived on every read and never stored.
type Entry struct {
	Rank     int      `json:"rank"`
	Avatar   string   `json:"avatar"`
	TeamName string   `json:"teamName"`
	Members  []string `json:"members"`
	Score    float64  `json:"score"`
}

// UploadResult is the success body of POST /api/upload.
type UploadResult struct {
	Message string  `json:"message"`
	RMSE    float64 `json:"rmse"`
}

// Stats summarizes the submission store for GET /stats.
type Stats struct {
	Submissions int      `json:"submissions"`
	Teams       int      `json:"teams"`
	BestScore   *float64 `json:"bestScore"`
	Store       string   `json:"store"`
}
