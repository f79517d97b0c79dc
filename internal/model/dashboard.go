package model

type Dashboard struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Data    string `json:"data"`
	Version int    `json:"version"`
	Ctime   int64  `json:"ctime"`
	Mtime   int64  `json:"mtime"`
}
