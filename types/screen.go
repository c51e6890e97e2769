package types

// ScreenInfo describes the output the shell draws on
type ScreenInfo struct {
	Name      string `json:"name"`
	Size      Size   `json:"size"`
	RefreshHz int    `json:"refreshHz"`
	// EdgeBand is the effective edge detection width per axis
	EdgeBand Size `json:"edgeBand"`
}
