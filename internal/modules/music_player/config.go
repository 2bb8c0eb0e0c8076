package music_player

// Config holds the music player module configuration.
// Catalog credentials are optional; a catalog without them is disabled.
type Config struct {
	YouTubeAPIKey       string  `env:"YOUTUBE_API_KEY"`
	SpotifyClientID     string  `env:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string  `env:"SPOTIFY_CLIENT_SECRET"`
	CatalogRateLimit    float64 `env:"CATALOG_RATE_LIMIT"    envDefault:"5"`
	FFmpegPath          string  `env:"FFMPEG_PATH"           envDefault:"ffmpeg"`
	YTDLPPath           string  `env:"YTDLP_PATH"            envDefault:"yt-dlp"`
}
