package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the appliance configuration.
// Every value comes from the environment (optionally seeded by a .env file) or a default.
type Config struct {
	// Catalog
	MusicDirs  []string // Roots scanned recursively for audio files
	Extensions []string // Accepted file extensions, lower case without dot

	// Pointer input
	PointerDevice string // evdev node of the touch panel, e.g. /dev/input/event3
	AxisMaxX      int    // Raw device range of the X axis
	AxisMaxY      int    // Raw device range of the Y axis
	SwapAxes      bool   // Panel reports X on the Y code and vice versa

	// Viewport
	Width  int
	Height int
	Scale  float64

	// External collaborators
	SocketPath       string
	PlayerPath       string // mplayer binary
	FBInkPath        string // rendering utility
	AssetsDir        string // fonts and placeholder artwork
	ArtworkPath      string // temp file used for embedded cover art
	BluetoothctlPath string

	// Playback
	Volume       int
	DisableSeek  bool
	BTKeepalive  bool
	SpawnRetry   time.Duration
	ReadyMarker  string
	QueryTimeout time.Duration

	// Logging
	LogLevel string
	LogPath  string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma separated variable, dropping empty items.
func getEnvList(key string, fallback []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

// ExecutableDir returns the directory holding the running binary.
// Assets and the log file live next to it on the device.
func ExecutableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// Load loads configuration from environment variables (via .env files) or defaults.
// godotenv never overrides variables that are already set.
func Load() *Config {
	root := ExecutableDir()
	_ = godotenv.Load()
	_ = godotenv.Load(filepath.Join(root, ".env"))

	assets := getEnv("BUCK_ASSETS_DIR", filepath.Join(root, "assets"))

	return &Config{
		MusicDirs:  getEnvList("BUCK_MUSIC_DIRS", []string{"/mnt/us/music"}),
		Extensions: getEnvList("BUCK_EXTENSIONS", []string{"mp3", "wav"}),

		PointerDevice: getEnv("BUCK_POINTER_DEVICE", "/dev/input/event3"),
		AxisMaxX:      getEnvInt("BUCK_POINTER_AXIS_MAX_X", 4096),
		AxisMaxY:      getEnvInt("BUCK_POINTER_AXIS_MAX_Y", 4096),
		SwapAxes:      getEnvBool("BUCK_POINTER_SWAP_AXES", false),

		Width:  getEnvInt("BUCK_UI_WIDTH", 600),
		Height: getEnvInt("BUCK_UI_HEIGHT", 800),
		Scale:  getEnvFloat("BUCK_UI_SCALE", 1.0),

		SocketPath:       getEnv("BUCK_SOCKET", "/tmp/buck.sock"),
		PlayerPath:       getEnv("BUCK_PLAYER_PATH", filepath.Join(root, "bin", "mplayer")),
		FBInkPath:        getEnv("BUCK_FBINK_PATH", "fbink"),
		AssetsDir:        assets,
		ArtworkPath:      getEnv("BUCK_ARTWORK_PATH", filepath.Join(os.TempDir(), "bucktempalbumstore")),
		BluetoothctlPath: getEnv("BUCK_BLUETOOTHCTL_PATH", "bluetoothctl"),

		Volume:       getEnvInt("BUCK_VOLUME", 60),
		DisableSeek:  getEnvBool("BUCK_DISABLE_SEEK", false),
		BTKeepalive:  getEnvBool("BUCK_BT_KEEPALIVE", false),
		SpawnRetry:   getEnvDuration("BUCK_SPAWN_RETRY", 5*time.Second),
		ReadyMarker:  getEnv("BUCK_READY_MARKER", "AO: [alsa]"),
		QueryTimeout: getEnvDuration("BUCK_QUERY_TIMEOUT", 250*time.Millisecond),

		LogLevel: getEnv("BUCK_LOG_LEVEL", "info"),
		LogPath:  getEnv("BUCK_LOG_PATH", filepath.Join(root, "log.txt")),
	}
}

// Validate rejects values the UI geometry or the player cannot work with.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid viewport %dx%d", c.Width, c.Height)
	}
	if c.Scale <= 0 {
		return fmt.Errorf("invalid ui scale %v", c.Scale)
	}
	if c.Volume < 0 || c.Volume > 100 {
		return fmt.Errorf("volume %d out of range 0-100", c.Volume)
	}
	if c.AxisMaxX <= 0 || c.AxisMaxY <= 0 {
		return fmt.Errorf("invalid pointer axis range %dx%d", c.AxisMaxX, c.AxisMaxY)
	}
	if len(c.MusicDirs) == 0 {
		return fmt.Errorf("no music directories configured")
	}
	return nil
}

// Asset resolves a file inside the assets directory.
func (c *Config) Asset(name string) string {
	return filepath.Join(c.AssetsDir, name)
}
