package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all client configuration
type Config struct {
	OrchestratorHost string
	OrchestratorPort int
	OrchestratorPath string
	OrchestratorSSL  bool

	Agent            string // branded agent preset name
	GreetingFilename string
	UIDebugMode      bool

	VoiceSampleRate   int // inbound agent audio (Hz)
	CaptureSampleRate int // outbound mic audio (Hz)
	DeviceSampleRate  int // rate the input device is opened at
	FrameSize         int // capture frame size in samples

	VADSpeechFrames  int // consecutive frames to confirm speech start
	ThinkingDebounce time.Duration
}

// LoadConfig loads configuration from environment variables with defaults
func LoadConfig() (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	config := &Config{
		OrchestratorHost: "localhost",
		OrchestratorPort: 8000,
		OrchestratorPath: "/api/v1/ws",
		OrchestratorSSL:  false,
		Agent:            "simple",
		GreetingFilename: "start.mp3",

		VoiceSampleRate:   24000,
		CaptureSampleRate: 16000,
		DeviceSampleRate:  48000,
		FrameSize:         4096,

		VADSpeechFrames:  3,
		ThinkingDebounce: 800 * time.Millisecond,
	}

	// Optional: ORCHESTRATOR_HOST
	if host := os.Getenv("ORCHESTRATOR_HOST"); host != "" {
		config.OrchestratorHost = host
	}

	// Optional: ORCHESTRATOR_PORT
	if port := os.Getenv("ORCHESTRATOR_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid ORCHESTRATOR_PORT: %w", err)
		}
		config.OrchestratorPort = p
	}

	// Optional: ORCHESTRATOR_PATH
	if path := os.Getenv("ORCHESTRATOR_PATH"); path != "" {
		config.OrchestratorPath = path
	}

	// Optional: ORCHESTRATOR_SSL
	if ssl := os.Getenv("ORCHESTRATOR_SSL"); ssl != "" {
		config.OrchestratorSSL = ssl == "true"
	}

	// Optional: AGENT (branded preset)
	if agent := os.Getenv("AGENT"); agent != "" {
		config.Agent = agent
	}

	// Optional: GREETING_FILENAME
	if greeting := os.Getenv("GREETING_FILENAME"); greeting != "" {
		config.GreetingFilename = greeting
	}

	// Optional: UI_DEBUG_MODE
	if debug := os.Getenv("UI_DEBUG_MODE"); debug != "" {
		config.UIDebugMode = debug == "true"
	}

	// Optional: TTS_SAMPLE_RATE (inbound agent audio)
	if rate := os.Getenv("TTS_SAMPLE_RATE"); rate != "" {
		r, err := strconv.Atoi(rate)
		if err != nil {
			return nil, fmt.Errorf("invalid TTS_SAMPLE_RATE: %w", err)
		}
		config.VoiceSampleRate = r
	}

	// Optional: CAPTURE_SAMPLE_RATE
	if rate := os.Getenv("CAPTURE_SAMPLE_RATE"); rate != "" {
		r, err := strconv.Atoi(rate)
		if err != nil {
			return nil, fmt.Errorf("invalid CAPTURE_SAMPLE_RATE: %w", err)
		}
		config.CaptureSampleRate = r
	}

	// Optional: DEVICE_SAMPLE_RATE
	if rate := os.Getenv("DEVICE_SAMPLE_RATE"); rate != "" {
		r, err := strconv.Atoi(rate)
		if err != nil {
			return nil, fmt.Errorf("invalid DEVICE_SAMPLE_RATE: %w", err)
		}
		config.DeviceSampleRate = r
	}

	// Optional: FRAME_SIZE (in samples)
	if size := os.Getenv("FRAME_SIZE"); size != "" {
		s, err := strconv.Atoi(size)
		if err != nil {
			return nil, fmt.Errorf("invalid FRAME_SIZE: %w", err)
		}
		if s <= 0 {
			return nil, fmt.Errorf("invalid FRAME_SIZE: must be positive")
		}
		config.FrameSize = s
	}

	// Optional: VAD_SPEECH_FRAMES
	if frames := os.Getenv("VAD_SPEECH_FRAMES"); frames != "" {
		f, err := strconv.Atoi(frames)
		if err != nil {
			return nil, fmt.Errorf("invalid VAD_SPEECH_FRAMES: %w", err)
		}
		config.VADSpeechFrames = f
	}

	// Optional: THINKING_DEBOUNCE_MS
	if debounce := os.Getenv("THINKING_DEBOUNCE_MS"); debounce != "" {
		d, err := strconv.Atoi(debounce)
		if err != nil {
			return nil, fmt.Errorf("invalid THINKING_DEBOUNCE_MS: %w", err)
		}
		config.ThinkingDebounce = time.Duration(d) * time.Millisecond
	}

	return config, nil
}

// OrchestratorURL builds the websocket URL the transport dials.
func (c *Config) OrchestratorURL() string {
	scheme := "ws"
	if c.OrchestratorSSL {
		scheme = "wss"
	}
	u := url.URL{
		Scheme: scheme,
		Host:   fmt.Sprintf("%s:%d", c.OrchestratorHost, c.OrchestratorPort),
		Path:   c.OrchestratorPath,
	}
	return u.String()
}
