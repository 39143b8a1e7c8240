package main

import "time"

type Config struct {
	LogLevel string `env:"LOG_LEVEL,default=info"`

	HistoryLimit          int `env:"HISTORY_LIMIT,default=200" validate:"gt=0"`
	AgentMinIntervalMs    int `env:"AGENT_MIN_INTERVAL_MS,default=1500" validate:"gte=0"`
	AgentCooldownMax      int `env:"AGENT_COOLDOWN_MAX,default=1000" validate:"gt=0"`
	AgentResponseMaxChars int `env:"AGENT_RESPONSE_MAX_CHARS,default=100" validate:"gt=0"`
	LLMTimeoutMs          int `env:"LLM_TIMEOUT_MS,default=15000" validate:"gt=0"`
	RoomsUpdateThrottleMs int `env:"ROOMS_UPDATE_THROTTLE_MS,default=500" validate:"gt=0"`

	LLMProvider    string `env:"LLM_PROVIDER,default=mock"`
	OpenAIModel    string `env:"OPENAI_MODEL"`
	AnthropicModel string `env:"ANTHROPIC_MODEL"`
	GeminiModel    string `env:"GEMINI_MODEL"`

	DisplayName       string        `env:"DISPLAY_NAME"`
	InputRatePerSec   float64       `env:"INPUT_RATE_PER_SEC,default=2" validate:"gt=0"`
	MaxContentLength  int           `env:"MAX_CONTENT_LENGTH,default=2000" validate:"gt=0"`
	TelemetryInterval time.Duration `env:"TELEMETRY_INTERVAL,default=30s"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,default=200ms"`
}
