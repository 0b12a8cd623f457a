// =============================================================================
// 📦 NanoSwarm 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import "time"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Server:    DefaultServerConfig(),
		Swarm:     DefaultSwarmConfig(),
		LLM:       DefaultLLMConfig(),
		Memory:    DefaultMemoryConfig(),
		Redis:     DefaultRedisConfig(),
		Database:  DefaultDatabaseConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultServerConfig 返回默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:        8080,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    330 * time.Second, // 同步运行最长 300s，写超时必须覆盖
		ShutdownTimeout: 15 * time.Second,
		RateLimitRPS:    20,
		RateLimitBurst:  40,
	}
}

// DefaultSwarmConfig 返回默认编排配置
func DefaultSwarmConfig() SwarmConfig {
	return SwarmConfig{
		MaxAgents:          5,
		ConcurrencyCeiling: 5,
		AgentTimeout:       60 * time.Second,
		RunTimeout:         300 * time.Second,
		ToolRounds:         4,
		LLMAllocation:      false,
	}
}

// DefaultLLMConfig 返回默认 LLM 配置
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Primary: BackendConfig{
			Name:    "ollama",
			BaseURL: "https://ollama.com/v1",
			Model:   "ministral-3:8b",
			Timeout: 120 * time.Second,
		},
		Fallback: BackendConfig{
			Name:    "nvidia_nim",
			BaseURL: "https://integrate.api.nvidia.com/v1",
			Model:   "meta/llama-3.3-70b-instruct",
			Timeout: 120 * time.Second,
		},
		RateLimitRPS: 0,
	}
}

// DefaultMemoryConfig 返回默认线程记忆配置
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		Backend: "inmemory",
		Window:  10,
		TTL:     24 * time.Hour,
	}
}

// DefaultRedisConfig 返回默认 Redis 配置
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:      "localhost:6379",
		Password:  "",
		DB:        0,
		KeyPrefix: "nanoswarm:",
	}
}

// DefaultDatabaseConfig 返回默认 Job 存储配置
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver: "inmemory",
		Path:   "nanoswarm.db",
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:        "info",
		Format:       "json",
		OutputPaths:  []string{"stdout"},
		EnableCaller: true,
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:          false,
		OTLPEndpoint:     "localhost:4317",
		ServiceName:      "nanoswarm",
		SampleRate:       0.1,
		MetricsNamespace: "nanoswarm",
	}
}
