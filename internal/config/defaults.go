package config

func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel: "info",
			DBPath:   "~/.lexol/database.db",
		},
		Discord: DiscordConfig{
			Token: "${BOT_TOKEN}",
		},
		Backends: BackendsConfig{
			Completion: CompletionBackend{
				APIBase: "http://localhost:8080/v1",
			},
			Caption: CaptionBackend{
				Endpoint:       "https://api-inference.huggingface.co/models/Salesforce/blip-image-captioning-large",
				APIKey:         "${HF_TOKEN}",
				TimeoutSeconds: 20,
			},
			Image: ImageBackend{
				APIBase: "http://localhost:8080/v1",
			},
		},
		Chatbot: ChatbotConfig{
			ChannelName:     "freegpt-chat",
			SlowmodeSeconds: 15,
			MaxInlineLen:    2000,
			ReplyFilename:   "message.txt",
		},
		Metrics: MetricsConfig{
			Enabled:  false,
			Endpoint: "127.0.0.1:9090",
		},
	}
}
