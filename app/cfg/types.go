package cfg

type Cfg struct {
	// Credentials
	BotToken   string
	GroqAPIKey string

	// Application configuration
	DataDir       string
	SourcesDir    string
	Port          string
	WorkerCount   int
	CheckInterval int
	HTTPTimeout   int
	RetentionDays int
	PollMode      bool
	TLSSkipVerify bool

	// Summarization backend
	GroqURL   string
	GroqModel string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
