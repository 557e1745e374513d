package cfg

type Cfg struct {
	// Database configuration
	DatabaseURL string

	// HTTP server
	Port       string
	CronSecret string

	// External services
	OpenAIAPIKey string
	OpenAIModel  string
	TavilyAPIKey string
	GitHubToken  string

	// Pipeline tuning
	WindowHours            int
	RankedKeywords         int
	DetailedKeywords       int
	KeywordConcurrency     int
	LightweightConcurrency int
	ReuseSnapshots         int
	ScheduleUTC            string
	EnableEnSummary        bool
	SummaryContextLimit    int
	SourcesFile            string

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}
