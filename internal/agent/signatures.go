package agent

// DefaultSignatures are user-agent fragments of non-browser clients,
// matched case-insensitively anywhere in the User-Agent header.
var DefaultSignatures = []string{
	// command-line and scripting HTTP clients
	"curl",
	"wget",
	"python-requests",
	"python-urllib",
	"httpx",
	"aiohttp",
	"go-http-client",
	"axios",
	"node-fetch",
	"undici",
	"okhttp",
	"postman",
	"insomnia",
	"httpie",
	// text-mode browsers
	"lynx",
	"w3m",
	"links",
	"elinks",
	// search and index crawlers
	"googlebot",
	"bingbot",
	"slurp",
	"duckduckbot",
	"baiduspider",
	"yandexbot",
	"crawler",
	"spider",
	"scraper",
	// link-preview and messaging fetchers
	"facebookexternalhit",
	"twitterbot",
	"linkedinbot",
	"whatsapp",
	"slackbot",
	"discord",
	"telegrambot",
	"skypeuri",
	// AI assistants and LLM clients
	"gpt",
	"claude",
	"openai",
	"anthropic",
	"perplexity",
	"llm",
	"bot",
}
