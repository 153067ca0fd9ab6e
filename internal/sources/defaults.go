package sources

// 分类名。
const (
	CategoryWorld   = "world"
	CategorySports  = "sports"
	CategoryFinance = "finance"
	CategoryTech    = "tech"
)

// defaultSource 是首次读取分类时写入的订阅源。
type defaultSource struct {
	Name string
	URL  string
}

var categories = []string{CategoryWorld, CategorySports, CategoryFinance, CategoryTech}

var defaults = map[string][]defaultSource{
	CategoryWorld: {
		{"Bellingcat", "https://www.bellingcat.com/feed/"},
		{"BBC World", "https://feeds.bbci.co.uk/news/world/rss.xml"},
		{"The Guardian World", "https://www.theguardian.com/world/rss"},
		{"Al Jazeera", "https://www.aljazeera.com/xml/rss/all.xml"},
		{"The Economist", "https://www.economist.com/international/rss.xml"},
		{"Reddit r/worldnews", "https://www.reddit.com/r/worldnews/.rss"},
		{"Reddit r/europe", "https://www.reddit.com/r/europe/.rss"},
		{"Reddit r/geopolitics", "https://www.reddit.com/r/geopolitics/.rss"},
	},
	CategorySports: {
		{"ESPN NBA", "https://www.espn.com/espn/rss/nba/news"},
		{"The Athletic NBA", "https://theathletic.com/rss/nba"},
		{"Eurohoops", "https://www.eurohoops.net/en/feed/"},
		{"ESPN F1", "https://www.espn.com/espn/rss/f1/news"},
		{"BBC Sport Football", "https://feeds.bbci.co.uk/sport/football/rss.xml"},
		{"The Guardian Football", "https://www.theguardian.com/football/rss"},
		{"Sherdog", "https://www.sherdog.com/rss/news.xml"},
	},
	CategoryFinance: {
		{"Coindesk", "https://www.coindesk.com/arc/outboundfeeds/rss/?outputType=xml"},
		{"CNBC Markets", "https://www.cnbc.com/id/100003114/device/rss/rss.html"},
		{"Reddit r/wallstreetbets", "https://www.reddit.com/r/wallstreetbets/.rss"},
		{"Reddit r/cryptocurrency", "https://www.reddit.com/r/cryptocurrency/.rss"},
		{"Reddit r/stocks", "https://www.reddit.com/r/stocks/.rss"},
	},
	CategoryTech: {
		{"The Verge", "https://www.theverge.com/rss/index.xml"},
		{"Wired", "https://www.wired.com/feed/rss"},
		{"TechRadar", "https://www.techradar.com/rss"},
		{"Ars Technica", "https://feeds.arstechnica.com/arstechnica/index"},
		{"TechCrunch", "https://techcrunch.com/feed/"},
		{"Engadget", "https://www.engadget.com/rss.xml"},
		{"9to5Mac", "https://9to5mac.com/feed/"},
		{"Hackaday", "https://hackaday.com/feed/"},
		{"Reddit r/tech", "https://www.reddit.com/r/tech/.rss"},
		{"Reddit r/technology", "https://www.reddit.com/r/technology/.rss"},
	},
}

// Categories 返回所有分类，顺序固定。
func Categories() []string {
	return append([]string(nil), categories...)
}

// IsCategory 判断 name 是否为已知分类。
func IsCategory(name string) bool {
	_, ok := defaults[name]
	return ok
}
