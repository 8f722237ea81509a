package models

// DomainUsage aggregates one website inside an app.
type DomainUsage struct {
	TotalTime int64    `json:"totalTime"`
	Visits    int      `json:"visits"`
	Titles    []string `json:"titles"`
}

// AppUsage aggregates one app label.
type AppUsage struct {
	TotalTime int64                   `json:"totalTime"`
	Sessions  int                     `json:"sessions"`
	LastUsed  string                  `json:"lastUsed"`
	Domains   map[string]*DomainUsage `json:"domains"`
}

// AppStats maps app label to its usage. Derived, never persisted.
type AppStats map[string]*AppUsage

// Summary is the multi-day rollup returned by the summary query.
type Summary struct {
	TotalTime     int64            `json:"totalTime"`
	TotalSessions int              `json:"totalSessions"`
	AppUsage      map[string]int64 `json:"appUsage"`
	DaysTracked   int              `json:"daysTracked"`
}

type DomainTotal struct {
	Domain    string `json:"domain"`
	TotalTime int64  `json:"totalTime"`
}

type AppTotal struct {
	App        string        `json:"app"`
	TotalTime  int64         `json:"totalTime"`
	Percentage float64       `json:"percentage"`
	Domains    []DomainTotal `json:"domains,omitempty"`
}

// Rollup is the weekly or monthly view over several day records.
type Rollup struct {
	Period       string           `json:"period"`
	Dates        []string         `json:"dates"`
	TotalTime    int64            `json:"totalTime"`
	AverageDaily int64            `json:"averageDaily"`
	DailyTotals  map[string]int64 `json:"dailyTotals"`
	Apps         []AppTotal       `json:"apps"`
}
