package domain

import "time"

// ViewQuery são os filtros escolhidos pelo usuário
type ViewQuery struct {
	Metric    Metric
	TimeRange TimeRange
	AsOf      *time.Time
}

// DashboardView é o modelo de renderização do painel
type DashboardView struct {
	GeneratedAt  time.Time        `json:"generated_at"`
	Loading      bool             `json:"loading"`
	Filters      ViewFilters      `json:"filters"`
	Followers    FollowersCard    `json:"followers"`
	NewFollowers MetricCard       `json:"new_followers"`
	ProfileViews MetricCard       `json:"profile_views"`
	Reach        ReachCard        `json:"reach"`
	PinnedReel   *PinnedReelCard  `json:"pinned_reel"`
	LatestPost   *LatestPostCard  `json:"latest_post"`
	LatestStory  *LatestStoryCard `json:"latest_story"`
	BarChart     BarChart         `json:"bar_chart"`
	ReachChart   []ReachPoint     `json:"reach_chart"`
	Sync         *SyncStatus      `json:"sync,omitempty"`
}

type ViewFilters struct {
	Metric           Metric    `json:"metric"`
	MetricLabel      string    `json:"metric_label"`
	TimeRange        TimeRange `json:"time_range"`
	TimeRangeLabel   string    `json:"time_range_label,omitempty"`
	TimeRangeDays    int       `json:"time_range_days,omitempty"`
	TimeRangeMatched bool      `json:"time_range_matched"`
}

type FollowersCard struct {
	Followers    *int    `json:"followers"`
	Goal         int     `json:"goal"`
	GoalProgress float64 `json:"goal_progress"`
}

// MetricCard traz o valor mais recente e a variação contra o snapshot anterior
type MetricCard struct {
	Value *int   `json:"value"`
	Delta *Delta `json:"delta"`
}

// Delta positivo é exibido como melhora; zero ou negativo como queda
type Delta struct {
	Value    int  `json:"value"`
	Improved bool `json:"improved"`
}

type ReachCard struct {
	Total      int `json:"total"`
	WindowDays int `json:"window_days"`
	Records    int `json:"records"`
}

type PinnedReelCard struct {
	Comments      int `json:"comments"`
	Shares        int `json:"shares"`
	Likes         int `json:"likes"`
	Saves         int `json:"saves"`
	AvgWatchTimeS int `json:"avg_watch_time_seconds"`
}

type LatestPostCard struct {
	PostID   string        `json:"post_id"`
	Caption  string        `json:"caption"`
	PostedAt LocalDateTime `json:"posted_at"`
	Comments int           `json:"comments"`
	Shares   int           `json:"shares"`
	Likes    int           `json:"likes"`
	Saves    int           `json:"saves"`
}

type LatestStoryCard struct {
	StoryID       string        `json:"story_id"`
	PostedAt      LocalDateTime `json:"posted_at"`
	Replies       int           `json:"replies"`
	Shares        int           `json:"shares"`
	Impressions   int           `json:"impressions"`
	ProfileVisits int           `json:"profile_visits"`
}

type BarChart struct {
	Metric Metric     `json:"metric"`
	Label  string     `json:"label"`
	Points []BarPoint `json:"points"`
}

type BarPoint struct {
	PostID   string        `json:"post_id"`
	PostedAt LocalDateTime `json:"posted_at"`
	Value    int           `json:"value"`
}

type ReachPoint struct {
	Date  LocalDate `json:"date"`
	Reach int       `json:"reach"`
}

// DashboardOptions lista as opções de filtro disponíveis
type DashboardOptions struct {
	Metrics    []MetricOption    `json:"metrics"`
	TimeRanges []TimeRangeOption `json:"time_ranges"`
}
