package domain

// InstagramPost representa um post publicado e seus contadores de engajamento
type InstagramPost struct {
	ID          int64         `json:"id"`
	PostID      string        `json:"postId"`
	Caption     string        `json:"caption"`
	PostedAt    LocalDateTime `json:"postedAt"`
	Likes       int           `json:"likes"`
	Comments    int           `json:"comments"`
	Shares      int           `json:"shares"`
	Saves       int           `json:"saves"`
	Reach       int           `json:"reach"`
	Impressions int           `json:"impressions"`
	CreatedAt   LocalDateTime `json:"createdAt"`
	UpdatedAt   LocalDateTime `json:"updatedAt"`
}

// InstagramStory representa o story mais recente retornado pelo backend
type InstagramStory struct {
	ID            int64         `json:"id"`
	StoryID       string        `json:"storyId"`
	PostedAt      LocalDateTime `json:"postedAt"`
	Replies       int           `json:"replies"`
	Shares        int           `json:"shares"`
	Impressions   int           `json:"impressions"`
	ProfileVisits int           `json:"profileVisits"`
}
