package domain

import "time"

// Snapshot é uma cópia do estado espelhado do backend
type Snapshot struct {
	Kpis   []AccountKpi
	Posts  []InstagramPost
	Story  *InstagramStory
	Status SyncStatus
}

// SyncStatus descreve a saúde da sincronização para exibição ao usuário
type SyncStatus struct {
	Loaded         bool       `json:"loaded"`
	Connected      bool       `json:"connected"`
	LastFetchAt    *time.Time `json:"last_fetch_at,omitempty"`
	LastFetchError string     `json:"last_fetch_error,omitempty"`
	LastChannelErr string     `json:"last_channel_error,omitempty"`
	LastPushAt     *time.Time `json:"last_push_at,omitempty"`
	LastRefreshID  string     `json:"last_refresh_id,omitempty"`
	LastRefreshAt  *time.Time `json:"last_refresh_at,omitempty"`
	KpisVersion    int64      `json:"kpis_version"`
	PostsVersion   int64      `json:"posts_version"`
	AppliedUpdates int64      `json:"applied_updates"`
	DroppedUpdates int64      `json:"dropped_updates"`
	Reconnections  int64      `json:"reconnections"`
}
