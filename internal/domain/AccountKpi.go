package domain

// AccountKpi representa um snapshot diário das métricas da conta.
// O backend entrega a coleção ordenada por data (mais antigo -> mais recente).
type AccountKpi struct {
	ID                  int64     `json:"id"`
	Date                LocalDate `json:"date"`
	Followers           int       `json:"followers"`
	NewFollowers        int       `json:"newFollowers"`
	ProfileViews        int       `json:"profileViews"`
	Reach               int       `json:"reach"`
	PinnedReelComments  int       `json:"pinnedReelComments"`
	PinnedReelShares    int       `json:"pinnedReelShares"`
	PinnedReelLikes     int       `json:"pinnedReelLikes"`
	PinnedReelSaves     int       `json:"pinnedReelSaves"`
	PinnedReelWatchTime int       `json:"pinnedReelWatchTime"`
}
