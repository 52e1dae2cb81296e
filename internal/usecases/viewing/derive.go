package viewing

import (
	"math"
	"sort"
	"time"

	"github.com/vfg2006/kpi-dashboard/internal/domain"
	"github.com/vfg2006/kpi-dashboard/pkg/utils"
)

const (
	// DefaultFollowerGoal é a meta de seguidores usada na barra de progresso
	DefaultFollowerGoal = 150000
	// ReachWindowDays é a janela do card e do gráfico de alcance
	ReachWindowDays = 30
)

// ViewInput reúne tudo que a derivação precisa. Now é explícito para manter Derive pura.
type ViewInput struct {
	Kpis         []domain.AccountKpi
	Posts        []domain.InstagramPost
	Story        *domain.InstagramStory
	Metric       domain.Metric
	TimeRange    domain.TimeRange
	Now          time.Time
	FollowerGoal int
}

// Derive calcula o modelo de renderização a partir das coleções e filtros.
// Não tem efeitos colaterais: entradas iguais sempre geram a mesma saída.
func Derive(in ViewInput) domain.DashboardView {
	latest, previous := LatestAndPrevious(in.Kpis)

	goal := in.FollowerGoal
	if goal <= 0 {
		goal = DefaultFollowerGoal
	}

	metricOption, ok := domain.FindMetric(string(in.Metric))
	if !ok {
		metricOption, _ = domain.FindMetric(string(domain.DefaultMetric))
	}

	view := domain.DashboardView{
		GeneratedAt: in.Now,
		Loading:     latest == nil,
		Filters:     buildFilters(metricOption, in.TimeRange),
		Followers: domain.FollowersCard{
			Goal: goal,
		},
		BarChart: domain.BarChart{
			Metric: metricOption.Value,
			Label:  metricOption.Label,
			Points: BarPoints(FilterPosts(in.Posts, in.TimeRange, in.Now), metricOption.Value),
		},
		ReachChart: ReachSeries(in.Kpis, in.Now, ReachWindowDays),
	}

	total, records := RollingReach(in.Kpis, in.Now, ReachWindowDays)
	view.Reach = domain.ReachCard{Total: total, WindowDays: ReachWindowDays, Records: records}

	if latest != nil {
		view.Followers.Followers = intPtr(latest.Followers)
		view.Followers.GoalProgress = GoalProgress(latest.Followers, goal)

		view.NewFollowers.Value = intPtr(latest.NewFollowers)
		view.ProfileViews.Value = intPtr(latest.ProfileViews)

		view.PinnedReel = &domain.PinnedReelCard{
			Comments:      latest.PinnedReelComments,
			Shares:        latest.PinnedReelShares,
			Likes:         latest.PinnedReelLikes,
			Saves:         latest.PinnedReelSaves,
			AvgWatchTimeS: latest.PinnedReelWatchTime,
		}
	}

	if latest != nil && previous != nil {
		view.NewFollowers.Delta = ComputeDelta(latest.NewFollowers, previous.NewFollowers)
		view.ProfileViews.Delta = ComputeDelta(latest.ProfileViews, previous.ProfileViews)
	}

	if post := LatestPost(in.Posts); post != nil {
		view.LatestPost = &domain.LatestPostCard{
			PostID:   post.PostID,
			Caption:  post.Caption,
			PostedAt: post.PostedAt,
			Comments: post.Comments,
			Shares:   post.Shares,
			Likes:    post.Likes,
			Saves:    post.Saves,
		}
	}

	if in.Story != nil {
		view.LatestStory = &domain.LatestStoryCard{
			StoryID:       in.Story.StoryID,
			PostedAt:      in.Story.PostedAt,
			Replies:       in.Story.Replies,
			Shares:        in.Story.Shares,
			Impressions:   in.Story.Impressions,
			ProfileVisits: in.Story.ProfileVisits,
		}
	}

	return view
}

func buildFilters(metric domain.MetricOption, timeRange domain.TimeRange) domain.ViewFilters {
	filters := domain.ViewFilters{
		Metric:      metric.Value,
		MetricLabel: metric.Label,
		TimeRange:   timeRange,
	}

	if option, ok := domain.FindTimeRange(string(timeRange)); ok {
		filters.TimeRangeLabel = option.Label
		filters.TimeRangeDays = option.Days
		filters.TimeRangeMatched = true
	}

	return filters
}

// LatestAndPrevious retorna o último e o penúltimo elemento da coleção.
// A ordem entregue pelo backend é confiável: o último elemento é o mais recente.
func LatestAndPrevious(kpis []domain.AccountKpi) (latest, previous *domain.AccountKpi) {
	n := len(kpis)
	if n >= 1 {
		latest = &kpis[n-1]
	}
	if n >= 2 {
		previous = &kpis[n-2]
	}
	return latest, previous
}

// ComputeDelta calcula latest - previous; apenas valores estritamente positivos são melhora
func ComputeDelta(latest, previous int) *domain.Delta {
	value := latest - previous
	return &domain.Delta{
		Value:    value,
		Improved: value > 0,
	}
}

// FilterPosts aplica a janela de tempo. Janelas desconhecidas incluem todos os posts.
func FilterPosts(posts []domain.InstagramPost, timeRange domain.TimeRange, now time.Time) []domain.InstagramPost {
	filtered := make([]domain.InstagramPost, 0, len(posts))

	option, ok := domain.FindTimeRange(string(timeRange))
	for _, post := range posts {
		if !ok || option.Includes(now, post.PostedAt.Time) {
			filtered = append(filtered, post)
		}
	}

	return filtered
}

// RollingReach soma o alcance dos snapshots dentro da janela de dias
func RollingReach(kpis []domain.AccountKpi, now time.Time, windowDays int) (total int, records int) {
	for _, kpi := range kpis {
		if domain.WithinDays(now, kpi.Date.Time, windowDays) {
			total += kpi.Reach
			records++
		}
	}
	return total, records
}

// GoalProgress retorna o percentual da meta atingido, sempre entre 0 e 100
func GoalProgress(followers int, goal int) float64 {
	if goal <= 0 || followers <= 0 {
		return 0
	}

	ratio := math.Min(float64(followers)/float64(goal), 1.0)
	return utils.RoundWithTwoDecimalPlace(ratio * 100)
}

// BarPoints projeta a métrica escolhida em cada post, na ordem em que chegaram
func BarPoints(posts []domain.InstagramPost, metric domain.Metric) []domain.BarPoint {
	points := make([]domain.BarPoint, 0, len(posts))
	for _, post := range posts {
		points = append(points, domain.BarPoint{
			PostID:   post.PostID,
			PostedAt: post.PostedAt,
			Value:    metric.ValueOf(post),
		})
	}
	return points
}

// ReachSeries monta a série do gráfico de linha com os snapshots dentro da janela
func ReachSeries(kpis []domain.AccountKpi, now time.Time, windowDays int) []domain.ReachPoint {
	series := make([]domain.ReachPoint, 0, len(kpis))
	for _, kpi := range kpis {
		if !domain.WithinDays(now, kpi.Date.Time, windowDays) {
			continue
		}
		series = append(series, domain.ReachPoint{Date: kpi.Date, Reach: kpi.Reach})
	}

	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date.Time)
	})

	return series
}

// LatestPost retorna o post com o postedAt mais recente. Em empate vence o último da coleção.
func LatestPost(posts []domain.InstagramPost) *domain.InstagramPost {
	var latest *domain.InstagramPost
	for i := range posts {
		if latest == nil || !posts[i].PostedAt.Before(latest.PostedAt.Time) {
			latest = &posts[i]
		}
	}
	return latest
}

func intPtr(v int) *int {
	return &v
}
