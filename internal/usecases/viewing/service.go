package viewing

import (
	"time"

	"github.com/vfg2006/kpi-dashboard/internal/domain"
)

// SnapshotSource fornece o estado atual espelhado do backend
type SnapshotSource interface {
	Snapshot() domain.Snapshot
	Subscribe() (<-chan struct{}, func())
}

// Viewer define a interface usada pelos handlers para montar o painel
type Viewer interface {
	// Dashboard deriva o modelo de renderização para os filtros informados
	Dashboard(query domain.ViewQuery) domain.DashboardView

	// Options retorna as opções de métrica e janela de tempo
	Options() domain.DashboardOptions

	// Changes notifica a cada alteração do estado; a função retornada libera a inscrição
	Changes() (<-chan struct{}, func())
}

type Service struct {
	source       SnapshotSource
	followerGoal int
	now          func() time.Time
}

func NewService(source SnapshotSource, followerGoal int) *Service {
	return &Service{
		source:       source,
		followerGoal: followerGoal,
		now:          time.Now,
	}
}

// WithClock substitui o relógio usado quando a consulta não fixa o instante
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Dashboard(query domain.ViewQuery) domain.DashboardView {
	snapshot := s.source.Snapshot()

	now := s.now()
	if query.AsOf != nil {
		now = *query.AsOf
	}

	metric := query.Metric
	if metric == "" {
		metric = domain.DefaultMetric
	}

	timeRange := query.TimeRange
	if timeRange == "" {
		timeRange = domain.DefaultTimeRange
	}

	view := Derive(ViewInput{
		Kpis:         snapshot.Kpis,
		Posts:        snapshot.Posts,
		Story:        snapshot.Story,
		Metric:       metric,
		TimeRange:    timeRange,
		Now:          now,
		FollowerGoal: s.followerGoal,
	})

	status := snapshot.Status
	view.Sync = &status

	return view
}

func (s *Service) Options() domain.DashboardOptions {
	return domain.DashboardOptions{
		Metrics:    domain.MetricOptions,
		TimeRanges: domain.TimeRangeOptions,
	}
}

func (s *Service) Changes() (<-chan struct{}, func()) {
	return s.source.Subscribe()
}
