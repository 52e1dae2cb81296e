package synchronizing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vfg2006/kpi-dashboard/infrastructure/integrator/instagram/instagramclient"
	"github.com/vfg2006/kpi-dashboard/infrastructure/pushchannel/stomp"
	"github.com/vfg2006/kpi-dashboard/internal/domain"
	"github.com/vfg2006/kpi-dashboard/internal/metrics"
	"github.com/vfg2006/kpi-dashboard/pkg/log"
	"github.com/vfg2006/kpi-dashboard/pkg/utils"
)

var (
	ErrAlreadyStarted = errors.New("sincronizador já iniciado")
	ErrClosed         = errors.New("sincronizador encerrado")
	ErrInitialFetch   = errors.New("falha na carga inicial")
	ErrRefreshTrigger = errors.New("falha ao disparar refresh")
)

// PushSubscriber mantém a inscrição no canal de push até o contexto ser cancelado
type PushSubscriber interface {
	Run(ctx context.Context, handler stomp.Handler) error
}

// Synchronizer é a interface usada pelos handlers e pelo agendador
type Synchronizer interface {
	Refresh(ctx context.Context) (string, error)
	Status() domain.SyncStatus
}

// Service espelha em memória as coleções do backend.
// Todas as substituições são integrais, nunca há merge.
type Service struct {
	client     instagramclient.Client
	subscriber PushSubscriber
	now        func() time.Time

	mu      sync.RWMutex
	kpis    []domain.AccountKpi
	posts   []domain.InstagramPost
	story   *domain.InstagramStory
	status  domain.SyncStatus
	started bool
	closed  bool
	cancel  context.CancelFunc
	done    chan struct{}

	watchers    map[int]chan struct{}
	nextWatcher int
}

// NewService cria o sincronizador. subscriber pode ser nil quando não há canal de push configurado.
func NewService(client instagramclient.Client, subscriber PushSubscriber) *Service {
	return &Service{
		client:     client,
		subscriber: subscriber,
		now:        time.Now,
		kpis:       []domain.AccountKpi{},
		posts:      []domain.InstagramPost{},
		watchers:   make(map[int]chan struct{}),
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Start abre a inscrição no canal de push e faz a carga inicial via REST.
// Falhas da carga são registradas no status e não são repetidas.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		s.runSubscription(runCtx)
	}()

	s.fetchInitial(runCtx)
	return nil
}

func (s *Service) runSubscription(ctx context.Context) {
	if s.subscriber == nil {
		log.L.Warn("sync: canal de push não configurado, apenas a carga inicial será usada")
		return
	}

	err := s.subscriber.Run(ctx, s)
	if err == nil || ctx.Err() != nil {
		return
	}

	log.L.WithError(err).Error("sync: inscrição no canal de push encerrada")

	s.mu.Lock()
	s.status.Connected = false
	s.status.LastChannelErr = err.Error()
	s.mu.Unlock()
	s.notify()
}

func (s *Service) fetchInitial(ctx context.Context) {
	start := time.Now()
	defer metrics.ObserveFetchDuration(start)

	var (
		kpis  []domain.AccountKpi
		posts []domain.InstagramPost
		story *domain.InstagramStory
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result, err := s.client.GetAccountKpis(gctx)
		if err != nil {
			return fmt.Errorf("account-kpis: %w", err)
		}
		kpis = result
		return nil
	})
	g.Go(func() error {
		result, err := s.client.GetPosts(gctx)
		if err != nil {
			return fmt.Errorf("posts: %w", err)
		}
		posts = result
		return nil
	})
	g.Go(func() error {
		result, err := s.client.GetLatestStory(gctx)
		if err != nil {
			log.L.WithError(err).Warn("sync: não foi possível obter o último story")
			return nil
		}
		story = result
		return nil
	})

	err := g.Wait()
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrInitialFetch, err)
	}
	s.applySnapshot(kpis, posts, story, err)
}

func (s *Service) applySnapshot(kpis []domain.AccountKpi, posts []domain.InstagramPost, story *domain.InstagramStory, fetchErr error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	now := s.now()
	s.status.LastFetchAt = &now

	if fetchErr != nil {
		s.status.LastFetchError = fetchErr.Error()
		s.mu.Unlock()

		metrics.FetchErrors.Inc()
		log.L.WithError(fetchErr).Error("sync: carga inicial falhou, mantendo estado atual")
		s.notify()
		return
	}

	// um push versionado já recebido é mais novo que qualquer resposta REST
	if s.status.KpisVersion == 0 {
		s.kpis = copyKpis(kpis)
	}
	if s.status.PostsVersion == 0 {
		s.posts = copyPosts(posts)
	}
	if story != nil {
		storyCopy := *story
		s.story = &storyCopy
	}
	s.status.Loaded = true
	s.status.LastFetchError = ""
	kpiCount, postCount := len(s.kpis), len(s.posts)
	s.mu.Unlock()

	log.L.WithFields(log.Fields{
		"kpis":  kpiCount,
		"posts": postCount,
	}).Info("sync: carga inicial concluída")
	s.notify()
}

// HandleMessage aplica uma mensagem do canal de push. Mensagens inválidas são descartadas sem alterar o estado.
func (s *Service) HandleMessage(body []byte) {
	update, err := DecodePushMessage(body)
	if err != nil {
		result := metrics.ResultMalformed
		if errors.Is(err, ErrEmptyLegacyMessage) {
			result = metrics.ResultIgnored
			log.L.Debug("sync: array legado vazio ignorado")
		} else {
			log.L.WithError(err).Warn("sync: mensagem de push descartada")
		}
		metrics.IncPushMessage("", result)

		s.mu.Lock()
		s.status.DroppedUpdates++
		s.mu.Unlock()
		return
	}

	s.apply(update)
}

func (s *Service) apply(update domain.PushUpdate) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		metrics.IncPushMessage(string(update.Kind), metrics.ResultClosed)
		return
	}

	if update.Versioned() {
		current := s.versionOf(update.Kind)
		if update.Version <= current {
			s.status.DroppedUpdates++
			s.mu.Unlock()

			metrics.IncPushMessage(string(update.Kind), metrics.ResultStale)
			log.L.WithFields(log.Fields{
				"collection": update.Kind,
				"version":    update.Version,
				"current":    current,
			}).Debug("sync: atualização obsoleta descartada")
			return
		}
		s.setVersion(update.Kind, update.Version)
	}

	switch update.Kind {
	case domain.CollectionPosts:
		s.posts = copyPosts(update.Posts)
	case domain.CollectionKpis:
		s.kpis = copyKpis(update.Kpis)
	}

	now := s.now()
	s.status.LastPushAt = &now
	s.status.AppliedUpdates++
	s.mu.Unlock()

	metrics.IncPushMessage(string(update.Kind), metrics.ResultApplied)
	log.L.WithFields(log.Fields{
		"collection": update.Kind,
		"version":    update.Version,
		"size":       update.Len(),
	}).Debug("sync: coleção substituída")
	s.notify()
}

func (s *Service) versionOf(kind domain.Collection) int64 {
	if kind == domain.CollectionPosts {
		return s.status.PostsVersion
	}
	return s.status.KpisVersion
}

func (s *Service) setVersion(kind domain.Collection, version int64) {
	if kind == domain.CollectionPosts {
		s.status.PostsVersion = version
		return
	}
	s.status.KpisVersion = version
}

// HandleConnectionState registra mudanças na conexão do canal de push
func (s *Service) HandleConnectionState(connected bool, err error) {
	s.mu.Lock()
	s.status.Connected = connected
	if connected {
		s.status.LastChannelErr = ""
	} else if err != nil {
		s.status.LastChannelErr = err.Error()
		s.status.Reconnections++
	}
	s.mu.Unlock()

	metrics.SetChannelConnected(connected)
	if connected {
		log.L.Info("sync: inscrito no canal de atualizações")
	} else if err != nil {
		metrics.Reconnections.Inc()
		log.L.WithError(err).Warn("sync: canal de atualizações desconectado")
	}
	s.notify()
}

// Refresh pede ao backend uma nova coleta. Os dados chegam somente pelo canal de push.
func (s *Service) Refresh(ctx context.Context) (string, error) {
	refreshID, err := utils.GenerateID()
	if err != nil {
		return "", fmt.Errorf("erro ao gerar id do refresh: %w", err)
	}

	logger := log.ForContext(ctx).WithField("refresh_id", refreshID)
	logger.Info("sync: disparando refresh no backend")

	err = s.client.TriggerRefresh(ctx, refreshID)
	metrics.IncRefreshTrigger(err)
	if err != nil {
		logger.WithError(err).Error("sync: falha ao disparar refresh")
		return refreshID, fmt.Errorf("%w: %w", ErrRefreshTrigger, err)
	}

	now := s.now()
	s.mu.Lock()
	s.status.LastRefreshID = refreshID
	s.status.LastRefreshAt = &now
	s.mu.Unlock()

	s.notify()
	return refreshID, nil
}

// Snapshot retorna cópias das coleções e do status
func (s *Service) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := domain.Snapshot{
		Kpis:   copyKpis(s.kpis),
		Posts:  copyPosts(s.posts),
		Status: s.status,
	}
	if s.story != nil {
		story := *s.story
		snapshot.Story = &story
	}
	return snapshot
}

func (s *Service) Status() domain.SyncStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Subscribe devolve um canal que recebe um sinal a cada mudança de estado.
// Sinais são coalescidos; o canal é fechado no Close ou ao chamar a função retornada.
func (s *Service) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := s.nextWatcher
	s.nextWatcher++
	s.watchers[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if watcher, ok := s.watchers[id]; ok {
				delete(s.watchers, id)
				close(watcher)
			}
		})
	}
}

func (s *Service) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Close encerra a inscrição e aguarda o término. Depois dele nenhuma mensagem é aplicada.
func (s *Service) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	cancel, done := s.cancel, s.done
	for id, ch := range s.watchers {
		delete(s.watchers, id)
		close(ch)
	}
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	log.L.Info("sync: sincronizador encerrado")
}

func copyKpis(kpis []domain.AccountKpi) []domain.AccountKpi {
	out := make([]domain.AccountKpi, len(kpis))
	copy(out, kpis)
	return out
}

func copyPosts(posts []domain.InstagramPost) []domain.InstagramPost {
	out := make([]domain.InstagramPost, len(posts))
	copy(out, posts)
	return out
}
