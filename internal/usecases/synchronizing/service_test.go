package synchronizing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vfg2006/kpi-dashboard/infrastructure/integrator/instagram/mocks"
	"github.com/vfg2006/kpi-dashboard/infrastructure/pushchannel/stomp"
	"github.com/vfg2006/kpi-dashboard/internal/domain"
)

var fixedNow = time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)

type fakeSubscriber struct {
	handlers chan stomp.Handler
	stopped  chan struct{}
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{
		handlers: make(chan stomp.Handler, 1),
		stopped:  make(chan struct{}),
	}
}

func (f *fakeSubscriber) Run(ctx context.Context, handler stomp.Handler) error {
	f.handlers <- handler
	<-ctx.Done()
	close(f.stopped)
	return nil
}

func newTestService(t *testing.T) (*Service, *mocks.MockClient) {
	t.Helper()
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	service := NewService(client, nil).WithClock(func() time.Time { return fixedNow })
	return service, client
}

func kpi(date string, followers int) domain.AccountKpi {
	return domain.AccountKpi{Date: domain.MustDate(date), Followers: followers}
}

func TestService_StartCarregaColecoes(t *testing.T) {
	service, client := newTestService(t)
	subscriber := newFakeSubscriber()
	service.subscriber = subscriber

	client.EXPECT().GetAccountKpis(gomock.Any()).Return([]domain.AccountKpi{kpi("2024-01-01", 1000), kpi("2024-01-02", 1050)}, nil)
	client.EXPECT().GetPosts(gomock.Any()).Return([]domain.InstagramPost{{PostID: "p1"}}, nil)
	client.EXPECT().GetLatestStory(gomock.Any()).Return(&domain.InstagramStory{StoryID: "s1"}, nil)

	require.NoError(t, service.Start(context.Background()))

	var handler stomp.Handler
	select {
	case handler = <-subscriber.handlers:
	case <-time.After(2 * time.Second):
		t.Fatal("inscrição no canal de push não foi aberta")
	}
	assert.Same(t, service, handler)

	snapshot := service.Snapshot()
	assert.Len(t, snapshot.Kpis, 2)
	assert.Len(t, snapshot.Posts, 1)
	require.NotNil(t, snapshot.Story)
	assert.Equal(t, "s1", snapshot.Story.StoryID)
	assert.True(t, snapshot.Status.Loaded)
	assert.Empty(t, snapshot.Status.LastFetchError)
	require.NotNil(t, snapshot.Status.LastFetchAt)
	assert.Equal(t, fixedNow, *snapshot.Status.LastFetchAt)

	assert.ErrorIs(t, service.Start(context.Background()), ErrAlreadyStarted)

	service.Close()
	select {
	case <-subscriber.stopped:
	default:
		t.Fatal("Close deveria encerrar a inscrição antes de retornar")
	}
}

func TestService_StartFalhaNaCarga(t *testing.T) {
	service, client := newTestService(t)

	client.EXPECT().GetAccountKpis(gomock.Any()).Return(nil, errors.New("timeout"))
	client.EXPECT().GetPosts(gomock.Any()).Return([]domain.InstagramPost{{PostID: "p1"}}, nil).AnyTimes()
	client.EXPECT().GetLatestStory(gomock.Any()).Return(nil, nil).AnyTimes()

	require.NoError(t, service.Start(context.Background()))
	defer service.Close()

	snapshot := service.Snapshot()
	assert.False(t, snapshot.Status.Loaded)
	assert.Contains(t, snapshot.Status.LastFetchError, "timeout")
	assert.Empty(t, snapshot.Kpis)
	assert.Empty(t, snapshot.Posts, "carga é tudo ou nada")
}

func TestService_StoryOpcional(t *testing.T) {
	service, client := newTestService(t)

	client.EXPECT().GetAccountKpis(gomock.Any()).Return([]domain.AccountKpi{kpi("2024-01-01", 1000)}, nil)
	client.EXPECT().GetPosts(gomock.Any()).Return([]domain.InstagramPost{}, nil)
	client.EXPECT().GetLatestStory(gomock.Any()).Return(nil, errors.New("story indisponível"))

	require.NoError(t, service.Start(context.Background()))
	defer service.Close()

	snapshot := service.Snapshot()
	assert.True(t, snapshot.Status.Loaded)
	assert.Nil(t, snapshot.Story)
	assert.Len(t, snapshot.Kpis, 1)
}

func TestService_HandleMessageRegraDeVersao(t *testing.T) {
	service, _ := newTestService(t)

	service.HandleMessage([]byte(`{"kind":"posts","version":2,"data":[{"postId":"v2"}]}`))
	service.HandleMessage([]byte(`{"kind":"posts","version":1,"data":[{"postId":"v1"}]}`))
	service.HandleMessage([]byte(`{"kind":"posts","version":2,"data":[{"postId":"v2-bis"}]}`))

	snapshot := service.Snapshot()
	require.Len(t, snapshot.Posts, 1)
	assert.Equal(t, "v2", snapshot.Posts[0].PostID)
	assert.Equal(t, int64(2), snapshot.Status.PostsVersion)
	assert.Equal(t, int64(1), snapshot.Status.AppliedUpdates)
	assert.Equal(t, int64(2), snapshot.Status.DroppedUpdates)

	service.HandleMessage([]byte(`{"kind":"posts","version":3,"data":[]}`))
	snapshot = service.Snapshot()
	assert.Empty(t, snapshot.Posts)
	assert.NotNil(t, snapshot.Posts)
	assert.Equal(t, int64(3), snapshot.Status.PostsVersion)

	// versões são independentes por coleção
	service.HandleMessage([]byte(`{"kind":"kpis","version":1,"data":[{"followers":10}]}`))
	snapshot = service.Snapshot()
	assert.Len(t, snapshot.Kpis, 1)
	assert.Equal(t, int64(1), snapshot.Status.KpisVersion)
}

func TestService_HandleMessageLegado(t *testing.T) {
	service, _ := newTestService(t)

	service.HandleMessage([]byte(`[{"postId":"a"},{"postId":"b"}]`))
	service.HandleMessage([]byte(`[{"postId":"c"}]`))
	service.HandleMessage([]byte(`[]`))

	snapshot := service.Snapshot()
	require.Len(t, snapshot.Posts, 1, "substituição é integral, nunca acumula")
	assert.Equal(t, "c", snapshot.Posts[0].PostID)
	assert.Equal(t, int64(0), snapshot.Status.PostsVersion)
	assert.Equal(t, int64(2), snapshot.Status.AppliedUpdates)
	require.NotNil(t, snapshot.Status.LastPushAt)
	assert.Equal(t, fixedNow, *snapshot.Status.LastPushAt)
}

func TestService_PushAposCargaVazia(t *testing.T) {
	service, _ := newTestService(t)
	service.applySnapshot([]domain.AccountKpi{}, []domain.InstagramPost{}, nil, nil)

	service.HandleMessage([]byte(`[{"postId":"p1","likes":5}]`))

	snapshot := service.Snapshot()
	require.Len(t, snapshot.Posts, 1)
	assert.Equal(t, "p1", snapshot.Posts[0].PostID)
	assert.Equal(t, 5, snapshot.Posts[0].Likes)
	assert.True(t, snapshot.Status.Loaded)
}

func TestService_ObjetoUnicoSubstituiColecao(t *testing.T) {
	service, _ := newTestService(t)
	service.HandleMessage([]byte(`[{"postId":"a"},{"postId":"b"},{"postId":"c"}]`))

	service.HandleMessage([]byte(`{"postId":"d","likes":3}`))

	snapshot := service.Snapshot()
	require.Len(t, snapshot.Posts, 1, "objeto único é uma coleção de um item, sem merge")
	assert.Equal(t, "d", snapshot.Posts[0].PostID)
}

func TestService_HandleMessageMalformada(t *testing.T) {
	service, _ := newTestService(t)
	service.HandleMessage([]byte(`[{"postId":"a"}]`))

	service.HandleMessage([]byte(`{quebrado`))

	snapshot := service.Snapshot()
	require.Len(t, snapshot.Posts, 1)
	assert.Equal(t, "a", snapshot.Posts[0].PostID)
	assert.Equal(t, int64(1), snapshot.Status.DroppedUpdates)
}

func TestService_CargaRESTNaoSobrescreveVersionado(t *testing.T) {
	service, _ := newTestService(t)
	service.HandleMessage([]byte(`{"kind":"kpis","version":4,"data":[{"followers":2000}]}`))

	service.applySnapshot(
		[]domain.AccountKpi{kpi("2024-01-01", 1000)},
		[]domain.InstagramPost{{PostID: "rest"}},
		nil,
		nil,
	)

	snapshot := service.Snapshot()
	require.Len(t, snapshot.Kpis, 1)
	assert.Equal(t, 2000, snapshot.Kpis[0].Followers)
	require.Len(t, snapshot.Posts, 1)
	assert.Equal(t, "rest", snapshot.Posts[0].PostID)
}

func TestService_SnapshotRetornaCopia(t *testing.T) {
	service, _ := newTestService(t)
	service.HandleMessage([]byte(`[{"postId":"a","likes":1}]`))

	first := service.Snapshot()
	first.Posts[0].Likes = 99

	second := service.Snapshot()
	assert.Equal(t, 1, second.Posts[0].Likes)
}

func TestService_Subscribe(t *testing.T) {
	service, _ := newTestService(t)

	changes, cancel := service.Subscribe()
	service.HandleMessage([]byte(`[{"postId":"a"}]`))
	service.HandleMessage([]byte(`[{"postId":"b"}]`))

	select {
	case _, ok := <-changes:
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("mudança não notificada")
	}

	cancel()
	cancel()
	_, ok := <-changes
	assert.False(t, ok)
}

func TestService_Close(t *testing.T) {
	service, _ := newTestService(t)
	changes, _ := service.Subscribe()

	service.Close()
	service.Close()

	_, ok := <-changes
	assert.False(t, ok)

	service.HandleMessage([]byte(`[{"postId":"depois"}]`))
	assert.Empty(t, service.Snapshot().Posts)

	late, _ := service.Subscribe()
	_, ok = <-late
	assert.False(t, ok)

	assert.ErrorIs(t, service.Start(context.Background()), ErrClosed)
}

func TestService_Refresh(t *testing.T) {
	service, client := newTestService(t)

	var sentID string
	client.EXPECT().TriggerRefresh(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, id string) error {
		sentID = id
		return nil
	})

	refreshID, err := service.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, refreshID, 6)
	assert.Equal(t, refreshID, sentID)

	status := service.Status()
	assert.Equal(t, refreshID, status.LastRefreshID)
	require.NotNil(t, status.LastRefreshAt)
}

func TestService_RefreshFalha(t *testing.T) {
	service, client := newTestService(t)
	client.EXPECT().TriggerRefresh(gomock.Any(), gomock.Any()).Return(errors.New("503"))

	refreshID, err := service.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrRefreshTrigger)
	assert.NotEmpty(t, refreshID)
	assert.Empty(t, service.Status().LastRefreshID)
}

func TestService_HandleConnectionState(t *testing.T) {
	service, _ := newTestService(t)

	service.HandleConnectionState(true, nil)
	assert.True(t, service.Status().Connected)

	service.HandleConnectionState(false, errors.New("conexão resetada"))
	status := service.Status()
	assert.False(t, status.Connected)
	assert.Equal(t, "conexão resetada", status.LastChannelErr)
	assert.Equal(t, int64(1), status.Reconnections)

	service.HandleConnectionState(true, nil)
	assert.Empty(t, service.Status().LastChannelErr)
}
