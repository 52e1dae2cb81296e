package instagramclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/vfg2006/kpi-dashboard/internal/config"
	"github.com/vfg2006/kpi-dashboard/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	accountKpisPath = "/api/instagram/account-kpis"
	postsPath       = "/api/instagram/posts"
	latestStoryPath = "/api/instagram/latest-story"
	refreshPath     = "/api/instagram/refresh"

	// RefreshIDHeader acompanha o disparo de refresh para correlação nos logs do backend
	RefreshIDHeader = "X-Refresh-ID"

	defaultTimeout = 15 * time.Second
)

// ErrUnexpectedStatus é retornado quando o backend responde com status diferente de 2xx
var ErrUnexpectedStatus = errors.New("instagram: status inesperado")

type Client interface {
	GetAccountKpis(ctx context.Context) ([]domain.AccountKpi, error)
	GetPosts(ctx context.Context) ([]domain.InstagramPost, error)
	GetLatestStory(ctx context.Context) (*domain.InstagramStory, error)
	TriggerRefresh(ctx context.Context, refreshID string) error
}

type InstagramClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg *config.Config) Client {
	timeout := cfg.Instagram.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &InstagramClient{
		baseURL: strings.TrimRight(cfg.Instagram.APIURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetAccountKpis busca a coleção de snapshots diários da conta, do mais antigo ao mais recente
func (c *InstagramClient) GetAccountKpis(ctx context.Context) ([]domain.AccountKpi, error) {
	var kpis []domain.AccountKpi
	if err := c.getJSON(ctx, accountKpisPath, &kpis); err != nil {
		return nil, errors.Wrap(err, "erro ao buscar KPIs da conta")
	}

	if kpis == nil {
		kpis = []domain.AccountKpi{}
	}
	return kpis, nil
}

// GetPosts busca a coleção de posts publicados
func (c *InstagramClient) GetPosts(ctx context.Context) ([]domain.InstagramPost, error) {
	var posts []domain.InstagramPost
	if err := c.getJSON(ctx, postsPath, &posts); err != nil {
		return nil, errors.Wrap(err, "erro ao buscar posts")
	}

	if posts == nil {
		posts = []domain.InstagramPost{}
	}
	return posts, nil
}

// GetLatestStory busca o story mais recente. Retorna nil quando o backend não possui nenhum.
func (c *InstagramClient) GetLatestStory(ctx context.Context) (*domain.InstagramStory, error) {
	var story domain.InstagramStory
	err := c.getJSON(ctx, latestStoryPath, &story)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(err, "erro ao buscar o story mais recente")
	}

	return &story, nil
}

// TriggerRefresh pede ao backend que atualize os dados. O corpo da resposta é ignorado;
// os dados atualizados chegam apenas pelo canal de push.
func (c *InstagramClient) TriggerRefresh(ctx context.Context, refreshID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+refreshPath, nil)
	if err != nil {
		return errors.Wrap(err, "erro ao criar a requisição de refresh")
	}
	req.Header.Set("Content-Type", "application/json")
	if refreshID != "" {
		req.Header.Set(RefreshIDHeader, refreshID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "erro ao disparar refresh")
	}
	defer resp.Body.Close()

	if _, err := c.handleResponse(resp); err != nil {
		return errors.Wrap(err, "refresh recusado pelo backend")
	}

	return nil
}

func (c *InstagramClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.Wrap(err, "erro ao criar a requisição")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "erro ao executar a requisição")
	}
	defer resp.Body.Close()

	body, err := c.handleResponse(resp)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "erro ao decodificar a resposta")
	}

	return nil
}

// StatusError carrega o status e o corpo de uma resposta não 2xx
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d %s", ErrUnexpectedStatus.Error(), e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// handleResponse lê o corpo e converte respostas não 2xx em StatusError
func (c *InstagramClient) handleResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler resposta: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	return body, nil
}
