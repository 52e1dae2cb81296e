package stomp

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	gostomp "github.com/go-stomp/stomp/v3"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/pkg/errors"
	"golang.org/x/net/websocket"

	"github.com/vfg2006/kpi-dashboard/pkg/log"
)

const (
	DefaultTopic             = "/topic/kpi-updates"
	defaultInitialInterval   = time.Second
	defaultMaxInterval       = 30 * time.Second
	defaultDialTimeout       = 10 * time.Second
	defaultDisconnectTimeout = 2 * time.Second
)

var (
	ErrRetriesExhausted = errors.New("stomp: tentativas de reconexão esgotadas")
	ErrBrokerError      = errors.New("stomp: broker respondeu com ERROR")
	ErrInvalidURL       = errors.New("stomp: url do websocket inválida")
	ErrSessionClosed    = errors.New("stomp: inscrição encerrada pelo broker")
)

// Handler recebe os corpos das mensagens e as mudanças de estado da conexão.
// As chamadas são sequenciais, nunca concorrentes.
type Handler interface {
	HandleMessage(body []byte)
	HandleConnectionState(connected bool, err error)
}

type Config struct {
	URL             string
	Origin          string
	Topic           string
	Host            string
	InitialInterval time.Duration
	MaxInterval     time.Duration
	// MaxRetries limita as reconexões seguidas sem sucesso. Zero significa sem limite.
	MaxRetries  int
	DialTimeout time.Duration
}

type dialFunc func(ctx context.Context) (io.ReadWriteCloser, error)

type Subscriber struct {
	cfg               Config
	dial              dialFunc
	disconnectTimeout time.Duration
}

func NewSubscriber(cfg Config) (*Subscriber, error) {
	target, err := url.Parse(cfg.URL)
	if err != nil || target.Host == "" {
		return nil, errors.Wrapf(ErrInvalidURL, "%q", cfg.URL)
	}

	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	if cfg.Host == "" {
		cfg.Host = target.Hostname()
	}
	if cfg.Origin == "" {
		cfg.Origin = originFor(target)
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = defaultInitialInterval
	}
	if cfg.MaxInterval < cfg.InitialInterval {
		cfg.MaxInterval = defaultMaxInterval
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}

	s := &Subscriber{cfg: cfg, disconnectTimeout: defaultDisconnectTimeout}
	s.dial = s.dialWebsocket
	return s, nil
}

func originFor(target *url.URL) string {
	scheme := "http"
	if target.Scheme == "wss" || target.Scheme == "https" {
		scheme = "https"
	}
	return scheme + "://" + target.Host
}

// Run mantém a inscrição no tópico até o contexto ser cancelado.
// Retorna nil no cancelamento e ErrRetriesExhausted quando a política de reconexão desiste.
func (s *Subscriber) Run(ctx context.Context, handler Handler) error {
	policy := s.newBackOff()
	logger := log.L.WithField("topic", s.cfg.Topic)

	for {
		connected, err := s.session(ctx, handler)
		if ctx.Err() != nil {
			if connected {
				handler.HandleConnectionState(false, nil)
			}
			return nil
		}

		if connected {
			policy.Reset()
		}
		handler.HandleConnectionState(false, err)

		wait := policy.NextBackOff()
		if wait == backoff.Stop {
			logger.WithError(err).Error("stomp: desistindo de reconectar ao canal de atualizações")
			return errors.Wrap(ErrRetriesExhausted, errorMessage(err))
		}

		logger.WithError(err).Warnf("stomp: conexão perdida, nova tentativa em %s", wait)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

func errorMessage(err error) string {
	if err == nil {
		return "conexão encerrada pelo broker"
	}
	return err.Error()
}

func (s *Subscriber) newBackOff() backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.cfg.InitialInterval
	exp.MaxInterval = s.cfg.MaxInterval
	exp.MaxElapsedTime = 0
	exp.Reset()

	if s.cfg.MaxRetries > 0 {
		return backoff.WithMaxRetries(exp, uint64(s.cfg.MaxRetries))
	}
	return exp
}

// session executa uma conexão completa. O retorno indica se o CONNECTED chegou a ser recebido.
func (s *Subscriber) session(ctx context.Context, handler Handler) (bool, error) {
	transport, err := s.dial(ctx)
	if err != nil {
		return false, errors.Wrap(err, "stomp: falha ao conectar")
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	established := make(chan *gostomp.Conn, 1)
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		<-sessionCtx.Done()

		var conn *gostomp.Conn
		select {
		case conn = <-established:
		default:
		}
		if conn != nil && ctx.Err() != nil {
			s.disconnect(conn)
		}
		_ = transport.Close()
	}()
	defer func() {
		cancel()
		<-closed
	}()

	// heart-beats desligados: o broker simples do Spring não os envia
	conn, err := gostomp.Connect(transport,
		gostomp.ConnOpt.Host(s.cfg.Host),
		gostomp.ConnOpt.HeartBeat(0, 0),
	)
	if err != nil {
		if ctx.Err() != nil {
			return false, nil
		}
		return false, brokerError(err, "stomp: falha no CONNECT")
	}
	established <- conn

	sub, err := s.subscribe(conn)
	if err != nil {
		return false, err
	}
	handler.HandleConnectionState(true, nil)

	for {
		select {
		case <-ctx.Done():
			return true, nil
		case msg, ok := <-sub.C:
			if !ok || msg == nil {
				if ctx.Err() != nil {
					return true, nil
				}
				return true, ErrSessionClosed
			}
			if msg.Err != nil {
				if ctx.Err() != nil {
					return true, nil
				}
				return true, brokerError(msg.Err, "stomp: leitura interrompida")
			}
			handler.HandleMessage(msg.Body)
		}
	}
}

func (s *Subscriber) subscribe(conn *gostomp.Conn) (*gostomp.Subscription, error) {
	id, err := gonanoid.New(10)
	if err != nil {
		return nil, errors.Wrap(err, "stomp: falha ao gerar id da inscrição")
	}

	sub, err := conn.Subscribe(s.cfg.Topic, gostomp.AckAuto, gostomp.SubscribeOpt.Id("sub-"+id))
	if err != nil {
		return nil, errors.Wrap(err, "stomp: falha ao enviar SUBSCRIBE")
	}
	return sub, nil
}

// disconnect envia DISCONNECT e aguarda o RECEIPT por tempo limitado
func (s *Subscriber) disconnect(conn *gostomp.Conn) {
	done := make(chan error, 1)
	go func() {
		done <- conn.Disconnect()
	}()

	select {
	case err := <-done:
		if err != nil {
			log.L.WithError(err).Debug("stomp: DISCONNECT sem confirmação")
		}
	case <-time.After(s.disconnectTimeout):
		log.L.Debug("stomp: broker não confirmou o DISCONNECT a tempo")
	}
}

// brokerError marca com ErrBrokerError os erros originados de um frame ERROR
func brokerError(err error, message string) error {
	var frameErr gostomp.Error
	if errors.As(err, &frameErr) && frameErr.Frame != nil {
		log.L.WithField("broker_message", frameErr.Message).Error("stomp: broker enviou ERROR")
		return errors.Wrap(ErrBrokerError, frameErr.Message)
	}

	var frameErrPtr *gostomp.Error
	if errors.As(err, &frameErrPtr) && frameErrPtr != nil && frameErrPtr.Frame != nil {
		log.L.WithField("broker_message", frameErrPtr.Message).Error("stomp: broker enviou ERROR")
		return errors.Wrap(ErrBrokerError, frameErrPtr.Message)
	}

	return errors.Wrap(err, message)
}

func (s *Subscriber) dialWebsocket(ctx context.Context) (io.ReadWriteCloser, error) {
	wsCfg, err := websocket.NewConfig(s.cfg.URL, s.cfg.Origin)
	if err != nil {
		return nil, errors.Wrap(err, "stomp: configuração do websocket inválida")
	}

	dialCtx, cancel := context.WithTimeout(ctx, s.cfg.DialTimeout)
	defer cancel()

	ws, err := wsCfg.DialContext(dialCtx)
	if err != nil {
		return nil, err
	}
	// frames de texto, que é o que o broker STOMP do Spring espera
	ws.PayloadType = websocket.TextFrame
	return ws, nil
}
