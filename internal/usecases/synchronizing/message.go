package synchronizing

import (
	"bytes"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/vfg2006/kpi-dashboard/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	ErrMalformedMessage   = errors.New("mensagem de push malformada")
	ErrEmptyLegacyMessage = errors.New("mensagem legada vazia")
	ErrUnknownCollection  = errors.New("coleção desconhecida")
)

type envelope struct {
	Kind    domain.Collection   `json:"kind"`
	Version int64               `json:"version"`
	Data    jsoniter.RawMessage `json:"data"`
}

// DecodePushMessage interpreta o corpo de uma mensagem do tópico de atualizações.
// Aceita o envelope {"kind","version","data"}, o array legado sem envelope e um objeto único.
func DecodePushMessage(body []byte) (domain.PushUpdate, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return domain.PushUpdate{}, fmt.Errorf("%w: corpo vazio", ErrMalformedMessage)
	}

	switch trimmed[0] {
	case '[':
		return decodeLegacyArray(trimmed)
	case '{':
		var fields map[string]jsoniter.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return domain.PushUpdate{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		if _, ok := fields["kind"]; ok {
			return decodeEnvelope(trimmed)
		}
		return decodeLegacyItems(sniffCollection(fields), trimmed, true)
	default:
		return domain.PushUpdate{}, fmt.Errorf("%w: esperado objeto ou array", ErrMalformedMessage)
	}
}

func decodeEnvelope(body []byte) (domain.PushUpdate, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return domain.PushUpdate{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || data[0] != '[' {
		return domain.PushUpdate{}, fmt.Errorf("%w: data deve ser um array", ErrMalformedMessage)
	}

	update := domain.PushUpdate{Kind: env.Kind, Version: env.Version}
	switch env.Kind {
	case domain.CollectionPosts:
		update.Posts = []domain.InstagramPost{}
		if err := json.Unmarshal(data, &update.Posts); err != nil {
			return domain.PushUpdate{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
	case domain.CollectionKpis:
		update.Kpis = []domain.AccountKpi{}
		if err := json.Unmarshal(data, &update.Kpis); err != nil {
			return domain.PushUpdate{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
	default:
		return domain.PushUpdate{}, fmt.Errorf("%w: %q", ErrUnknownCollection, env.Kind)
	}

	return update, nil
}

func decodeLegacyArray(body []byte) (domain.PushUpdate, error) {
	var items []map[string]jsoniter.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return domain.PushUpdate{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if len(items) == 0 {
		return domain.PushUpdate{}, ErrEmptyLegacyMessage
	}

	return decodeLegacyItems(sniffCollection(items[0]), body, false)
}

// decodeLegacyItems decodifica o corpo na coleção identificada; single indica um objeto sem array.
func decodeLegacyItems(kind domain.Collection, body []byte, single bool) (domain.PushUpdate, error) {
	update := domain.PushUpdate{Kind: kind, Legacy: true}

	switch kind {
	case domain.CollectionPosts:
		if single {
			var post domain.InstagramPost
			if err := json.Unmarshal(body, &post); err != nil {
				return domain.PushUpdate{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
			}
			update.Posts = []domain.InstagramPost{post}
			return update, nil
		}
		if err := json.Unmarshal(body, &update.Posts); err != nil {
			return domain.PushUpdate{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
	case domain.CollectionKpis:
		if single {
			var kpi domain.AccountKpi
			if err := json.Unmarshal(body, &kpi); err != nil {
				return domain.PushUpdate{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
			}
			update.Kpis = []domain.AccountKpi{kpi}
			return update, nil
		}
		if err := json.Unmarshal(body, &update.Kpis); err != nil {
			return domain.PushUpdate{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
	default:
		return domain.PushUpdate{}, fmt.Errorf("%w: formato legado não reconhecido", ErrUnknownCollection)
	}

	return update, nil
}

// sniffCollection identifica a coleção pelo primeiro item: postId indica posts, followers indica KPIs.
func sniffCollection(item map[string]jsoniter.RawMessage) domain.Collection {
	if _, ok := item["postId"]; ok {
		return domain.CollectionPosts
	}
	if _, ok := item["followers"]; ok {
		return domain.CollectionKpis
	}
	return ""
}
