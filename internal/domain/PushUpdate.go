package domain

// Collection identifica qual coleção uma atualização substitui
type Collection string

const (
	CollectionPosts Collection = "posts"
	CollectionKpis  Collection = "kpis"
)

// PushUpdate é uma mensagem do canal de push já decodificada.
// Mensagens legadas (array sem envelope) não carregam versão.
type PushUpdate struct {
	Kind    Collection
	Version int64
	Legacy  bool
	Kpis    []AccountKpi
	Posts   []InstagramPost
}

// Versioned indica se a atualização deve passar pela regra de versão
func (u PushUpdate) Versioned() bool {
	return !u.Legacy && u.Version > 0
}

// Len retorna o tamanho da coleção transportada
func (u PushUpdate) Len() int {
	if u.Kind == CollectionPosts {
		return len(u.Posts)
	}
	return len(u.Kpis)
}
