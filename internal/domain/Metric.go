package domain

// Metric identifica o contador de engajamento plotado no gráfico de barras
type Metric string

const (
	MetricLikes       Metric = "likes"
	MetricComments    Metric = "comments"
	MetricShares      Metric = "shares"
	MetricSaves       Metric = "saves"
	MetricReach       Metric = "reach"
	MetricImpressions Metric = "impressions"

	DefaultMetric = MetricLikes
)

type MetricOption struct {
	Value Metric `json:"value"`
	Label string `json:"label"`
}

var MetricOptions = []MetricOption{
	{Value: MetricLikes, Label: "Likes"},
	{Value: MetricComments, Label: "Comments"},
	{Value: MetricShares, Label: "Shares"},
	{Value: MetricSaves, Label: "Saves"},
	{Value: MetricReach, Label: "Reach"},
	{Value: MetricImpressions, Label: "Impressions"},
}

// FindMetric busca a opção de métrica pelo valor
func FindMetric(value string) (MetricOption, bool) {
	for _, option := range MetricOptions {
		if string(option.Value) == value {
			return option, true
		}
	}
	return MetricOption{}, false
}

// ValueOf extrai o valor da métrica de um post
func (m Metric) ValueOf(post InstagramPost) int {
	switch m {
	case MetricComments:
		return post.Comments
	case MetricShares:
		return post.Shares
	case MetricSaves:
		return post.Saves
	case MetricReach:
		return post.Reach
	case MetricImpressions:
		return post.Impressions
	default:
		return post.Likes
	}
}
