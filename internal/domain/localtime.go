package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	localDateLayout     = time.DateOnly
	localDateTimeLayout = "2006-01-02T15:04:05"
)

// Layouts aceitos nos timestamps vindos do backend. Datas sem fuso são tratadas como UTC.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	localDateTimeLayout,
	"2006-01-02 15:04:05",
	localDateLayout,
}

// LocalDateTime representa um timestamp sem fuso (LocalDateTime do backend)
type LocalDateTime struct {
	time.Time
}

// LocalDate representa uma data sem horário (LocalDate do backend)
type LocalDate struct {
	time.Time
}

// ParseLocalDateTime interpreta um timestamp em qualquer um dos formatos aceitos
func ParseLocalDateTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateTimeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("formato de data inválido: %q", value)
}

func NewLocalDateTime(t time.Time) LocalDateTime {
	return LocalDateTime{Time: t}
}

func NewLocalDate(t time.Time) LocalDate {
	return LocalDate{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// MustDate é usado em testes e fixtures
func MustDate(value string) LocalDate {
	parsed, err := ParseLocalDateTime(value)
	if err != nil {
		panic(err)
	}
	return NewLocalDate(parsed)
}

// MustDateTime é usado em testes e fixtures
func MustDateTime(value string) LocalDateTime {
	parsed, err := ParseLocalDateTime(value)
	if err != nil {
		panic(err)
	}
	return NewLocalDateTime(parsed)
}

func (t *LocalDateTime) UnmarshalJSON(data []byte) error {
	parsed, empty, err := unmarshalTime(data)
	if err != nil || empty {
		t.Time = time.Time{}
		return err
	}
	t.Time = parsed
	return nil
}

func (t LocalDateTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(localDateTimeLayout) + `"`), nil
}

func (d *LocalDate) UnmarshalJSON(data []byte) error {
	parsed, empty, err := unmarshalTime(data)
	if err != nil || empty {
		d.Time = time.Time{}
		return err
	}
	*d = NewLocalDate(parsed)
	return nil
}

func (d LocalDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(localDateLayout) + `"`), nil
}

func unmarshalTime(data []byte) (time.Time, bool, error) {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` || raw == "" {
		return time.Time{}, true, nil
	}
	parsed, err := ParseLocalDateTime(strings.Trim(raw, `"`))
	if err != nil {
		return time.Time{}, false, err
	}
	return parsed, false, nil
}

// DaysBetween retorna a distância em dias (fracionária) de from até to
func DaysBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24
}
