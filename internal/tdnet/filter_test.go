package tdnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func titled(title string) Disclosure {
	return Disclosure{Code: "12340", Name: "会社", Title: title}
}

func TestFilterAll(t *testing.T) {
	records := []Disclosure{
		titled("2026年3月期 第1四半期決算短信〔日本基準〕（連結）"),
		titled("人事異動に関するお知らせ"),
	}
	assert.Equal(t, records, FilterAll.Apply(records))
}

func TestFilterEarnings(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  bool
	}{
		{"plain earnings report", "2026年3月期 第1四半期決算短信〔日本基準〕（連結）", true},
		{"non-consolidated earnings report", "2026年3月期 決算短信〔日本基準〕（非連結）", true},
		{"not an earnings report", "代表取締役の異動に関するお知らせ", false},
		{"REIT full-width", "2025年12月期 決算短信（ＲＥＩＴ）", false},
		{"REIT katakana", "決算短信（リート）", false},
		{"REIT ascii", "決算短信(REIT)", false},
		{"correction", "（訂正）2026年3月期 第1四半期決算短信", false},
		{"numeric data correction", "決算短信（数値データ訂正）の一部訂正について", false},
		{"revision", "（修正）決算短信の記載内容訂正", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterEarnings.Apply([]Disclosure{titled(tt.title)})
			if tt.want {
				assert.Len(t, got, 1)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestFilterForecast(t *testing.T) {
	records := []Disclosure{
		titled("2026年3月期業績予想の修正に関するお知らせ"),
		titled("業績予想に関するお知らせ"),
		titled("通期業績の修正について"),
		titled("決算短信"),
	}

	got := FilterForecast.Apply(records)
	assert.Len(t, got, 3)
}

func TestFilterValid(t *testing.T) {
	assert.True(t, FilterAll.Valid())
	assert.True(t, FilterEarnings.Valid())
	assert.True(t, FilterForecast.Valid())
	assert.False(t, Filter("bogus").Valid())
}

func TestFilterPreservesOrder(t *testing.T) {
	records := []Disclosure{
		{Code: "1", Title: "A社 決算短信"},
		{Code: "2", Title: "お知らせ"},
		{Code: "3", Title: "B社 決算短信"},
	}

	got := FilterEarnings.Apply(records)
	assert.Equal(t, []string{"1", "3"}, []string{got[0].Code, got[1].Code})
}
