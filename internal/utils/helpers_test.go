package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fr4nk3nst1ner/hwenhancer/internal/models"
)

func TestParseWage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want models.Wage
	}{
		{name: "range with separators", text: "年額 250,000円〜300,000円", want: models.Wage{Min: 250000, Max: 300000}},
		{name: "empty", text: "", want: models.Wage{}},
		{name: "three digit amount ignored", text: "時給900円", want: models.Wage{}},
		{name: "four digit amount", text: "時給1,200円", want: models.Wage{Min: 1200, Max: 1200}},
		{name: "order independent", text: "月額 300,000円〜210,000円", want: models.Wage{Min: 210000, Max: 300000}},
		{name: "short runs are labels", text: "月額(a+b) 180,000円〜220,000円 (8時間 20日)", want: models.Wage{Min: 180000, Max: 220000}},
		{name: "no digits", text: "応相談", want: models.Wage{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseWage(tt.text))
		})
	}
}

func TestParseShiftDuration(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "day shift", text: "8時30分〜17時30分", want: 540},
		{name: "wraps past midnight", text: "22時00分〜6時00分", want: 480},
		{name: "no times", text: "フルタイム", want: models.UnknownHours},
		{name: "empty", text: "", want: models.UnknownHours},
		{name: "single time", text: "9時00分から", want: models.UnknownHours},
		{name: "only first two considered", text: "(1)8時00分〜12時00分 (2)13時00分〜22時00分", want: 240},
		{name: "same start and end", text: "9時00分〜9時00分", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseShiftDuration(tt.text))
		})
	}
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "¥250,000", FormatWage(250000))
	assert.Equal(t, "不明", FormatWage(0))
	assert.Equal(t, "¥1,200", FormatWageRange(models.Wage{Min: 1200, Max: 1200}))
	assert.Equal(t, "¥180,000〜¥220,000", FormatWageRange(models.Wage{Min: 180000, Max: 220000}))
	assert.Equal(t, "9時間00分", FormatDuration(540))
	assert.Equal(t, "7時間45分", FormatDuration(465))
	assert.Equal(t, "不明", FormatDuration(models.UnknownHours))
}
