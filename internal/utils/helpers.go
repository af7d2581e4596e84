package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fr4nk3nst1ner/hwenhancer/internal/models"
)

const minutesPerDay = 24 * 60

var (
	// Amounts are runs of at least four digits; shorter runs are unit labels
	// such as "8時間" or "1ヶ月" and are never treated as money.
	wageAmountRegex = regexp.MustCompile(`\d{4,}`)
	clockTimeRegex  = regexp.MustCompile(`(\d{1,2})時(\d{1,2})分`)
)

// ParseWage extracts the wage range from the text of a 賃金 cell.
// Min and max come from the same unordered set of amounts, so a text with a
// single amount yields Min == Max. Text without amounts yields {0, 0}.
func ParseWage(text string) models.Wage {
	clean := strings.ReplaceAll(text, ",", "")
	matches := wageAmountRegex.FindAllString(clean, -1)

	var wage models.Wage
	found := false
	for _, m := range matches {
		val, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		if !found {
			wage = models.Wage{Min: val, Max: val}
			found = true
			continue
		}
		if val < wage.Min {
			wage.Min = val
		}
		if val > wage.Max {
			wage.Max = val
		}
	}
	return wage
}

// ParseShiftDuration returns the length in minutes of the shift described by
// the first two "H時M分" times in text. A shift ending before it starts wraps
// past midnight. Fewer than two times yields models.UnknownHours.
func ParseShiftDuration(text string) int {
	times := clockTimeRegex.FindAllStringSubmatch(text, 2)
	if len(times) < 2 {
		return models.UnknownHours
	}

	start := clockMinutes(times[0])
	end := clockMinutes(times[1])
	duration := end - start
	if duration < 0 {
		duration += minutesPerDay
	}
	return duration
}

func clockMinutes(match []string) int {
	h, _ := strconv.Atoi(match[1])
	m, _ := strconv.Atoi(match[2])
	return h*60 + m
}

// FormatWage formats a wage amount with yen sign and comma separators
func FormatWage(amount int) string {
	if amount == 0 {
		return "不明"
	}
	return fmt.Sprintf("¥%s", humanize.Comma(int64(amount)))
}

// FormatWageRange formats a wage range, collapsing equal bounds
func FormatWageRange(w models.Wage) string {
	if w.Min == w.Max {
		return FormatWage(w.Max)
	}
	return fmt.Sprintf("%s〜%s", FormatWage(w.Min), FormatWage(w.Max))
}

// FormatDuration formats a shift duration in minutes
func FormatDuration(minutes int) string {
	if minutes == models.UnknownHours {
		return "不明"
	}
	return fmt.Sprintf("%d時間%02d分", minutes/60, minutes%60)
}
