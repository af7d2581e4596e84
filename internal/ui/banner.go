package ui

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/fr4nk3nst1ner/hwenhancer/internal/utils"
)

const bannerText = `
██╗  ██╗██╗    ██╗    ███████╗███╗   ██╗██╗  ██╗ █████╗ ███╗   ██╗ ██████╗███████╗██████╗
██║  ██║██║    ██║    ██╔════╝████╗  ██║██║  ██║██╔══██╗████╗  ██║██╔════╝██╔════╝██╔══██╗
███████║██║ █╗ ██║    █████╗  ██╔██╗ ██║███████║███████║██╔██╗ ██║██║     █████╗  ██████╔╝
██╔══██║██║███╗██║    ██╔══╝  ██║╚██╗██║██╔══██║██╔══██║██║╚██╗██║██║     ██╔══╝  ██╔══██╗
██║  ██║╚███╔███╔╝    ███████╗██║ ╚████║██║  ██║██║  ██║██║ ╚████║╚██████╗███████╗██║  ██║
╚═╝  ╚═╝ ╚══╝╚══╝     ╚══════╝╚═╝  ╚═══╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝  ╚═══╝ ╚═════╝╚══════╝╚═╝  ╚═╝
 ハローワーク拡張機能
`

// ColorizeText applies a random colour fade to the input text
func ColorizeText(text string) string {
	random := rand.New(rand.NewSource(time.Now().UnixNano()))

	startColor := pterm.NewRGB(uint8(random.Intn(256)), uint8(random.Intn(256)), uint8(random.Intn(256)))
	endColor := pterm.NewRGB(uint8(random.Intn(256)), uint8(random.Intn(256)), uint8(random.Intn(256)))

	chars := strings.Split(text, "")
	var b strings.Builder
	for i, ch := range chars {
		b.WriteString(startColor.Fade(0, float32(len(chars)), float32(i), endColor).Sprint(ch))
	}
	return b.String()
}

// PrintBanner displays the application banner
func PrintBanner(silence bool) {
	if !silence {
		fmt.Println(ColorizeText(bannerText))
	}
}

// Wage bands for monthly pay, in yen
const (
	highWage   = 300000
	goodWage   = 250000
	middleWage = 200000
)

// ColorizeWage applies colour formatting to a wage amount
func ColorizeWage(amount int) string {
	formatted := utils.FormatWage(amount)

	switch {
	case amount == 0:
		return pterm.Red(formatted)
	case amount >= highWage:
		return pterm.Green(formatted)
	case amount >= goodWage:
		return pterm.LightGreen(formatted)
	case amount >= middleWage:
		return pterm.Yellow(formatted)
	default:
		return pterm.Red(formatted)
	}
}
