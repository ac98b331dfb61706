package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the velada ASCII art banner.
func PrintBanner() {
	p := termenv.ColorProfile()
	// Warm sunset gradient, one color per line
	s1 := termenv.String(`           _           _       `).Foreground(p.Color("#fbbf24"))
	s2 := termenv.String(` __ _____| | __ _  __| | __ _ `).Foreground(p.Color("#fb923c"))
	s3 := termenv.String(` \ V / -_) |/ _` + "`" + ` |/ _` + "`" + ` |/ _` + "`" + ` |`).Foreground(p.Color("#f87171"))
	s4 := termenv.String(`  \_/\___|_|\__,_|\__,_|\__,_|`).Foreground(p.Color("#f472b6"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println()
}
