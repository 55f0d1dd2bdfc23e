// Package banner prints the check42 title.
package banner

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/thirukguru/check42/shared/terminal"
)

// colorEnv overrides the title color by name.
const colorEnv = "CHECK42_BANNER_COLOR"

var titleColors = map[string]text.Colors{
	"orange": {text.FgHiYellow, text.Bold},
	"red":    {text.FgHiRed, text.Bold},
	"green":  {text.FgHiGreen, text.Bold},
	"blue":   {text.FgHiBlue, text.Bold},
	"cyan":   {text.FgHiCyan, text.Bold},
}

const (
	defaultColor        = "orange"
	blueBackgroundColor = "cyan"
)

var titleLines = []string{
	"  ██████╗ ██╗  ██╗ ███████╗  ██████╗ ██╗  ██╗ ██╗  ██╗ ██████╗ ",
	" ██╔════╝ ██║  ██║ ██╔════╝ ██╔════╝ ██║ ██╔╝ ██║  ██║ ╚════██╗",
	" ██║      ███████║ █████╗   ██║      █████╔╝  ███████║  █████╔╝",
	" ██║      ██╔══██║ ██╔══╝   ██║      ██╔═██╗  ╚════██║ ██╔═══╝ ",
	" ╚██████╗ ██║  ██║ ███████╗ ╚██████╗ ██║  ██╗      ██║ ███████╗",
	"  ╚═════╝ ╚═╝  ╚═╝ ╚══════╝  ╚═════╝ ╚═╝  ╚═╝      ╚═╝ ╚══════╝",
}

func writeCenteredLines(w io.Writer, lines []string, width int, colors text.Colors) {
	for _, line := range lines {
		pad := 0
		if n := len([]rune(line)); width > n {
			pad = (width - n) / 2
		}
		fmt.Fprintln(w, strings.Repeat(" ", pad)+colors.Sprint(line))
	}
}

func titleColor() text.Colors {
	if raw := strings.ToLower(strings.TrimSpace(os.Getenv(colorEnv))); raw != "" {
		if c, ok := titleColors[raw]; ok {
			return c
		}
	}
	if terminal.IsBlueBackground() {
		return titleColors[blueBackgroundColor]
	}
	return titleColors[defaultColor]
}

// DrawBannerTitle prints the application title banner and version to stdout.
func DrawBannerTitle(version string) {
	terminal.EnableANSI()
	width := terminal.Width(os.Stdout)
	writeCenteredLines(os.Stdout, titleLines, width, titleColor())
	if version != "" {
		writeCenteredLines(os.Stdout, []string{"AWS account hygiene checks " + version}, width, nil)
	}
	fmt.Println()
}
