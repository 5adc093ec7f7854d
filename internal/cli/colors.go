package cli

import (
	"fmt"
	"os"
	"strings"
)

const (
	ResetCode = "\033[0m"
	Bold      = "\033[1m"
	DimCode   = "\033[2m"
	Red       = "\033[31m"
	Green     = "\033[32m"
	Yellow    = "\033[33m"
	Blue      = "\033[34m"
	Purple    = "\033[35m"
	Cyan      = "\033[36m"
)

// RGB represents a TrueColor
type RGB struct {
	R, G, B float64
}

var (
	BrandBlue   = RGB{0, 120, 255}
	BrandPurple = RGB{189, 52, 235}
)

var disableColor = checkNoColor()

func checkNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// Enabled reports whether ANSI colors should be emitted.
func Enabled() bool {
	return !disableColor
}

// Style wraps text in a specific color code
func Style(text string, colorCode string) string {
	if disableColor {
		return text
	}
	return colorCode + text + ResetCode
}

// ColorizeRGB returns text wrapped in ANSI TrueColor escape codes
func ColorizeRGB(text string, c RGB) string {
	if disableColor {
		return text
	}
	return fmt.Sprintf("\033[38;2;%d;%d;%dm%s%s", int(c.R), int(c.G), int(c.B), text, ResetCode)
}

// Gradient colors each line of text with a linear interpolation between start and end.
func Gradient(text string, start, end RGB) string {
	lines := strings.Split(text, "\n")
	if disableColor || len(lines) == 0 {
		return text
	}
	for i, line := range lines {
		progress := 0.0
		if len(lines) > 1 {
			progress = float64(i) / float64(len(lines)-1)
		}
		lines[i] = ColorizeRGB(line, RGB{
			R: start.R + (end.R-start.R)*progress,
			G: start.G + (end.G-start.G)*progress,
			B: start.B + (end.B-start.B)*progress,
		})
	}
	return strings.Join(lines, "\n")
}

func CheckMark() string {
	return Style("✔", Green)
}

func Arrow() string {
	return Style("➜", Blue)
}

func CrossMark() string {
	return Style("✘", Red)
}

func WarningSign() string {
	return Style("⚠", Yellow)
}
