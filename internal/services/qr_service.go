package services

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"strconv"
	"strings"

	"github.com/skip2/go-qrcode"
)

const (
	DefaultQRSize = 256
	MinQRSize     = 64
	MaxQRSize     = 1024
)

type QROptions struct {
	Content string
	Size    int
	FgColor string // Hex code e.g. "#000000"
	BgColor string // Hex code e.g. "#FFFFFF"
}

// QRService renders the public short link of a bookmark as a QR code.
type QRService struct{}

func NewQRService() *QRService {
	return &QRService{}
}

// GenerateQRCode returns the PNG encoding of the QR code for opts.Content.
func (s *QRService) GenerateQRCode(opts QROptions) ([]byte, error) {
	qr, err := qrcode.New(opts.Content, qrcode.Medium)
	if err != nil {
		return nil, err
	}

	qr.ForegroundColor = parseHexColor(opts.FgColor, color.Black)
	qr.BackgroundColor = parseHexColor(opts.BgColor, color.White)

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(clampQRSize(opts.Size))); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateQRCodeSVG generates an SVG string for the QR code.
func (s *QRService) GenerateQRCodeSVG(opts QROptions) (string, error) {
	qr, err := qrcode.New(opts.Content, qrcode.Medium)
	if err != nil {
		return "", err
	}

	fg := svgColor(opts.FgColor, "#000000")
	bg := svgColor(opts.BgColor, "#FFFFFF")

	qr.DisableBorder = true
	bitmap := qr.Bitmap()
	size := len(bitmap)

	var sb strings.Builder
	// ViewBox matches module count
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" shape-rendering="crispEdges">`, size, size))
	sb.WriteString(fmt.Sprintf(`<rect width="100%%" height="100%%" fill="%s"/>`, bg))
	sb.WriteString(fmt.Sprintf(`<path fill="%s" d="`, fg))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if bitmap[y][x] {
				sb.WriteString(fmt.Sprintf("M%d %dh1v1h-1z ", x, y))
			}
		}
	}
	sb.WriteString(`"/>`)
	sb.WriteString("</svg>")
	return sb.String(), nil
}

func clampQRSize(size int) int {
	switch {
	case size == 0:
		return DefaultQRSize
	case size < MinQRSize:
		return MinQRSize
	case size > MaxQRSize:
		return MaxQRSize
	}
	return size
}

// svgColor returns s as "#rrggbb" when it is a valid hex colour, else def.
// Anything else never reaches the markup.
func svgColor(s string, def string) string {
	c, ok := parseHexColor(s, nil).(color.RGBA)
	if !ok {
		return def
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func parseHexColor(s string, defaultColor color.Color) color.Color {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return defaultColor
	}

	var rgb [3]uint8
	for i := range rgb {
		v, err := strconv.ParseUint(s[2*i:2*i+2], 16, 8)
		if err != nil {
			return defaultColor
		}
		rgb[i] = uint8(v)
	}
	return color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}
}
