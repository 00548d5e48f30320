// Package quality scores document photos for scanability before they are
// routed to an extraction provider. All metrics are pure functions of the
// decoded pixels; an undecodable image yields an unchecked assessment with a
// warning rather than an error.
package quality

import (
	"bytes"
	"fmt"
	"image"
	"math"

	// Decoders for the formats guests actually upload.
	_ "image/jpeg"
	_ "image/png"

	"go.uber.org/zap"
)

// Blur thresholds on Laplacian variance.
const (
	blurVeryBlurry = 50
	blurBlurry     = 100
	blurAcceptable = 200
)

// Brightness thresholds on mean grayscale intensity.
const (
	brightnessVeryDark    = 50
	brightnessDark        = 80
	brightnessBright      = 200
	brightnessOverexposed = 220
)

// Contrast thresholds on grayscale standard deviation.
const (
	contrastLow        = 30
	contrastAcceptable = 50
)

// Minimum usable resolution.
const (
	minWidth  = 640
	minHeight = 480
)

// Score deductions per failed check.
const (
	deductVeryBlurry  = 30
	deductBlurry      = 15
	deductSevereLight = 25 // very_dark or overexposed
	deductMildLight   = 10 // dark, or bright-but-flagged
	deductResolution  = 20
	deductContrast    = 15
)

const passThreshold = 50

// Check is one sub-assessment (blur, brightness, contrast or resolution).
type Check struct {
	OK      bool    `json:"ok"`
	Score   float64 `json:"score"`
	Level   string  `json:"level"`
	Message string  `json:"message"`
}

// Assessment is the full quality report for one image.
type Assessment struct {
	Checked    bool     `json:"checked"`
	Blur       Check    `json:"blur"`
	Brightness Check    `json:"brightness"`
	Contrast   Check    `json:"contrast"`
	Resolution Check    `json:"resolution"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	Score      int      `json:"score"`   // 0-100
	Overall    string   `json:"overall"` // good, acceptable, poor
	Pass       bool     `json:"pass"`
	Warnings   []string `json:"warnings,omitempty"`
}

// Assess decodes imageBytes and scores sharpness, brightness, contrast and
// resolution. Never returns an error: decode failures produce an assessment
// with Checked=false and a warning, so a corrupt upload degrades to "send it
// through anyway and let the chain try".
func Assess(imageBytes []byte) Assessment {
	img, format, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		zap.L().Debug("quality: image decode failed", zap.Error(err))
		return Assessment{
			Checked:  false,
			Score:    passThreshold, // unknown quality routes through the balanced tier
			Overall:  "acceptable",
			Pass:     true,
			Warnings: []string{fmt.Sprintf("image could not be decoded for quality checks: %v", err)},
		}
	}

	gray, w, h := grayscale(img)

	a := Assessment{Checked: true, Width: w, Height: h, Score: 100}

	a.assessBlur(laplacianVariance(gray, w, h))
	a.assessBrightness(mean(gray))
	a.assessContrast(stddev(gray))
	a.assessResolution(w, h)

	if a.Score < 0 {
		a.Score = 0
	}
	if a.Score > 100 {
		a.Score = 100
	}

	switch {
	case a.Score >= 80:
		a.Overall = "good"
	case a.Score >= passThreshold:
		a.Overall = "acceptable"
	default:
		a.Overall = "poor"
	}
	a.Pass = a.Score >= passThreshold

	zap.L().Debug("quality: image assessed",
		zap.String("format", format),
		zap.Int("score", a.Score),
		zap.String("overall", a.Overall),
		zap.String("blur", a.Blur.Level),
		zap.String("brightness", a.Brightness.Level),
	)

	return a
}

func (a *Assessment) assessBlur(variance float64) {
	c := Check{Score: variance}
	switch {
	case variance < blurVeryBlurry:
		c.Level, c.Message = "very_blurry", "image is far too blurry to read; retake the photo"
		a.Score -= deductVeryBlurry
	case variance < blurBlurry:
		c.Level, c.Message = "blurry", "image is blurry; hold the camera steady and retake"
		a.Score -= deductBlurry
	case variance < blurAcceptable:
		c.OK, c.Level, c.Message = true, "acceptable", "sharpness is acceptable"
	default:
		c.OK, c.Level, c.Message = true, "sharp", "image is sharp"
	}
	if !c.OK {
		a.Warnings = append(a.Warnings, c.Message)
	}
	a.Blur = c
}

func (a *Assessment) assessBrightness(meanGray float64) {
	c := Check{Score: meanGray}
	switch {
	case meanGray < brightnessVeryDark:
		c.Level, c.Message = "very_dark", "image is too dark; use more light"
		a.Score -= deductSevereLight
	case meanGray < brightnessDark:
		c.Level, c.Message = "dark", "image is dark; extraction may miss fields"
		a.Score -= deductMildLight
	case meanGray > brightnessOverexposed:
		c.Level, c.Message = "overexposed", "image is overexposed; avoid direct flash"
		a.Score -= deductSevereLight
	case meanGray > brightnessBright:
		// Bright passes but still costs points and a warning.
		c.OK, c.Level, c.Message = true, "bright", "image is bright; watch for glare"
		a.Score -= deductMildLight
		a.Warnings = append(a.Warnings, c.Message)
	default:
		c.OK, c.Level, c.Message = true, "good", "brightness is good"
	}
	if !c.OK {
		a.Warnings = append(a.Warnings, c.Message)
	}
	a.Brightness = c
}

func (a *Assessment) assessContrast(sd float64) {
	c := Check{Score: sd}
	switch {
	case sd < contrastLow:
		c.Level, c.Message = "low", "contrast is too low; document edges may be unreadable"
		a.Score -= deductContrast
	case sd < contrastAcceptable:
		c.OK, c.Level, c.Message = true, "acceptable", "contrast is acceptable"
	default:
		c.OK, c.Level, c.Message = true, "good", "contrast is good"
	}
	if !c.OK {
		a.Warnings = append(a.Warnings, c.Message)
	}
	a.Contrast = c
}

func (a *Assessment) assessResolution(w, h int) {
	c := Check{Score: float64(w * h)}
	if w < minWidth || h < minHeight {
		c.Level = "too_small"
		c.Message = fmt.Sprintf("resolution %dx%d is below the %dx%d minimum", w, h, minWidth, minHeight)
		a.Score -= deductResolution
		a.Warnings = append(a.Warnings, c.Message)
	} else {
		c.OK, c.Level, c.Message = true, "ok", "resolution is sufficient"
	}
	a.Resolution = c
}

// grayscale flattens an image to a float64 luminance buffer.
func grayscale(img image.Image) ([]float64, int, int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	gray := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			// ITU-R BT.601 luma on 8-bit channels.
			gray[y*w+x] = 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(bl>>8)
		}
	}
	return gray, w, h
}

// laplacianVariance applies the 4-neighbour Laplacian kernel and returns the
// variance of the response over interior pixels. High variance means sharp
// edges; blurred images flatten the response.
func laplacianVariance(gray []float64, w, h int) float64 {
	if w < 3 || h < 3 {
		return 0
	}
	n := (w - 2) * (h - 2)
	resp := make([]float64, 0, n)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			v := -4*gray[y*w+x] + gray[y*w+x-1] + gray[y*w+x+1] + gray[(y-1)*w+x] + gray[(y+1)*w+x]
			resp = append(resp, v)
		}
	}
	return variance(resp)
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func variance(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	m := mean(vals)
	sum := 0.0
	for _, v := range vals {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(vals))
}

func stddev(vals []float64) float64 {
	return math.Sqrt(variance(vals))
}
