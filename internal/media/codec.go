// Package media implements the adaptive image codec and the upload batch
// grouper. Both exist to keep single gateway writes under the server-side
// payload ceiling: the codec bounds one image's encoded size, the grouper
// splits many images across several writes.
package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
)

// DeviceClass selects the maximum output dimensions.
type DeviceClass int

const (
	Desktop DeviceClass = iota
	Mobile
)

// Options controls adaptive compression. Zero values fall back to defaults,
// so Options{} always behaves per DefaultOptions.
type Options struct {
	// SizeThreshold is the byte size below which the input passes through
	// untouched.
	SizeThreshold int

	// ExtremeThreshold is the byte size above which the tighter "extreme"
	// dimension tier applies.
	ExtremeThreshold int

	// TargetBytes is the encoded-size budget the quality loop aims for.
	TargetBytes int

	// InitialQuality, MinQuality and QualityStep shape the quality descent.
	// The floor always wins over the byte target; the loop never runs
	// indefinitely.
	InitialQuality float64
	MinQuality     float64
	QualityStep    float64

	Device DeviceClass
}

const (
	defaultSizeThreshold    = 600 << 10  // 600 KiB
	defaultExtremeThreshold = 5 << 20    // 5 MiB
	defaultTargetBytes      = 450 << 10  // 450 KiB
	defaultInitialQuality   = 0.85
	defaultMinQuality       = 0.55
	defaultQualityStep      = 0.10
)

// DefaultOptions returns the production defaults for a desktop client.
func DefaultOptions() Options {
	return Options{
		SizeThreshold:    defaultSizeThreshold,
		ExtremeThreshold: defaultExtremeThreshold,
		TargetBytes:      defaultTargetBytes,
		InitialQuality:   defaultInitialQuality,
		MinQuality:       defaultMinQuality,
		QualityStep:      defaultQualityStep,
		Device:           Desktop,
	}
}

func (o Options) withDefaults() Options {
	if o.SizeThreshold <= 0 {
		o.SizeThreshold = defaultSizeThreshold
	}
	if o.ExtremeThreshold <= 0 {
		o.ExtremeThreshold = defaultExtremeThreshold
	}
	if o.TargetBytes <= 0 {
		o.TargetBytes = defaultTargetBytes
	}
	if o.InitialQuality <= 0 {
		o.InitialQuality = defaultInitialQuality
	}
	if o.MinQuality <= 0 {
		o.MinQuality = defaultMinQuality
	}
	if o.QualityStep <= 0 {
		o.QualityStep = defaultQualityStep
	}
	return o
}

// maxDimension picks the output bound from device class and size tier.
func (o Options) maxDimension(originalBytes int) int {
	extreme := originalBytes > o.ExtremeThreshold
	switch o.Device {
	case Mobile:
		if extreme {
			return 1024
		}
		return 1280
	default:
		if extreme {
			return 1280
		}
		return 1920
	}
}

// Result describes one codec run.
type Result struct {
	DataURL       string
	OriginalBytes int
	FinalBytes    int
	WasCompressed bool
	QualityUsed   float64
	Width         int
	Height        int
}

// CompressAdaptive resizes and recompresses one image to approach the byte
// target. Inputs at or below the size threshold pass through unmodified.
// The function is deterministic for a given input and options.
func CompressAdaptive(data []byte, mimeType string, opts Options) (Result, error) {
	opts = opts.withDefaults()

	if len(data) <= opts.SizeThreshold {
		w, h := 0, 0
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			w, h = cfg.Width, cfg.Height
		}
		return Result{
			DataURL:       asDataURL(mimeType, data),
			OriginalBytes: len(data),
			FinalBytes:    len(data),
			WasCompressed: false,
			QualityUsed:   1,
			Width:         w,
			Height:        h,
		}, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("decode image: %w", err)
	}

	maxDim := opts.maxDimension(len(data))
	dst := scaleDown(src, maxDim)
	bounds := dst.Bounds()

	// Walk quality down until the target is met or the floor is reached.
	// The floor wins: the final encoding is returned whether or not the
	// target was met.
	const eps = 1e-9
	quality := opts.InitialQuality
	encoded, err := encodeJPEG(dst, quality)
	if err != nil {
		return Result{}, err
	}
	for len(encoded) > opts.TargetBytes && quality-opts.QualityStep >= opts.MinQuality-eps {
		quality -= opts.QualityStep
		encoded, err = encodeJPEG(dst, quality)
		if err != nil {
			return Result{}, err
		}
	}

	return Result{
		DataURL:       asDataURL("image/jpeg", encoded),
		OriginalBytes: len(data),
		FinalBytes:    len(encoded),
		WasCompressed: true,
		QualityUsed:   quality,
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
	}, nil
}

// scaleDown resizes src uniformly so neither dimension exceeds maxDim.
// Images already within bounds are returned as-is; nothing is ever upscaled.
func scaleDown(src image.Image, maxDim int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return src
	}

	scale := float64(maxDim) / float64(w)
	if h > w {
		scale = float64(maxDim) / float64(h)
	}
	nw := int(float64(w) * scale)
	nh := int(float64(h) * scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality float64) ([]byte, error) {
	var buf bytes.Buffer
	q := int(quality*100 + 0.5)
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func asDataURL(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
