//go:build darwin && cgo

package typeproof

/*
#cgo LDFLAGS: -framework CoreText -framework CoreGraphics -framework CoreFoundation

#include <CoreFoundation/CoreFoundation.h>
#include <CoreGraphics/CoreGraphics.h>
#include <CoreText/CoreText.h>

static CGFontRef tp_cgfont_create(const UInt8 *data, CFIndex len) {
	CFDataRef cfdata = CFDataCreate(NULL, data, len);
	if (cfdata == NULL) {
		return NULL;
	}
	CGDataProviderRef provider = CGDataProviderCreateWithCFData(cfdata);
	CFRelease(cfdata);
	if (provider == NULL) {
		return NULL;
	}
	CGFontRef font = CGFontCreateWithDataProvider(provider);
	CGDataProviderRelease(provider);
	return font;
}

static CTFontRef tp_ctfont_base(CGFontRef cgFont, double size) {
	return CTFontCreateWithGraphicsFont(cgFont, size, NULL, NULL);
}

static CTFontRef tp_ctfont_derive(CTFontRef base, double size,
		const int64_t *axisIDs, const double *axisValues, int axisCount,
		const UInt8 *featTags, const int64_t *featValues, int featCount) {
	CFMutableDictionaryRef attrs = CFDictionaryCreateMutable(NULL, 2,
		&kCFTypeDictionaryKeyCallBacks, &kCFTypeDictionaryValueCallBacks);
	if (attrs == NULL) {
		return NULL;
	}

	if (axisCount > 0) {
		CFMutableDictionaryRef variation = CFDictionaryCreateMutable(NULL, axisCount,
			&kCFTypeDictionaryKeyCallBacks, &kCFTypeDictionaryValueCallBacks);
		for (int i = 0; i < axisCount; i++) {
			CFNumberRef key = CFNumberCreate(NULL, kCFNumberSInt64Type, &axisIDs[i]);
			CFNumberRef val = CFNumberCreate(NULL, kCFNumberDoubleType, &axisValues[i]);
			CFDictionarySetValue(variation, key, val);
			CFRelease(key);
			CFRelease(val);
		}
		CFDictionarySetValue(attrs, kCTFontVariationAttribute, variation);
		CFRelease(variation);
	}

	if (featCount > 0) {
		CFMutableArrayRef settings = CFArrayCreateMutable(NULL, featCount,
			&kCFTypeArrayCallBacks);
		for (int i = 0; i < featCount; i++) {
			CFStringRef tag = CFStringCreateWithBytes(NULL, featTags + i*4, 4,
				kCFStringEncodingASCII, false);
			CFNumberRef val = CFNumberCreate(NULL, kCFNumberSInt64Type, &featValues[i]);
			CFMutableDictionaryRef setting = CFDictionaryCreateMutable(NULL, 2,
				&kCFTypeDictionaryKeyCallBacks, &kCFTypeDictionaryValueCallBacks);
			CFDictionarySetValue(setting, kCTFontOpenTypeFeatureTag, tag);
			CFDictionarySetValue(setting, kCTFontOpenTypeFeatureValue, val);
			CFArrayAppendValue(settings, setting);
			CFRelease(setting);
			CFRelease(val);
			CFRelease(tag);
		}
		CFDictionarySetValue(attrs, kCTFontFeatureSettingsAttribute, settings);
		CFRelease(settings);
	}

	CTFontDescriptorRef desc = CTFontDescriptorCreateWithAttributes(attrs);
	CFRelease(attrs);
	if (desc == NULL) {
		return NULL;
	}
	CTFontRef derived = CTFontCreateCopyWithAttributes(base, size, NULL, desc);
	CFRelease(desc);
	return derived;
}

// tp_render draws one line of text into an 8-bit grayscale buffer of
// width*height bytes. The context is created over the caller's buffer with
// bytesPerRow == width, so the buffer's first row is the top of the image.
// Drawing happens in the default coordinate space (origin bottom left, no
// CTM flip); baselineY is measured from the bottom edge.
static int tp_render(CTFontRef font, const UInt8 *text, CFIndex textLen,
		int width, int height, double penX, double baselineY, double kern,
		UInt8 *out) {
	CGColorSpaceRef gray = CGColorSpaceCreateDeviceGray();
	CGContextRef ctx = CGBitmapContextCreate(out, width, height, 8, width,
		gray, kCGImageAlphaNone);
	CGColorSpaceRelease(gray);
	if (ctx == NULL) {
		return -1;
	}

	CGContextSetGrayFillColor(ctx, 1.0, 1.0);
	CGContextFillRect(ctx, CGRectMake(0, 0, width, height));
	CGContextSetGrayFillColor(ctx, 0.0, 1.0);
	CGContextSetTextMatrix(ctx, CGAffineTransformIdentity);

	CFStringRef str = CFStringCreateWithBytes(NULL, text, textLen,
		kCFStringEncodingUTF8, false);
	if (str == NULL) {
		CGContextRelease(ctx);
		return -2;
	}

	CFMutableDictionaryRef attrs = CFDictionaryCreateMutable(NULL, 2,
		&kCFTypeDictionaryKeyCallBacks, &kCFTypeDictionaryValueCallBacks);
	CFDictionarySetValue(attrs, kCTFontAttributeName, font);
	if (kern > 1e-9 || kern < -1e-9) {
		CFNumberRef kernNum = CFNumberCreate(NULL, kCFNumberDoubleType, &kern);
		CFDictionarySetValue(attrs, kCTKernAttributeName, kernNum);
		CFRelease(kernNum);
	}

	CFAttributedStringRef attrStr = CFAttributedStringCreate(NULL, str, attrs);
	CFRelease(attrs);
	CFRelease(str);
	if (attrStr == NULL) {
		CGContextRelease(ctx);
		return -2;
	}

	CTLineRef line = CTLineCreateWithAttributedString(attrStr);
	CFRelease(attrStr);
	if (line == NULL) {
		CGContextRelease(ctx);
		return -3;
	}

	CGContextSetTextPosition(ctx, penX, baselineY);
	CTLineDraw(line, ctx);
	CFRelease(line);
	CGContextRelease(ctx);
	return 0;
}

static void tp_ctfont_release(CTFontRef f) {
	if (f != NULL) {
		CFRelease(f);
	}
}

static void tp_cgfont_release(CGFontRef f) {
	if (f != NULL) {
		CGFontRelease(f);
	}
}
*/
import "C"

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/typeproof/typeproof/internal/fvar"
)

// CoreTextRenderer delegates shaping and rasterization to the OS text
// stack. It is the native comparison target on macOS.
type CoreTextRenderer struct {
	cfg      Config
	fontData []byte
	cgFont   C.CGFontRef
	font     C.CTFontRef
}

func coreTextAvailable() bool { return true }

// coreTextAxisIDs maps registered variation-axis tags to the numeric IDs
// CoreText's variation attribute expects. The IDs are the big-endian
// ASCII packing of the tag; unregistered tags fall back to packing.
var coreTextAxisIDs = map[string]int64{
	"wght": 2003265652,
	"wdth": 2003072104,
	"slnt": 1936486004,
	"ital": 1769234796,
	"opsz": 1869640570,
}

func coreTextAxisID(tag string) (int64, error) {
	if id, ok := coreTextAxisIDs[tag]; ok {
		return id, nil
	}
	packed, err := fvar.PackTag(tag)
	if err != nil {
		return 0, err
	}
	return int64(packed), nil
}

// newCoreText constructs the native engine. The font file is read once;
// every rebuild (variation, feature, or size change) derives a fresh
// CTFont from the cached bytes.
func newCoreText(cfg Config) (Renderer, error) {
	cfg = cfg.withDefaults()

	data, err := cfg.loadFontData()
	if err != nil {
		return nil, &InitError{Engine: EngineCoreText, Err: fmt.Errorf("%w: %v", ErrFontLoad, err)}
	}

	cgFont := C.tp_cgfont_create((*C.UInt8)(unsafe.Pointer(&data[0])), C.CFIndex(len(data)))
	if cgFont == nil {
		return nil, &InitError{Engine: EngineCoreText, Err: fmt.Errorf("%w: CGFont rejected %s", ErrFontLoad, fontName(&cfg))}
	}

	r := &CoreTextRenderer{cfg: cfg, fontData: data, cgFont: cgFont}
	if err := r.rebuildFont(); err != nil {
		C.tp_cgfont_release(r.cgFont)
		return nil, &InitError{Engine: EngineCoreText, Err: err}
	}
	return r, nil
}

// Engine implements Renderer.
func (r *CoreTextRenderer) Engine() string { return EngineCoreText }

// Close implements Renderer, releasing the CoreText handles.
func (r *CoreTextRenderer) Close() error {
	C.tp_ctfont_release(r.font)
	r.font = nil
	C.tp_cgfont_release(r.cgFont)
	r.cgFont = nil
	return nil
}

// rebuildFont derives a CTFont at the current size with the configured
// variation coordinates and feature settings. If derivation with all
// attributes fails it retries with variations only, then falls back to
// the undecorated base font.
func (r *CoreTextRenderer) rebuildFont() error {
	base := C.tp_ctfont_base(r.cgFont, C.double(r.cfg.FontSize))
	if base == nil {
		return fmt.Errorf("%w: cannot instantiate %s at size %d", ErrFontLoad, fontName(&r.cfg), r.cfg.FontSize)
	}

	if len(r.cfg.Coords) == 0 && len(r.cfg.Features) == 0 {
		r.swapFont(base)
		return nil
	}

	derived := r.deriveFont(base, true, true)
	if derived == nil && len(r.cfg.Features) > 0 {
		Logger().Warn("font derivation failed, retrying without features",
			"engine", EngineCoreText, "font", fontName(&r.cfg))
		derived = r.deriveFont(base, true, false)
	}
	if derived == nil {
		Logger().Warn("font derivation failed, using undecorated font",
			"engine", EngineCoreText, "font", fontName(&r.cfg))
		r.swapFont(base)
		return nil
	}

	C.tp_ctfont_release(base)
	r.swapFont(derived)
	return nil
}

func (r *CoreTextRenderer) swapFont(font C.CTFontRef) {
	C.tp_ctfont_release(r.font)
	r.font = font
}

func (r *CoreTextRenderer) deriveFont(base C.CTFontRef, withCoords, withFeatures bool) C.CTFontRef {
	var (
		axisIDs  []C.int64_t
		axisVals []C.double
	)
	if withCoords {
		for tag, value := range r.cfg.Coords {
			id, err := coreTextAxisID(tag)
			if err != nil {
				Logger().Warn("skipping unpackable axis tag",
					"engine", EngineCoreText, "tag", tag, "error", err)
				continue
			}
			axisIDs = append(axisIDs, C.int64_t(id))
			axisVals = append(axisVals, C.double(value))
		}
	}

	var (
		featTags []byte
		featVals []C.int64_t
	)
	if withFeatures {
		for tag, value := range r.cfg.Features {
			packed, err := fvar.PackTag(tag)
			if err != nil {
				Logger().Warn("skipping unpackable feature tag",
					"engine", EngineCoreText, "tag", tag, "error", err)
				continue
			}
			featTags = append(featTags, fvar.UnpackTag(packed)...)
			featVals = append(featVals, C.int64_t(value))
		}
	}

	var (
		axisIDPtr  *C.int64_t
		axisValPtr *C.double
		featTagPtr *C.UInt8
		featValPtr *C.int64_t
	)
	if len(axisIDs) > 0 {
		axisIDPtr = &axisIDs[0]
		axisValPtr = &axisVals[0]
	}
	if len(featVals) > 0 {
		featTagPtr = (*C.UInt8)(unsafe.Pointer(&featTags[0]))
		featValPtr = &featVals[0]
	}

	return C.tp_ctfont_derive(base, C.double(r.cfg.FontSize),
		axisIDPtr, axisValPtr, C.int(len(axisIDs)),
		featTagPtr, featValPtr, C.int(len(featVals)))
}

// RenderText implements Renderer. The whole line is laid out by CoreText
// and drawn in one CTLineDraw call; the bitmap context writes directly
// into the canvas buffer.
func (r *CoreTextRenderer) RenderText(text string) (*Canvas, error) {
	canvas := NewCanvas(r.cfg.Width, r.cfg.Height)
	if len(text) == 0 {
		return canvas, nil
	}

	baselineY := float64(r.cfg.Height) * (1 - r.cfg.BaselineRatio)
	kern := r.cfg.Tracking / 1000 * float64(r.cfg.FontSize)

	b := []byte(text)
	rc := C.tp_render(r.font,
		(*C.UInt8)(unsafe.Pointer(&b[0])), C.CFIndex(len(b)),
		C.int(canvas.Width()), C.int(canvas.Height()),
		C.double(r.cfg.Margin), C.double(baselineY), C.double(kern),
		(*C.UInt8)(unsafe.Pointer(&canvas.Pix()[0])))
	if rc != 0 {
		return nil, &RenderError{Engine: EngineCoreText, Err: fmt.Errorf("line draw failed (code %d)", int(rc))}
	}

	Logger().Debug("rendered run", "engine", EngineCoreText, "bytes", len(b))
	return canvas, nil
}

// UpdateInstanceCoords implements Renderer. On rebuild failure the
// previous font handle stays in place and the error is only logged.
func (r *CoreTextRenderer) UpdateInstanceCoords(coords map[string]float64) {
	if coords == nil {
		coords = map[string]float64{}
	}
	r.cfg.Coords = coords
	if err := r.rebuildFont(); err != nil {
		Logger().Warn("variation update failed, keeping previous font",
			"engine", EngineCoreText, "error", err)
	}
}

// UpdateTracking implements Renderer.
func (r *CoreTextRenderer) UpdateTracking(tracking float64) {
	if math.IsNaN(tracking) || math.IsInf(tracking, 0) {
		tracking = 0
	}
	r.cfg.Tracking = tracking
}

// UpdateDimensions implements Renderer. A font size change re-derives
// the CTFont; width and height only affect the next canvas allocation.
func (r *CoreTextRenderer) UpdateDimensions(width, height, fontSize int) {
	if width > 0 {
		r.cfg.Width = width
	}
	if height > 0 {
		r.cfg.Height = height
	}
	if fontSize > 0 && fontSize != r.cfg.FontSize {
		r.cfg.FontSize = fontSize
		if err := r.rebuildFont(); err != nil {
			Logger().Warn("size update failed, keeping previous font",
				"engine", EngineCoreText, "error", err)
		}
	}
}

// Summary implements Renderer.
func (r *CoreTextRenderer) Summary() Summary {
	return Summary{
		Engine:   EngineCoreText,
		Font:     fontName(&r.cfg),
		Coords:   copyCoords(r.cfg.Coords),
		Features: copyFeatures(r.cfg.Features),
		Size:     r.cfg.FontSize,
	}
}
