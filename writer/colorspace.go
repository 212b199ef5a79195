package writer

import (
	"github.com/tsawler/pdfraster/core"
	"github.com/tsawler/pdfraster/model"
)

// D65 white point and the gamma used for calibrated spaces.
var (
	whitePointD65 = core.Array{core.Real(0.9505), core.Int(1), core.Real(1.089)}
	defaultGamma  = core.Real(2.2)
)

// iccProfile is an embedded profile. The stream is written the first time
// a page needs it and referenced from then on.
type iccProfile struct {
	data    []byte
	ref     core.IndirectRef
	written bool
}

func calGray() core.Object {
	d := core.NewDict()
	d.Set("WhitePoint", whitePointD65)
	d.Set("Gamma", defaultGamma)
	return core.Array{core.Name("CalGray"), d}
}

func calRGB() core.Object {
	d := core.NewDict()
	d.Set("WhitePoint", whitePointD65)
	d.Set("Gamma", core.Array{defaultGamma, defaultGamma, defaultGamma})
	return core.Array{core.Name("CalRGB"), d}
}

// colorspace returns the /ColorSpace value for strips written with s,
// writing an ICC profile stream if one is configured and not yet emitted.
func (w *Writer) colorspace(s pageSettings) (core.Object, error) {
	gray := s.format.IsGray()

	profile := w.rgbICC
	if gray {
		profile = w.grayICC
	}
	if profile != nil {
		if !profile.written {
			stream := core.NewStream(profile.data)
			if gray {
				stream.Dict.Set("N", core.Int(1))
				stream.Dict.Set("Alternate", core.Name("DeviceGray"))
			} else {
				stream.Dict.Set("N", core.Int(3))
				stream.Dict.Set("Alternate", core.Name("DeviceRGB"))
			}
			profile.ref = w.xref.CreateReference(nil)
			if err := w.out.writeIndirect(w.xref, profile.ref, stream); err != nil {
				return nil, err
			}
			profile.written = true
		}
		return core.Array{core.Name("ICCBased"), profile.ref}, nil
	}

	switch {
	case s.format == model.FormatBitonal:
		if s.bitonalUncalibrated || !s.calibrateGray {
			return core.Name("DeviceGray"), nil
		}
		return calGray(), nil
	case gray:
		if s.calibrateGray {
			return calGray(), nil
		}
		return core.Name("DeviceGray"), nil
	case s.calibrateRGB:
		return calRGB(), nil
	}
	return core.Name("DeviceRGB"), nil
}
