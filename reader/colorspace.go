package reader

import (
	"github.com/tsawler/pdfraster/core"
	"github.com/tsawler/pdfraster/model"
)

// parseColorspace interprets a strip /ColorSpace. off is the strip offset
// used in reports.
func (r *Reader) parseColorspace(obj core.Object, off int64) (model.ColorspaceInfo, *problem) {
	var cs model.ColorspaceInfo
	obj, ok := r.parser.Resolve(obj)
	if !ok {
		return cs, newProblem(core.LevelCompliance, core.CodeValidColorspace, off, "colorspace cannot be resolved")
	}

	switch v := obj.(type) {
	case core.Name:
		// Bare CalGray and CalRGB names carry no parameters.
		return r.namedColorspace(v, off)

	case core.Array:
		name, ok := v.GetName(0)
		if !ok {
			return cs, newProblem(core.LevelCompliance, core.CodeColorspaceArray, off, "colorspace array does not start with a name")
		}
		switch name {
		case "DeviceGray", "DeviceRGB":
			if len(v) != 1 {
				return cs, newProblem(core.LevelCompliance, core.CodeColorspaceArray, off, "[/%s] takes no parameters", name)
			}
			return r.namedColorspace(name, off)
		case "CalGray", "CalRGB":
			return r.calibrated(name, v, off)
		case "ICCBased":
			return r.iccBased(v, off)
		}
		return cs, newProblem(core.LevelCompliance, core.CodeValidColorspace, off, "unsupported colorspace /%s", name)
	}
	return cs, newProblem(core.LevelCompliance, core.CodeColorspaceArray, off, "colorspace is neither a name nor an array")
}

func (r *Reader) namedColorspace(name core.Name, off int64) (model.ColorspaceInfo, *problem) {
	var cs model.ColorspaceInfo
	switch name {
	case "DeviceGray":
		cs.Style = model.DeviceGray
	case "DeviceRGB":
		cs.Style = model.DeviceRGB
	case "CalGray":
		cs.Style = model.CalGray
		cs.Gamma = [3]float64{1, 1, 1}
	case "CalRGB":
		cs.Style = model.CalRGB
		cs.Gamma = [3]float64{1, 1, 1}
	default:
		return cs, newProblem(core.LevelCompliance, core.CodeValidColorspace, off, "unsupported colorspace /%s", name)
	}
	return cs, nil
}

// calibrated parses [/CalGray <<...>>] and [/CalRGB <<...>>].
func (r *Reader) calibrated(name core.Name, arr core.Array, off int64) (model.ColorspaceInfo, *problem) {
	cs := model.ColorspaceInfo{Style: model.CalGray, Gamma: [3]float64{1, 1, 1}}
	code := core.CodeCalgrayDict
	if name == "CalRGB" {
		cs.Style = model.CalRGB
		code = core.CodeCalrgbDict
	}

	var dict *core.Dict
	if len(arr) == 2 {
		obj, _ := r.parser.Resolve(arr[1])
		dict, _ = obj.(*core.Dict)
	}
	if dict == nil {
		return cs, newProblem(core.LevelCompliance, code, off, "[/%s] needs a parameter dictionary", name)
	}

	wp, ok := r.triple(dict, "WhitePoint")
	if !ok {
		return cs, newProblem(core.LevelCompliance, core.CodeWhitepoint, off, "/%s /WhitePoint must be three numbers", name)
	}
	cs.WhitePoint = wp
	if dict.Has("BlackPoint") {
		bp, ok := r.triple(dict, "BlackPoint")
		if !ok {
			return cs, newProblem(core.LevelCompliance, core.CodeBlackpoint, off, "/%s /BlackPoint must be three numbers", name)
		}
		cs.BlackPoint = bp
	}

	if dict.Has("Gamma") {
		if cs.Style == model.CalGray {
			g, ok := dict.GetReal("Gamma")
			if !ok {
				return cs, newProblem(core.LevelCompliance, core.CodeGammaNumber, off, "CalGray /Gamma is not a number")
			}
			cs.Gamma = [3]float64{g, g, g}
		} else {
			g, ok := r.triple(dict, "Gamma")
			if !ok {
				return cs, newProblem(core.LevelCompliance, core.CodeGammaNumber, off, "CalRGB /Gamma must be three numbers")
			}
			cs.Gamma = g
		}
	}

	if cs.Style == model.CalRGB && dict.Has("Matrix") {
		obj, _ := r.parser.Resolve(dict.Get("Matrix"))
		m, ok := obj.(core.Array)
		if !ok {
			return cs, newProblem(core.LevelCompliance, core.CodeMatrix, off, "CalRGB /Matrix is not an array")
		}
		switch {
		case len(m) < 9:
			return cs, newProblem(core.LevelCompliance, core.CodeMatrixTooShort, off, "CalRGB /Matrix has %d elements", len(m))
		case len(m) > 9:
			return cs, newProblem(core.LevelCompliance, core.CodeMatrixTooLong, off, "CalRGB /Matrix has %d elements", len(m))
		}
		nums, ok := m.Numbers()
		if !ok {
			return cs, newProblem(core.LevelCompliance, core.CodeMatrixElement, off, "CalRGB /Matrix element is not a number")
		}
		copy(cs.Matrix[:], nums)
	}
	return cs, nil
}

func (r *Reader) triple(dict *core.Dict, key string) ([3]float64, bool) {
	var out [3]float64
	obj, _ := r.parser.Resolve(dict.Get(key))
	arr, ok := obj.(core.Array)
	if !ok || len(arr) != 3 {
		return out, false
	}
	nums, ok := arr.Numbers()
	if !ok {
		return out, false
	}
	copy(out[:], nums)
	return out, true
}

// iccBased locates the profile stream of [/ICCBased ref] without loading
// the profile.
func (r *Reader) iccBased(arr core.Array, off int64) (model.ColorspaceInfo, *problem) {
	cs := model.ColorspaceInfo{Style: model.ICCBased}
	var ref core.IndirectRef
	ok := len(arr) == 2
	if ok {
		ref, ok = arr[1].(core.IndirectRef)
	}
	if !ok {
		return cs, newProblem(core.LevelCompliance, core.CodeIccProfile, off, "ICCBased colorspace needs a stream reference")
	}
	pos, ok := r.parser.ObjectOffset(ref)
	if !ok {
		return cs, newProblem(core.LevelCompliance, core.CodeIccProfile, off, "ICC profile object %d is not in the xref table", ref.Number)
	}
	dict, dataPos, length, ok := r.parser.ParseStreamHeader(pos)
	if !ok || length > r.size-dataPos {
		return cs, newProblem(core.LevelCompliance, core.CodeIccProfile, pos, "ICC profile is not a valid stream")
	}
	n, _ := dict.GetInt("N")
	if n != 1 && n != 3 {
		return cs, newProblem(core.LevelCompliance, core.CodeIccProfile, pos, "ICC profile has /N %d, want 1 or 3", n)
	}
	cs.ICC = &model.ICCProfile{Position: pos, DataOffset: dataPos, Length: length, Components: int(n)}
	return cs, nil
}
