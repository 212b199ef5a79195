package core

import (
	"fmt"

	"github.com/tsawler/pdfraster/internal/filters"
)

// Decode decodes the stream data according to the Filter(s) specified in the
// stream dictionary. It supports FlateDecode, CCITTFaxDecode and filter
// chains. DCTDecode data is returned as is.
func (s *Stream) Decode() ([]byte, error) {
	filterObj := s.Dict.Get("Filter")
	if filterObj == nil {
		return s.Data, nil
	}
	paramsObj := s.Dict.Get("DecodeParms")

	if filterName, ok := filterObj.(Name); ok {
		params, _ := paramsObj.(*Dict)
		return decodeWithFilter(s.Data, string(filterName), params)
	}

	filterArray, ok := filterObj.(Array)
	if !ok {
		return nil, fmt.Errorf("invalid Filter type: %T", filterObj)
	}
	data := s.Data
	for i, filter := range filterArray {
		filterName, ok := filter.(Name)
		if !ok {
			return nil, fmt.Errorf("filter %d is not a name: %T", i, filter)
		}

		var params *Dict
		if paramsArray, ok := paramsObj.(Array); ok {
			params, _ = paramsArray.Get(i).(*Dict)
		} else {
			params, _ = paramsObj.(*Dict)
		}

		var err error
		data, err = decodeWithFilter(data, string(filterName), params)
		if err != nil {
			return nil, fmt.Errorf("filter %d (%s) failed: %w", i, filterName, err)
		}
	}
	return data, nil
}

func decodeWithFilter(data []byte, filterName string, params *Dict) ([]byte, error) {
	switch filterName {
	case "FlateDecode", "Fl":
		return filters.FlateDecode(data, DictToParams(params))
	case "CCITTFaxDecode", "CCF":
		return filters.CCITTFaxDecode(data, DictToParams(params))
	case "DCTDecode", "DCT":
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported filter: %s", filterName)
	}
}

// DictToParams converts a decode parameter dictionary to filters.Params,
// translating PDF object types to Go primitive types (Int->int, Real->float64,
// Bool->bool and so on).
func DictToParams(dict *Dict) filters.Params {
	if dict == nil {
		return nil
	}

	params := make(filters.Params)
	for _, k := range dict.keys {
		switch obj := dict.m[k].(type) {
		case Int:
			params[k] = int(obj)
		case Real:
			params[k] = float64(obj)
		case Bool:
			params[k] = bool(obj)
		case String:
			params[k] = string(obj.Data)
		case Name:
			params[k] = string(obj)
		default:
			params[k] = obj
		}
	}
	return params
}
