package config

// DeepMerge merges src into dst and returns dst. Precedence rules:
//
//   - when both sides hold a table, the tables are merged recursively
//   - any other value in src (scalar, list, or a table over a non-table) replaces dst
//   - a nil value in src is ignored, so later files cannot delete keys
//
// A nil dst is allocated.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for key, sv := range src {
		if sv == nil {
			continue
		}
		srcMap, srcIsMap := sv.(map[string]any)
		dstMap, dstIsMap := dst[key].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[key] = DeepMerge(dstMap, srcMap)
			continue
		}
		if srcIsMap {
			dst[key] = DeepMerge(nil, srcMap)
			continue
		}
		dst[key] = sv
	}
	return dst
}
