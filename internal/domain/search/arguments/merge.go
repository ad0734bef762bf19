package arguments

// Merge merges src into dst with overrule semantics: when both sides hold a
// map at the same key they are merged recursively, otherwise the src value
// replaces the dst value. Keys only present in dst are left alone.
//
// Values taken from src are cloned, so dst never aliases src.
func Merge(dst, src Tree) {
	for k, sv := range src {
		if !sv.IsValid() {
			continue
		}
		if dsub, ok := dst[k].AsTree(); ok {
			if ssub, ok := sv.AsTree(); ok {
				Merge(dsub, ssub)
				continue
			}
		}
		dst[k] = sv.Clone()
	}
}
