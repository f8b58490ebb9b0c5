package translate

import (
	"slices"

	"github.com/samber/lo"
)

// FactorBiomes splits codes into its sorted distinct values and an index
// array of the same length with values[index[i]] == codes[i].
func FactorBiomes(codes []int32) (values []int32, index []int) {
	values = lo.Uniq(codes)
	slices.Sort(values)
	pos := make(map[int32]int, len(values))
	for i, v := range values {
		pos[v] = i
	}
	index = make([]int, len(codes))
	for i, c := range codes {
		index[i] = pos[c]
	}
	return values, index
}

// RecodeBiomes maps every code through fn, calling fn once per distinct
// value. The result has the same length (and so the same shape) as codes.
func RecodeBiomes(codes []int32, fn func(int32) int32) []int32 {
	if codes == nil {
		return nil
	}
	values, index := FactorBiomes(codes)
	mapped := lo.Map(values, func(v int32, _ int) int32 { return fn(v) })
	out := make([]int32, len(codes))
	for i, ix := range index {
		out[i] = mapped[ix]
	}
	return out
}
