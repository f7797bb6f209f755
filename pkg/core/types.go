package core

import "fmt"

type Pair[K, V any] struct {
	Key   K
	Value V
}

// KeyValue is the pair type used by text jobs and the file helpers.
type KeyValue = Pair[string, string]

// Emitter receives pairs produced by a map or reduce callback. The engine
// hands a fresh emitter to every invocation; it must not be retained after the
// callback returns.
type Emitter[K, V any] interface {
	Emit(key K, value V)
}

// Client supplies the callbacks of a job. Map is invoked once per input pair
// and Reduce once per group of intermediate pairs whose keys compare equal.
// Both may run concurrently with other invocations of the same callback.
//
// Compare orders intermediate keys and returns a negative number, zero or a
// positive number like cmp.Compare.
type Client[K1, V1, K2, V2, K3, V3 any] interface {
	Map(key K1, value V1, emit Emitter[K2, V2])
	Reduce(group []Pair[K2, V2], emit Emitter[K3, V3])
	Compare(a, b K2) int
}

type MapFunc[K1, V1, K2, V2 any] func(key K1, value V1, emit Emitter[K2, V2])

type ReduceFunc[K2, V2, K3, V3 any] func(group []Pair[K2, V2], emit Emitter[K3, V3])

type CompareFunc[K any] func(a, b K) int

// Funcs adapts plain functions to the Client interface.
type Funcs[K1, V1, K2, V2, K3, V3 any] struct {
	MapFunc     MapFunc[K1, V1, K2, V2]
	ReduceFunc  ReduceFunc[K2, V2, K3, V3]
	CompareFunc CompareFunc[K2]
}

func (f Funcs[K1, V1, K2, V2, K3, V3]) Map(key K1, value V1, emit Emitter[K2, V2]) {
	f.MapFunc(key, value, emit)
}

func (f Funcs[K1, V1, K2, V2, K3, V3]) Reduce(group []Pair[K2, V2], emit Emitter[K3, V3]) {
	f.ReduceFunc(group, emit)
}

func (f Funcs[K1, V1, K2, V2, K3, V3]) Compare(a, b K2) int {
	return f.CompareFunc(a, b)
}

// Stage is the phase a job is currently executing.
type Stage uint8

const (
	StageUndefined Stage = iota
	StageMap
	StageShuffle
	StageReduce
)

func (s Stage) String() string {
	switch s {
	case StageUndefined:
		return "UNDEFINED"
	case StageMap:
		return "MAP"
	case StageShuffle:
		return "SHUFFLE"
	case StageReduce:
		return "REDUCE"
	default:
		return fmt.Sprintf("Stage(%d)", uint8(s))
	}
}

// JobState is a point-in-time view of a job's progress. Percentage is within
// [0, 100] and refers to the current stage only.
type JobState struct {
	Stage      Stage
	Percentage float64
}
