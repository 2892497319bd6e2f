package memfilemap

import (
	"go.uber.org/zap"

	"github.com/gostonefire/memfilemap/internal/block"
	"github.com/gostonefire/memfilemap/internal/region"
)

// config - Internal configuration collected from applied Options, then
// consumed once to build a Map. Grounded on the teacher's CRTConf for the
// knobs it carries; realized as a functional-option target rather than a
// positional struct because the knobs are largely independent (see
// DESIGN.md's Open Question decision on the config surface).
type config[K comparable, V any] struct {
	initialBuckets int
	choiceSequence []int
	maxLoadFactor  float64
	backingName    string
	wipeOnClose    bool
	hashFunc       func(K) uint64
	allocator      region.Allocator
	codec          block.Codec[K, V]
	logger         *zap.SugaredLogger
}

func defaultConfig[K comparable, V any]() *config[K, V] {
	return &config[K, V]{
		initialBuckets: 1,
		choiceSequence: DefaultChoiceSequence,
		maxLoadFactor:  1.0,
		hashFunc:       defaultHashFunc[K](),
		logger:         nopLogger(),
	}
}

// Option - A functional option configuring a Map at construction time.
// Grounded on homier-stablemap's Option[K,V]/WithHashFunc pattern.
type Option[K comparable, V any] func(*config[K, V])

// WithInitialBuckets - Sets the first choice-sequence value >= n (or the
// raw value if no larger choice exists) as the map's initial bucket
// count.
func WithInitialBuckets[K comparable, V any](n int) Option[K, V] {
	return func(c *config[K, V]) { c.initialBuckets = n }
}

// WithChoiceSequence - Overrides the default growth/rehash choice
// sequence. Must be strictly increasing with a minimum of 1; validated at
// construction time.
func WithChoiceSequence[K comparable, V any](seq []int) Option[K, V] {
	return func(c *config[K, V]) { c.choiceSequence = seq }
}

// WithMaxLoadFactor - Sets the threshold at which insertion triggers
// growth. Default 1.0.
func WithMaxLoadFactor[K comparable, V any](f float64) Option[K, V] {
	return func(c *config[K, V]) { c.maxLoadFactor = f }
}

// WithBackingName - Uses name as the backing file path, relative to the
// current working directory. There is no default codec: without
// WithCodec, slot contents are not written to the backing file.
func WithBackingName[K comparable, V any](name string) Option[K, V] {
	return func(c *config[K, V]) { c.backingName = name }
}

// WithWipeOnClose - Controls the destruction policy: whether Close also
// unlinks the backing file. Default false.
func WithWipeOnClose[K comparable, V any](wipe bool) Option[K, V] {
	return func(c *config[K, V]) { c.wipeOnClose = wipe }
}

// WithHashFunc - Overrides the default maphash-based hashing with a
// caller-supplied function, e.g. HashString for string keys.
func WithHashFunc[K comparable, V any](f func(K) uint64) Option[K, V] {
	return func(c *config[K, V]) { c.hashFunc = f }
}

// WithAllocator - Swaps the region allocator, e.g. for an in-memory
// allocator in tests that would otherwise default to a file-backed one.
func WithAllocator[K comparable, V any](a region.Allocator) Option[K, V] {
	return func(c *config[K, V]) { c.allocator = a }
}

// WithCodec - Supplies the fixed-width byte codec used to mirror slots
// into the backing region. Required for a file-backed map to persist its
// slots, and by Open; block.BytesCodec supplies one for string keys and
// values.
func WithCodec[K comparable, V any](codec block.Codec[K, V]) Option[K, V] {
	return func(c *config[K, V]) { c.codec = codec }
}

// WithLogger - Routes mutation logging (rehash, including growth, at info
// level; insert, assign, erase and clear at debug level) through l
// instead of a no-op logger.
func WithLogger[K comparable, V any](l *zap.SugaredLogger) Option[K, V] {
	return func(c *config[K, V]) { c.logger = l }
}
