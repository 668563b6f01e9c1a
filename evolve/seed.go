package evolve

// SeedPolicy decides which seed each episode gets.
type SeedPolicy string

const (
	// SeedFixed gives every episode the base seed, so all genomes face the
	// same food layout.
	SeedFixed SeedPolicy = "fixed"
	// SeedPerGenome derives an independent seed from the base seed, the
	// generation and the genome's index.
	SeedPerGenome SeedPolicy = "per_genome"
)

// Stream salts keep the episode and selection sequences apart.
const (
	streamEpisode   uint64 = 0x5eed_0001
	streamSelection uint64 = 0x5eed_0002
)

// splitmix64 finalizer.
func mix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// deriveSeed maps (base, stream, generation, index) to a well-spread seed.
func deriveSeed(base int64, stream uint64, generation, index int) int64 {
	h := mix(uint64(base) ^ stream)
	h = mix(h ^ uint64(generation))
	h = mix(h ^ uint64(index))
	return int64(h >> 1)
}

func (c Config) episodeSeed(generation, index int) int64 {
	if c.EpisodeSeed == SeedPerGenome {
		return deriveSeed(c.Seed, streamEpisode, generation, index)
	}
	return c.Seed
}

func (c Config) selectionSeed(generation int) int64 {
	return deriveSeed(c.Seed, streamSelection, generation, 0)
}
