package metrics

// Engine and IBE instruments. All of them live in DefaultRegistry.
var (
	// HashToCurve counts message-to-point maps on G1 and G2.
	HashToCurve = DefaultRegistry.Counter("hash.to_curve")

	// Pairings counts full pairings (Miller loop plus final exponentiation).
	Pairings       = DefaultRegistry.Counter("pairing.count")
	MillerLoopTime = DefaultRegistry.Latency("pairing.miller_loop_us")
	FinalExpTime   = DefaultRegistry.Latency("pairing.final_exp_us")
	// TablesLive tracks precomputed line tables that have not been released.
	TablesLive     = DefaultRegistry.Gauge("pairing.tables_live")
	TablesReleased = DefaultRegistry.Counter("pairing.tables_released")

	IBEEncrypt    = DefaultRegistry.Counter("ibe.encrypt")
	IBEDecrypt    = DefaultRegistry.Counter("ibe.decrypt")
	IBEKeysIssued = DefaultRegistry.Counter("ibe.keys_issued")
)
