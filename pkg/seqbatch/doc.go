// Package seqbatch is an embeddable batch loader for multi-rate sequence
// training data.
//
// Samples carry primary-rate fields (e.g. audio features) and secondary-rate
// fields sampled R times slower (e.g. face motion). The loader sorts samples
// by length, groups them into token-budgeted buckets and collates each bucket
// into zero-padded tensors with validity masks.
//
// # Basic Usage
//
//	cfg := seqbatch.DefaultConfig()
//	cfg.DataDir = "/data/lrs3"
//	cfg.Split = "train"
//
//	loader, err := seqbatch.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer loader.Close()
//
//	err = loader.Batches(ctx, func(b *seqbatch.Batch) error {
//	    // feed b to the model
//	    return nil
//	})
//
// # Storage
//
// By default samples are read from a LevelDB database at DataDir/Split, and
// the size and statistics caches are written next to it as
// sizes_<split>.json and stats.json. Use [WithStore] and [WithFs] to supply
// other storage.
package seqbatch
