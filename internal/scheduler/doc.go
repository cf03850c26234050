// Package scheduler partitions a size-ordered index sequence into buckets
// under a token budget, a per-bucket sample cap and a batch-size alignment
// policy.
//
// The algorithm is a single greedy forward pass. Each index is folded into
// an explicit accumulator holding the open bucket and its sizes. A bucket
// is full when adding the next sample would exceed the cap or push
// (count+1) * max size over the budget. A full bucket of length L is
// truncated to M = max(A*floor(L/A), L mod A) members; the overflow seeds
// the next bucket, so no sample is ever dropped. The last bucket is emitted
// without truncation.
//
// Use BatchBySize to materialize every bucket, or New for a lazy iterator:
//
//	s := scheduler.New(indices, sizeOf, scheduler.Options{MaxTokens: 60000, Alignment: 8})
//	for {
//	    b, err := s.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    // use b
//	}
package scheduler
