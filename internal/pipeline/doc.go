// Package pipeline sequences the stages of a publishing run.
//
// A run moves through five steps: topic, body, image, compose and publish.
// Each step is a Step that receives the accumulated model.Run and fills in
// its part. Generation and image resolution recover from provider failures
// with fallback values and record a "fallback" stage; only the publish step
// can fail a run.
//
// Design decision: We keep the step pattern even though the sequence is
// fixed because:
// 1. Each stage can be tested on its own with a hand-built Run
// 2. Logging and status lines are uniform across stages
// 3. Cancellation is checked between stages in one place
//
// BatchProcessor runs several jobs (for example the static page set)
// concurrently with errgroup.
package pipeline
