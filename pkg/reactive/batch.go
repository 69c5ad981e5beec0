package reactive

// Batch groups writes so that, in synchronous mode, watchers queued by
// fn flush once when the outermost batch ends instead of after every
// write. In async mode flushes already coalesce on the task loop, so
// Batch only runs fn. Batches nest.
func Batch(fn func()) {
	st := getTrackState()
	st.batchDepth++
	defer func() {
		st.batchDepth--
		if st.batchDepth == 0 {
			flushPendingSync()
		}
	}()
	fn()
}
