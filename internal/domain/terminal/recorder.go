package terminal

// Recorder receives session counters. monitoring.Metrics implements it.
type Recorder interface {
	TabOpened()
	TabClosed()
	SpawnFailed(kind string)
	OutputBytes(n int)
	InputBytes(n int)
	WriteFailed(kind string)
}

type nopRecorder struct{}

func (nopRecorder) TabOpened() {}
func (nopRecorder) TabClosed() {}
func (nopRecorder) SpawnFailed(string) {}
func (nopRecorder) OutputBytes(int) {}
func (nopRecorder) InputBytes(int) {}
func (nopRecorder) WriteFailed(string) {}
