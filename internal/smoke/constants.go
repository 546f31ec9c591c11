package smoke

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)
