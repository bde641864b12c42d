package testsessions

import "time"

// HTTP status code constants.
const (
	StatusOK        = 200
	StatusCreated   = 201
	StatusAccepted  = 202
	StatusNoContent = 204
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	SignalDrainDelay     = 2 * time.Second
	PercentageMultiplier = 100
)
