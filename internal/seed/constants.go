package seed

import "time"

// HTTP status code constants.
const (
	StatusOK       = 200
	StatusCreated  = 201
	StatusAccepted = 202
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	DrainPollInterval    = 250 * time.Millisecond
	DrainTimeout         = 30 * time.Second
	PercentageMultiplier = 100
)
