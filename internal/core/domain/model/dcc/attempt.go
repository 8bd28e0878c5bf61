package dcc

import (
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
)

// Attempt is one submission of a code by a courier.
type Attempt struct {
	CourierID     kernel.UUID
	SubmittedCode string
	AttemptedAt   time.Time
	Successful    bool
}
