package purchase

// Observer is notified of purchase outcomes, e.g. for metrics
type Observer interface {
	OrderCreated()
	PaymentCompleted(amount float64)
	PaymentRejected(reason string)
}

// Rejection reasons reported to the observer
const (
	RejectBadRequest       = "bad_request"
	RejectIntegrity        = "integrity"
	RejectAlreadyProcessed = "already_processed"
)

// NopObserver ignores every event
type NopObserver struct{}

func (NopObserver) OrderCreated()                   {}
func (NopObserver) PaymentCompleted(amount float64) {}
func (NopObserver) PaymentRejected(reason string)   {}
