package orders

type Status string

const (
	StatusPlaced          Status = "PLACED"
	StatusShipped         Status = "SHIPPED"
	StatusDelivered       Status = "DELIVERED"
	StatusCancelled       Status = "CANCELLED"
	StatusReturnRequested Status = "RETURN_REQUESTED"
	StatusReturned        Status = "RETURNED"
	StatusReturnRejected  Status = "RETURN_REJECTED"
)

var validNext = map[Status]map[Status]bool{
	StatusPlaced:          {StatusShipped: true, StatusCancelled: true},
	StatusShipped:         {StatusDelivered: true, StatusCancelled: true},
	StatusDelivered:       {StatusReturnRequested: true},
	StatusReturnRequested: {StatusReturned: true, StatusReturnRejected: true},
	StatusCancelled:       {},
	StatusReturned:        {},
	StatusReturnRejected:  {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

// CustomerCanCancel holds only before the parcel leaves the warehouse.
func CustomerCanCancel(s Status) bool { return s == StatusPlaced }
