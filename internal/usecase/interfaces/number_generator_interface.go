package interfaces

// INumberGenerator hands out human-facing document numbers such as
// "EST-1718000000000" or "INV-1718000000001".
type INumberGenerator interface {
	Next(prefix string) string
}
