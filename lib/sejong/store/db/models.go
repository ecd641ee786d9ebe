package db

type AuthSnapshot struct {
	ID        int64
	StudentID string
	Variant   string
	TakenAt   int64
	Result    string
}
