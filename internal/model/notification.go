package model

// Notification is built per alert and never stored. An empty Title means the
// provider default is used.
type Notification struct {
	Title   string
	Message string
}
